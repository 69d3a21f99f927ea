package handler

import (
	"log/slog"
	"net/http"
)

// PageHandler serves the static-ish pages that need no backend data.
type PageHandler struct {
	renderer *Renderer
	logger   *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(renderer *Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{renderer: renderer, logger: logger}
}

// ShowLanding renders the landing page.
//
// HTTP: GET /
func (h *PageHandler) ShowLanding(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "landing", View{
		Title: "TubeTip",
		User:  viewer(r),
	})
}

// NotFound renders the 404 page for unmatched routes.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusNotFound, "not_found", View{
		Title: "Not found",
		User:  viewer(r),
	})
}
