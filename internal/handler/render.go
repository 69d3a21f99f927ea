// Package handler contains the HTTP request handlers for the TubeTip web
// gateway.
//
// Handlers are the glue between HTTP and everything else: they parse the
// request, call the session store / backend client / feed, and render an
// HTML page or a JSON fragment. No business rules live here.
package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/tubetip/tubetip/internal/model"
	"github.com/tubetip/tubetip/internal/redirect"
)

// pages are the content templates. Each one is parsed together with
// base.html so {{define "content"}} blocks can fill the layout.
var pages = []string{
	"landing",
	"login",
	"register",
	"profile_setup",
	"setup_pictures",
	"setup_confirmation",
	"connect_bank",
	"connect_success",
	"checkout_success",
	"profile",
	"not_found",
}

// Renderer holds the parsed templates so they are compiled once at
// startup, not per request.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// funcMap exposes helpers to the templates. "amount" turns minor units
// into a display string (2500 → "25.00").
var funcMap = template.FuncMap{
	"amount": func(minor int64) string {
		return fmt.Sprintf("%d.%02d", minor/100, minor%100)
	},
}

// NewRenderer parses every page template against the shared base layout.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	base := filepath.Join(templateDir, "base.html")

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFiles(
			base,
			filepath.Join(templateDir, page+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("handler: parsing template %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Renderer{templates: templates, logger: logger}, nil
}

// View is the data every page template receives. Page-specific payloads
// ride in Data.
type View struct {
	Title string
	// User is the logged-in viewer, or nil.
	User *model.User
	// Errors maps form field names to messages for re-rendered forms.
	Errors map[string]string
	// Form echoes submitted values back into the form.
	Form map[string]string
	// Flash is the one-shot payment outcome banner, if any.
	Flash *redirect.Flash
	Data  any
}

// Render writes a page. Template failures after headers are sent can only
// be logged.
func (rn *Renderer) Render(w http.ResponseWriter, status int, page string, view View) {
	tmpl, ok := rn.templates[page]
	if !ok {
		rn.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base.html", view); err != nil {
		rn.logger.Error("rendering template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}
