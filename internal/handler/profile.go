package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tubetip/tubetip/internal/api"
	"github.com/tubetip/tubetip/internal/apperror"
	"github.com/tubetip/tubetip/internal/feed"
	"github.com/tubetip/tubetip/internal/model"
	"github.com/tubetip/tubetip/internal/redirect"
)

// ProfileHandler serves the public creator page, the tip checkout, and the
// tips load-more API.
type ProfileHandler struct {
	renderer *Renderer
	client   *api.Client
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(renderer *Renderer, client *api.Client, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{renderer: renderer, client: client, logger: logger}
}

// ProfileView is the page-specific payload for the profile template.
type ProfileView struct {
	// Username is the page's URL segment; the Profile record itself only
	// carries the display name.
	Username   string
	Profile    *model.Profile
	Tips       []model.Tip
	HasMore    bool
	NextOffset int
	// IsOwner switches the page between the creator's own view (bank nag,
	// edit affordances) and the supporter view (tip form).
	IsOwner bool
}

// ShowProfile renders a creator page.
//
// HTTP: GET /{username}
//
// PAYMENT RETURN HANDLING:
// Stripe sends supporters back here with ?result=success or ?result=cancel.
// That query parameter must be consumed exactly once: we stash the outcome
// in a one-shot flash cookie and redirect to the scrubbed URL, so a reload
// or a bookmark of the address bar can never replay the banner.
func (h *ProfileHandler) ShowProfile(w http.ResponseWriter, r *http.Request) {
	if outcome := redirect.Interpret(r.URL.Query()); outcome != redirect.None {
		redirect.SetFlash(w, redirect.KindTip, outcome)
		http.Redirect(w, r, redirect.Scrub(r.URL).String(), http.StatusSeeOther)
		return
	}

	username := chi.URLParam(r, "username")
	view := View{User: viewer(r)}
	if flash, ok := redirect.ConsumeFlash(w, r); ok {
		view.Flash = &flash
	}

	f := feed.New(h.client, feed.DefaultPageSize)
	f.Reset(username)
	profile, err := f.LoadProfile(r.Context())
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			view.Title = "Not found"
			h.renderer.Render(w, http.StatusNotFound, "not_found", view)
			return
		}
		h.logger.Error("loading profile",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		view.Title = "Something went wrong"
		h.renderer.Render(w, http.StatusBadGateway, "not_found", view)
		return
	}

	view.Title = profile.DisplayName
	view.Data = ProfileView{
		Username:   username,
		Profile:    profile,
		Tips:       f.Tips(),
		HasMore:    f.HasMore(),
		NextOffset: len(f.Tips()),
		IsOwner:    view.User != nil && view.User.Username == username,
	}
	h.renderer.Render(w, http.StatusOK, "profile", view)
}

// HandleTip starts a tip checkout and sends the supporter to Stripe.
// Stripe returns them to /{username}?result=success|cancel.
//
// The bank gate is enforced here as well as in the template: a profile
// that cannot receive payouts takes no tips, whatever the form said.
//
// HTTP: POST /{username}/tip (form-encoded: amount, name, message)
func (h *ProfileHandler) HandleTip(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	username := chi.URLParam(r, "username")

	profile, err := h.client.ProfileByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.renderer.Render(w, http.StatusNotFound, "not_found", View{
				Title: "Not found", User: viewer(r),
			})
			return
		}
		h.logger.Error("loading profile for tip",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		h.renderer.Render(w, http.StatusBadGateway, "not_found", View{
			Title: "Something went wrong", User: viewer(r),
		})
		return
	}

	if !profile.IsBankConnected {
		h.rerenderWithTipError(w, r, username, map[string]string{
			"form": profile.DisplayName + " cannot currently accept TubeTips",
		})
		return
	}

	amount, err := parseAmount(r.PostFormValue("amount"))
	if err != nil {
		h.rerenderWithTipError(w, r, username, map[string]string{"amount": err.Error()})
		return
	}

	req := api.CheckoutRequest{
		Username: username,
		Amount:   amount,
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Message:  strings.TrimSpace(r.PostFormValue("message")),
	}

	url, err := h.client.CheckoutURL(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			h.rerenderWithTipError(w, r, username, fieldErrors(err))
			return
		}
		if errors.Is(err, apperror.ErrNotFound) {
			h.renderer.Render(w, http.StatusNotFound, "not_found", View{
				Title: "Not found", User: viewer(r),
			})
			return
		}
		h.logger.Error("starting checkout",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		h.rerenderWithTipError(w, r, username, map[string]string{
			"form": "could not reach the payment provider, try again",
		})
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}

// rerenderWithTipError shows the profile page again with the tip form
// errors attached.
func (h *ProfileHandler) rerenderWithTipError(w http.ResponseWriter, r *http.Request, username string, errs map[string]string) {
	f := feed.New(h.client, feed.DefaultPageSize)
	f.Reset(username)
	profile, err := f.LoadProfile(r.Context())
	if err != nil {
		h.renderer.Render(w, http.StatusNotFound, "not_found", View{
			Title: "Not found", User: viewer(r),
		})
		return
	}

	h.renderer.Render(w, http.StatusUnprocessableEntity, "profile", View{
		Title:  profile.DisplayName,
		User:   viewer(r),
		Errors: errs,
		Data: ProfileView{
			Username:   username,
			Profile:    profile,
			Tips:       f.Tips(),
			HasMore:    f.HasMore(),
			NextOffset: len(f.Tips()),
		},
	})
}

// HandleTipsPage returns one page of tips as JSON for the load-more
// button.
//
// HTTP: GET /api/profiles/{username}/tips?offset=N
func (h *ProfileHandler) HandleTipsPage(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, apperror.ValidationFailed("offset", "offset must be a non-negative integer"))
			return
		}
		offset = n
	}

	profile, err := h.client.ProfileByUsername(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	f := feed.New(h.client, feed.DefaultPageSize)
	page, err := f.LoadPage(r.Context(), profile.ID, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Tips       []model.Tip `json:"tips"`
		HasMore    bool        `json:"hasMore"`
		NextOffset int         `json:"nextOffset"`
	}{
		Tips:       page.Tips,
		HasMore:    page.HasMore,
		NextOffset: page.NextOffset,
	})
}

// CheckoutSuccessView is the page-specific payload for the checkout
// thank-you template.
type CheckoutSuccessView struct {
	Username  string
	Amount    int64
	HasAmount bool
}

// ShowCheckoutSuccess thanks a supporter after checkout. Stripe appends
// the creator's username and the paid amount in minor units as query
// parameters; when present they personalize the page and link back to
// the creator, otherwise a generic thank-you renders.
//
// HTTP: GET /checkout/success?username=alice&amount=500
func (h *ProfileHandler) ShowCheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	data := CheckoutSuccessView{
		Username: r.URL.Query().Get("username"),
	}
	if raw := r.URL.Query().Get("amount"); raw != "" {
		if amount, err := strconv.ParseInt(raw, 10, 64); err == nil && amount > 0 {
			data.Amount = amount
			data.HasAmount = true
		}
	}

	h.renderer.Render(w, http.StatusOK, "checkout_success", View{
		Title: "Thank you",
		User:  viewer(r),
		Data:  data,
	})
}

// parseAmount turns a form amount like "5", "5.5", or "5.50" into minor
// units. Floats are avoided on purpose — 0.1+0.2 style drift has no place
// in money handling.
func parseAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("amount is required")
	}

	// Reject signs up front. ParseInt would swallow "-0", and a sign in
	// the fraction ("1.-5") must not subtract from the whole part.
	if strings.ContainsAny(raw, "+-") {
		return 0, fmt.Errorf("amount must be a positive number")
	}

	whole, frac, _ := strings.Cut(raw, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount has too many decimal places")
	}
	// "5." and ".50" are fine; "" for both is not.
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("amount must be a positive number")
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || cents < 0 {
		return 0, fmt.Errorf("amount must be a positive number")
	}

	amount := units*100 + cents
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be greater than zero")
	}
	return amount, nil
}
