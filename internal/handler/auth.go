package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tubetip/tubetip/internal/access"
	"github.com/tubetip/tubetip/internal/apperror"
	"github.com/tubetip/tubetip/internal/auth"
	"github.com/tubetip/tubetip/internal/funnel"
	"github.com/tubetip/tubetip/internal/model"
)

// AuthHandler owns login, registration, and logout.
type AuthHandler struct {
	renderer *Renderer
	tickets  *auth.TicketService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(renderer *Renderer, tickets *auth.TicketService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{renderer: renderer, tickets: tickets, logger: logger}
}

// destinationFor maps a logged-in account to the page it belongs on:
// the next incomplete onboarding step, or its own profile.
func destinationFor(user *model.User) string {
	switch funnel.StepForUser(user) {
	case funnel.NeedsProfile:
		return access.PathProfileSetup
	case funnel.NeedsBank:
		return access.PathConnectBank
	case funnel.Anonymous:
		return "/"
	default:
		return access.OwnProfilePath(user.Username)
	}
}

// ShowLogin renders the login form.
//
// HTTP: GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "login", View{
		Title: "Log in",
	})
}

// HandleLogin authenticates and redirects to wherever the funnel stands.
//
// HTTP: POST /login (form-encoded)
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	creds := model.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	form := map[string]string{"email": creds.Email}
	if fieldErrs := validateCredentials(creds); len(fieldErrs) > 0 {
		h.renderer.Render(w, http.StatusUnprocessableEntity, "login", View{
			Title: "Log in", Errors: fieldErrs, Form: form,
		})
		return
	}

	store := auth.StoreFromContext(r.Context())
	user, err := store.Login(r.Context(), creds)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrAuth):
			h.renderer.Render(w, http.StatusUnauthorized, "login", View{
				Title:  "Log in",
				Errors: map[string]string{"form": "incorrect email or password"},
				Form:   form,
			})
		case errors.Is(err, apperror.ErrValidation):
			h.renderer.Render(w, http.StatusUnprocessableEntity, "login", View{
				Title: "Log in", Errors: fieldErrors(err), Form: form,
			})
		default:
			h.logger.Error("login failed", slog.String("error", err.Error()))
			h.renderer.Render(w, http.StatusBadGateway, "login", View{
				Title:  "Log in",
				Errors: map[string]string{"form": "something went wrong, try again"},
				Form:   form,
			})
		}
		return
	}

	if err := auth.SetTicket(w, h.tickets, auth.BackendFromContext(r.Context())); err != nil {
		h.logger.Error("issuing ticket", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, destinationFor(user), http.StatusSeeOther)
}

// ShowRegister renders the registration form.
//
// HTTP: GET /register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "register", View{
		Title: "Create account",
	})
}

// HandleRegister creates a creator account. The backend logs the account
// in as part of creation, so on success the browser gets a ticket and
// lands on profile setup.
//
// HTTP: POST /register (form-encoded)
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	reg := model.Registration{
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}

	form := map[string]string{"username": reg.Username, "email": reg.Email}
	if fieldErrs := validateRegistration(reg); len(fieldErrs) > 0 {
		h.renderer.Render(w, http.StatusUnprocessableEntity, "register", View{
			Title: "Create account", Errors: fieldErrs, Form: form,
		})
		return
	}

	backend := auth.BackendFromContext(r.Context())
	user, err := backend.Register(r.Context(), reg)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrConflict):
			h.renderer.Render(w, http.StatusUnprocessableEntity, "register", View{
				Title: "Create account", Errors: fieldErrors(err), Form: form,
			})
		default:
			h.logger.Error("registration failed", slog.String("error", err.Error()))
			h.renderer.Render(w, http.StatusBadGateway, "register", View{
				Title:  "Create account",
				Errors: map[string]string{"form": "something went wrong, try again"},
				Form:   form,
			})
		}
		return
	}

	auth.StoreFromContext(r.Context()).SetUser(user)

	if err := auth.SetTicket(w, h.tickets, backend); err != nil {
		h.logger.Error("issuing ticket", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, access.PathProfileSetup, http.StatusSeeOther)
}

// HandleLogout ends the session and drops the ticket.
//
// HTTP: POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	store := auth.StoreFromContext(r.Context())
	if err := store.Logout(r.Context()); err != nil {
		// The local session is gone regardless; the backend failure is
		// worth a log line and nothing more.
		h.logger.Warn("backend logout failed", slog.String("error", err.Error()))
	}
	auth.ClearTicket(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// validateCredentials checks the login form before any network call.
func validateCredentials(creds model.Credentials) map[string]string {
	errs := map[string]string{}
	if creds.Email == "" {
		errs["email"] = "email is required"
	}
	if creds.Password == "" {
		errs["password"] = "password is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validateRegistration checks the registration form before any network
// call. The backend revalidates everything; this just catches the cheap
// mistakes without a round trip.
func validateRegistration(reg model.Registration) map[string]string {
	errs := map[string]string{}
	if reg.Username == "" {
		errs["username"] = "username is required"
	}
	if reg.Email == "" {
		errs["email"] = "email is required"
	}
	if reg.Password == "" {
		errs["password"] = "password is required"
	}
	if reg.Password != reg.ConfirmPassword {
		errs["confirm_password"] = "passwords do not match"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// fieldErrors pulls a field→message map out of a backend validation
// error, falling back to a single form-level message.
func fieldErrors(err error) map[string]string {
	if fields := apperror.Fields(err); len(fields) > 0 {
		return fields
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return map[string]string{"form": appErr.Message}
	}
	return map[string]string{"form": "invalid input"}
}
