package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tubetip/tubetip/internal/api"
	"github.com/tubetip/tubetip/internal/apperror"
	"github.com/tubetip/tubetip/internal/repository"
	"github.com/tubetip/tubetip/internal/session"
)

// TicketCookie is the name of the session ticket cookie.
const TicketCookie = "tubetip_ticket"

type contextKey string

const (
	storeKey   contextKey = "sessionStore"
	backendKey contextKey = "gatewayBackend"
)

// Sessions resolves identity for every request.
//
// The chain per request: read the ticket cookie, validate it, load the
// stored token pair, build a backend around it, and let the session store
// resolve who is logged in. By the time any handler (or the access guard)
// runs, the snapshot is settled — LoadingUser only shows up in the brief
// window inside Initialize.
//
// Failure handling is deliberately soft. A missing, garbled, or expired
// ticket does not produce an error page; it produces an anonymous session
// and a cleared cookie, and the guard takes it from there.
func Sessions(tickets *TicketService, client *api.Client, sessions repository.SessionRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, pair := resolveTicket(w, r, tickets, sessions, logger)

			backend := NewGatewayBackend(client, sessions, logger, sessionID, pair)
			store := session.NewStore(backend, logger)
			store.Initialize(r.Context())

			// An identity fetch that ends a previously working session
			// (expired beyond refresh, row deleted elsewhere) leaves the
			// store anonymous; drop the now-useless ticket too.
			if sessionID != "" && !store.IsAuthenticated() {
				ClearTicket(w)
			}

			ctx := context.WithValue(r.Context(), storeKey, store)
			ctx = context.WithValue(ctx, backendKey, backend)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveTicket maps the cookie to a stored session, clearing the cookie
// on any failure. Returns zero values for anonymous visitors.
func resolveTicket(w http.ResponseWriter, r *http.Request, tickets *TicketService, sessions repository.SessionRepository, logger *slog.Logger) (string, api.TokenPair) {
	cookie, err := r.Cookie(TicketCookie)
	if err != nil {
		return "", api.TokenPair{}
	}

	sessionID, err := tickets.Validate(cookie.Value)
	if err != nil {
		ClearTicket(w)
		return "", api.TokenPair{}
	}

	rec, err := sessions.GetByID(r.Context(), sessionID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			logger.Error("loading gateway session", "session_id", sessionID, "error", err)
		}
		ClearTicket(w)
		return "", api.TokenPair{}
	}

	return rec.ID, api.TokenPair{Access: rec.AccessToken, Refresh: rec.RefreshToken}
}

// SetTicket issues a ticket for the backend's current session and sets the
// cookie. Call after a successful login or registration.
func SetTicket(w http.ResponseWriter, tickets *TicketService, backend *GatewayBackend) error {
	ticket, err := tickets.Issue(backend.SessionID())
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     TicketCookie,
		Value:    ticket,
		Path:     "/",
		MaxAge:   int(TicketLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearTicket expires the ticket cookie.
func ClearTicket(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TicketCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// StoreFromContext returns the request's session store. The session
// middleware always installs one; a nil return means a wiring bug.
func StoreFromContext(ctx context.Context) *session.Store {
	store, _ := ctx.Value(storeKey).(*session.Store)
	return store
}

// BackendFromContext returns the request's gateway backend.
func BackendFromContext(ctx context.Context) *GatewayBackend {
	backend, _ := ctx.Value(backendKey).(*GatewayBackend)
	return backend
}

// SnapshotFromRequest adapts the context store to the access guard's
// SnapshotFunc shape. A missing store reads as anonymous-and-resolved.
func SnapshotFromRequest(r *http.Request) session.Snapshot {
	store := StoreFromContext(r.Context())
	if store == nil {
		return session.Snapshot{}
	}
	return store.Snapshot()
}
