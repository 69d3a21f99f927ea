// Package session holds the client's view of "who is logged in".
//
// There is exactly one Store per running client (per browser session, in
// this server's case). It starts in a loading state, is resolved once by
// Initialize, and afterwards mutates only through Login and Logout. Every
// other component — the access guard above all — reads it and never writes.
//
// THE LOADING FLAG IS LOAD-BEARING:
// While LoadingUser is true, identity is UNKNOWN, not "unauthenticated".
// The guard must never bounce someone to /login just because the identity
// fetch has not resolved yet; it shows a loading state instead. Collapsing
// "unknown" into "no user" would log out every authenticated user on every
// page refresh.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tubetip/tubetip/internal/model"
)

// Backend is the identity surface the Store drives. The production
// implementation wraps the backend API client plus the gateway's stored
// token pair (including the refresh-and-retry dance); tests use an
// in-memory fake.
type Backend interface {
	// CurrentUser returns the identity behind the stored credential, or
	// apperror.ErrAuth when there is none or it has expired beyond repair.
	CurrentUser(ctx context.Context) (*model.User, error)

	// Login exchanges credentials for an identity and remembers the
	// resulting credential.
	Login(ctx context.Context, creds model.Credentials) (*model.User, error)

	// Logout invalidates the remembered credential server-side.
	Logout(ctx context.Context) error
}

// Snapshot is an immutable read of the session, safe to hand to the guard
// and to templates. User is a copy — mutating it changes nothing.
type Snapshot struct {
	User        *model.User
	LoadingUser bool
}

// IsAuthenticated reports a definitely-logged-in user: a user is present
// AND the initial identity fetch has resolved.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil && !s.LoadingUser
}

// Store owns the session record. Single writer, many readers; the mutex
// stands in for the event-loop serialization the browser client gets for
// free.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  *slog.Logger

	user    *model.User
	loading bool
}

// NewStore creates a Store in the loading state. Callers must Initialize
// it before trusting IsAuthenticated.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
		loading: true,
	}
}

// Initialize resolves the session exactly once per client start: it asks
// the backend who the stored credential belongs to.
//
// Failure means "not authenticated", never "crash": the user is cleared
// and loading ends either way. If a user had somehow been set before a
// failed re-initialization, logout side effects run too — the client must
// never keep believing in a credential the backend has rejected.
func (s *Store) Initialize(ctx context.Context) {
	user, err := s.backend.CurrentUser(ctx)

	s.mu.Lock()
	hadUser := s.user != nil
	if err == nil {
		s.user = user
	} else {
		s.user = nil
	}
	s.loading = false
	s.mu.Unlock()

	if err != nil && hadUser {
		// Stale credential with a user still set locally: clear the
		// backend side too so both ends agree the session is over.
		if lerr := s.backend.Logout(ctx); lerr != nil {
			s.logger.Debug("logout after failed initialize", slog.String("error", lerr.Error()))
		}
	}
}

// Login authenticates and installs the user atomically: either the session
// transitions fully to the new user, or it is left exactly as it was.
func (s *Store) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	user, err := s.backend.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("session: login: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.loading = false
	s.mu.Unlock()

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// SetUser installs an already-authenticated user, bypassing the credential
// exchange. Used after registration, which logs the account in as a side
// effect of creating it.
func (s *Store) SetUser(user *model.User) {
	s.mu.Lock()
	s.user = user
	s.loading = false
	s.mu.Unlock()
}

// Logout ends the session. Local state is cleared UNCONDITIONALLY — even
// when the backend call fails, this client must not keep believing it is
// authenticated. The backend error is still returned so callers can log it.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.loading = false
	s.mu.Unlock()

	if err := s.backend.Logout(ctx); err != nil {
		return fmt.Errorf("session: logout: %w", err)
	}
	return nil
}

// IsAuthenticated is true iff a user is present and loading has resolved.
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// CurrentUser returns a copy of the session's user, or nil.
func (s *Store) CurrentUser() *model.User {
	return s.Snapshot().User
}

// Snapshot returns an immutable view for guards and templates.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{LoadingUser: s.loading}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}
