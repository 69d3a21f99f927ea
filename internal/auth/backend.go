package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tubetip/tubetip/internal/api"
	"github.com/tubetip/tubetip/internal/apperror"
	"github.com/tubetip/tubetip/internal/model"
	"github.com/tubetip/tubetip/internal/repository"
	"github.com/tubetip/tubetip/internal/session"
)

// compile-time check that *GatewayBackend implements session.Backend
var _ session.Backend = (*GatewayBackend)(nil)

// GatewayBackend adapts the TubeTip API client plus the stored token pair
// into the identity surface the session store drives.
//
// One GatewayBackend exists per request-scoped session. It carries the
// gateway session ID (empty until login) and the current token pair, and
// persists token rotations back to the repository so the next request
// picks up the refreshed pair.
type GatewayBackend struct {
	client   *api.Client
	sessions repository.SessionRepository
	logger   *slog.Logger

	mu        sync.Mutex
	sessionID string
	pair      api.TokenPair
}

// NewGatewayBackend builds a backend for an existing gateway session.
// sessionID and pair are zero for anonymous visitors; Login fills them in.
func NewGatewayBackend(client *api.Client, sessions repository.SessionRepository, logger *slog.Logger, sessionID string, pair api.TokenPair) *GatewayBackend {
	return &GatewayBackend{
		client:    client,
		sessions:  sessions,
		logger:    logger,
		sessionID: sessionID,
		pair:      pair,
	}
}

// SessionID returns the gateway session ID, or "" when anonymous.
func (b *GatewayBackend) SessionID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessionID
}

// Pair returns the current token pair.
func (b *GatewayBackend) Pair() api.TokenPair {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pair
}

// CurrentUser resolves the identity behind the stored pair.
//
// REFRESH-AND-RETRY:
// Access tokens are short-lived. When the backend rejects ours we try one
// refresh with the stored refresh token, persist the rotated pair, and
// retry the identity fetch once. A second rejection (or a failed refresh)
// means the credential is dead for real and the session should end.
func (b *GatewayBackend) CurrentUser(ctx context.Context) (*model.User, error) {
	b.mu.Lock()
	pair := b.pair
	b.mu.Unlock()

	if pair.Zero() {
		return nil, apperror.AuthFailed("no credential")
	}

	user, err := b.client.CurrentUser(ctx, pair)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrAuth) {
		return nil, err
	}

	fresh, refreshErr := b.client.Refresh(ctx, pair)
	if refreshErr != nil {
		// Surface the original auth failure; a failed refresh just
		// confirms it.
		return nil, err
	}

	b.setPair(ctx, fresh)

	user, err = b.client.CurrentUser(ctx, fresh)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login exchanges credentials for an identity, creates the gateway session
// row, and installs the token pair.
func (b *GatewayBackend) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	user, pair, err := b.client.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := b.adopt(ctx, pair); err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates a creator account. The backend logs the new account in
// as part of registration, so we adopt the returned pair the same way
// Login does.
func (b *GatewayBackend) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	user, pair, err := b.client.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	if err := b.adopt(ctx, pair); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout invalidates the credential on the backend and removes the gateway
// session row. The row goes away even when the backend call fails — a
// stale ticket must never resurrect the session.
func (b *GatewayBackend) Logout(ctx context.Context) error {
	b.mu.Lock()
	id := b.sessionID
	pair := b.pair
	b.sessionID = ""
	b.pair = api.TokenPair{}
	b.mu.Unlock()

	if id != "" {
		if err := b.sessions.Delete(ctx, id); err != nil {
			b.logger.Error("deleting gateway session", "session_id", id, "error", err)
		}
	}

	if pair.Zero() {
		return nil
	}
	if err := b.client.Logout(ctx, pair); err != nil {
		return fmt.Errorf("auth: backend logout: %w", err)
	}
	return nil
}

// adopt persists a freshly issued pair as a new gateway session.
func (b *GatewayBackend) adopt(ctx context.Context, pair api.TokenPair) error {
	rec := &model.GatewaySession{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	}
	if err := b.sessions.Create(ctx, rec); err != nil {
		return fmt.Errorf("auth: storing gateway session: %w", err)
	}

	b.mu.Lock()
	b.sessionID = rec.ID
	b.pair = pair
	b.mu.Unlock()
	return nil
}

// setPair installs a rotated pair and persists it. Persistence failure is
// logged, not fatal — the in-memory pair still works for this request.
func (b *GatewayBackend) setPair(ctx context.Context, pair api.TokenPair) {
	b.mu.Lock()
	id := b.sessionID
	b.pair = pair
	b.mu.Unlock()

	if id == "" {
		return
	}
	if err := b.sessions.UpdateTokens(ctx, id, pair.Access, pair.Refresh); err != nil {
		b.logger.Error("persisting refreshed tokens", "session_id", id, "error", err)
	}
}
