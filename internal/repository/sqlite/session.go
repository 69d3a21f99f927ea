package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/tubetip/tubetip/internal/apperror"
	"github.com/tubetip/tubetip/internal/model"
	"github.com/tubetip/tubetip/internal/repository"
)

// compile-time check that *DB implements repository.SessionRepository
var _ repository.SessionRepository = (*DB)(nil)

// Create inserts a new gateway session, generating its ID and timestamps.
// The session is modified in place so the caller can mint a ticket for it.
func (db *DB) Create(ctx context.Context, session *model.GatewaySession) error {
	now := time.Now()
	session.ID = xid.New().String()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO gateway_sessions (id, access_token, refresh_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		session.AccessToken,
		session.RefreshToken,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by its ticket subject.
// Returns apperror.ErrNotFound if no session exists with that ID — which is
// how a logged-out-elsewhere ticket is detected.
func (db *DB) GetByID(ctx context.Context, id string) (*model.GatewaySession, error) {
	var s model.GatewaySession

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, access_token, refresh_token, created_at, updated_at
		 FROM gateway_sessions WHERE id = ?`,
		id,
	).Scan(
		&s.ID,
		&s.AccessToken,
		&s.RefreshToken,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}

	return &s, nil
}

// UpdateTokens replaces the stored token pair after a backend refresh.
func (db *DB) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE gateway_sessions SET access_token = ?, refresh_token = ?, updated_at = ?
		 WHERE id = ?`,
		accessToken,
		refreshToken,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating session %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update result for session %s: %w", id, err)
	}
	if rows == 0 {
		return apperror.NotFound("session", id)
	}

	return nil
}

// Delete removes a session. Deleting a missing session is not an error —
// logout should be idempotent.
func (db *DB) Delete(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM gateway_sessions WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting session %s: %w", id, err)
	}
	return nil
}
