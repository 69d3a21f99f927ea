package repository

import (
	"context"

	"github.com/tubetip/tubetip/internal/model"
)

// SessionRepository stores the backend token pairs behind browser tickets.
type SessionRepository interface {
	Create(ctx context.Context, session *model.GatewaySession) error
	GetByID(ctx context.Context, id string) (*model.GatewaySession, error)
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string) error
	Delete(ctx context.Context, id string) error
}
