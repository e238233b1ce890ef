package repository

import (
	"context"

	"github.com/travelia/travel-backend/internal/domain/entity"
)

// SessionRepository persists token bookkeeping rows.
type SessionRepository interface {
	Create(ctx context.Context, s *entity.Session) error
	GetByToken(ctx context.Context, token string) (*entity.Session, error)
	// DeleteByToken removes the session matching the token. Deleting a
	// token with no session is not an error.
	DeleteByToken(ctx context.Context, token string) error
	// DeleteExpired removes sessions whose expiry has passed and reports
	// how many were deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}
