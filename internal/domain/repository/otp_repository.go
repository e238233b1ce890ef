package repository

import (
	"context"
	"time"

	"github.com/travelia/travel-backend/internal/domain/entity"
)

// OtpRepository persists one-time codes.
type OtpRepository interface {
	Create(ctx context.Context, c *entity.OtpCode) error
	// FindValid returns the most recent unverified, unexpired code matching
	// kind and code. userID narrows the match when non-empty; recovery
	// flows pass "" and derive the owner from the returned row. No match
	// is ErrNotFound.
	FindValid(ctx context.Context, userID string, kind entity.OtpKind, code string, now time.Time) (*entity.OtpCode, error)
	// MarkVerified flips verified to true. It reports false when the row
	// was already verified (or absent), so a code can be consumed at most
	// once even under concurrent verification attempts.
	MarkVerified(ctx context.Context, id string) (bool, error)
	// CountByUserKind reports outstanding rows for a user and kind,
	// regardless of state.
	CountByUserKind(ctx context.Context, userID string, kind entity.OtpKind) (int64, error)
}
