package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/travelia/travel-backend/internal/domain/entity"
	repo "github.com/travelia/travel-backend/internal/domain/repository"
	"github.com/travelia/travel-backend/pkg/helpers"
)

// OtpManager issues, matches, and consumes one-time codes. The repository is
// passed per call so the same manager works against the pool or inside the
// registration transaction.
type OtpManager struct {
	TTL    time.Duration
	Logger *logrus.Logger
}

func NewOtpManager(ttl time.Duration, logger *logrus.Logger) *OtpManager {
	return &OtpManager{TTL: ttl, Logger: logger}
}

// Issue persists a fresh unverified code for (userID, kind). Outstanding
// codes for the same pair are left alone; the most recent one wins at match
// time.
func (m *OtpManager) Issue(ctx context.Context, otps repo.OtpRepository, userID string, kind entity.OtpKind) (*entity.OtpCode, error) {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return nil, err
	}
	c := &entity.OtpCode{
		UserID:    userID,
		Code:      code,
		Kind:      kind,
		ExpiresAt: time.Now().Add(m.TTL),
	}
	if err := otps.Create(ctx, c); err != nil {
		return nil, storageErr(err)
	}
	if m.Logger != nil {
		m.Logger.WithFields(logrus.Fields{"user_id": userID, "kind": kind}).Debug("otp issued")
	}
	return c, nil
}

// FindValid returns the most recent unverified, unexpired code matching the
// arguments. userID may be empty for recovery flows; the owner is then
// derived from the returned row. A miss is ErrInvalidOrExpiredOtp.
func (m *OtpManager) FindValid(ctx context.Context, otps repo.OtpRepository, userID string, kind entity.OtpKind, code string) (*entity.OtpCode, error) {
	c, err := otps.FindValid(ctx, userID, kind, code, time.Now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidOrExpiredOtp
		}
		return nil, storageErr(err)
	}
	return c, nil
}

// Consume marks the code verified. Consuming an already verified code is
// rejected with ErrInvalidOrExpiredOtp rather than treated as a no-op, so a
// replayed code always fails loudly.
func (m *OtpManager) Consume(ctx context.Context, otps repo.OtpRepository, id string) error {
	ok, err := otps.MarkVerified(ctx, id)
	if err != nil {
		return storageErr(err)
	}
	if !ok {
		return ErrInvalidOrExpiredOtp
	}
	return nil
}
