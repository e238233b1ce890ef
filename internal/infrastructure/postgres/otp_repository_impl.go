package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/travelia/travel-backend/internal/domain/entity"
	"github.com/travelia/travel-backend/internal/domain/repository"
)

type OtpRepository struct {
	db DBTX
}

func NewOtpRepository(db DBTX) *OtpRepository {
	return &OtpRepository{db: db}
}

func (r *OtpRepository) Create(ctx context.Context, c *entity.OtpCode) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO otp_codes (user_id, code, kind, expires_at, verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, c.UserID, c.Code, c.Kind, c.ExpiresAt, c.Verified)

	return mapWriteErr(row.Scan(&c.ID, &c.CreatedAt))
}

func (r *OtpRepository) FindValid(ctx context.Context, userID string, kind entity.OtpKind, code string, now time.Time) (*entity.OtpCode, error) {
	// Most recent row wins when several codes are outstanding.
	q := `
		SELECT id, user_id, code, kind, expires_at, verified, created_at
		FROM otp_codes
		WHERE kind = $1 AND code = $2 AND verified = FALSE AND expires_at > $3
	`
	args := []any{kind, code, now}
	if userID != "" {
		q += ` AND user_id = $4`
		args = append(args, userID)
	}
	q += ` ORDER BY created_at DESC LIMIT 1`

	c := &entity.OtpCode{}
	row := r.db.QueryRow(ctx, q, args...)
	if err := row.Scan(&c.ID, &c.UserID, &c.Code, &c.Kind, &c.ExpiresAt,
		&c.Verified, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return c, nil
}

func (r *OtpRepository) MarkVerified(ctx context.Context, id string) (bool, error) {
	// Conditional update so a code can only be consumed once even when two
	// verification attempts race.
	res, err := r.db.Exec(ctx, `
		UPDATE otp_codes
		SET verified = TRUE
		WHERE id = $1 AND verified = FALSE
	`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *OtpRepository) CountByUserKind(ctx context.Context, userID string, kind entity.OtpKind) (int64, error) {
	var n int64
	row := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM otp_codes WHERE user_id = $1 AND kind = $2
	`, userID, kind)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

var _ repository.OtpRepository = (*OtpRepository)(nil)
