package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/travelia/travel-backend/internal/domain/entity"
	"github.com/travelia/travel-backend/internal/domain/repository"
)

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *entity.Session) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO sessions (id, user_id, token, ip_address, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, s.ID, s.UserID, s.Token, s.IP, s.UserAgent, s.ExpiresAt)

	return mapWriteErr(row.Scan(&s.CreatedAt))
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*entity.Session, error) {
	s := &entity.Session{}

	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, token, ip_address, user_agent, expires_at, created_at
		FROM sessions
		WHERE token = $1
	`, token)

	if err := row.Scan(&s.ID, &s.UserID, &s.Token, &s.IP, &s.UserAgent,
		&s.ExpiresAt, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return s, nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	// Zero rows affected is fine; logout is idempotent.
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ repository.SessionRepository = (*SessionRepository)(nil)
