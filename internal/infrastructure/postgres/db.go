package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/travelia/travel-backend/internal/domain/repository"
)

// DBTX is the query seam shared by *pgxpool.Pool and pgx.Tx so every
// repository can run against the pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ DBTX = (*pgxpool.Pool)(nil)
	_ DBTX = (pgx.Tx)(nil)
)

// Repositories binds every repository implementation to the given handle.
func Repositories(db DBTX) repository.Repositories {
	return repository.Repositories{
		Users:    NewUserRepository(db),
		Profiles: NewProfileRepository(db),
		Sessions: NewSessionRepository(db),
		Otps:     NewOtpRepository(db),
	}
}

const uniqueViolation = "23505"

// mapWriteErr converts unique-constraint violations into
// repository.ErrDuplicate and passes everything else through.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}
