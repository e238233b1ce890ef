package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/travelia/travel-backend/internal/domain/repository"
)

// UnitOfWork runs callbacks inside a single pgx transaction with
// transaction-bound repositories.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, r repository.Repositories) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, Repositories(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)
