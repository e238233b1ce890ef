package repository

import "context"

// Repositories bundles every repository bound to one database handle, either
// the shared pool or a single transaction.
type Repositories struct {
	Users    UserRepository
	Profiles ProfileRepository
	Sessions SessionRepository
	Otps     OtpRepository
}

// UnitOfWork runs fn with repositories bound to one transaction. If fn
// returns an error the transaction is rolled back and nothing fn wrote is
// observable; otherwise everything commits together.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
}
