package ports

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
// Lookups return (nil, nil) when nothing matches.
type AccountRepository interface {
	// Create returns an error wrapping domain.ErrDuplicateEmail when the e-mail is taken.
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error
}

// TransactionRepository defines persistence operations for settled transfers.
type TransactionRepository interface {
	// NextID reserves the id of the transaction about to be inserted in tx.
	NextID(ctx context.Context, tx pgx.Tx) (int64, error)
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	// ListSent and ListReceived return newest first, resolving the counterpart's e-mail.
	ListSent(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.TransferRecord, error)
	ListReceived(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.TransferRecord, error)
}

// ChainRepository defines persistence operations for the hash chain.
type ChainRepository interface {
	// Head locks and returns the last block, or nil when the chain is empty.
	Head(ctx context.Context, tx pgx.Tx) (*domain.ChainBlock, error)
	Append(ctx context.Context, tx pgx.Tx, block *domain.ChainBlock) error
	// List returns blocks ordered by index starting at fromIndex; limit <= 0 means no limit.
	List(ctx context.Context, fromIndex int64, limit int) ([]domain.ChainBlock, error)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
