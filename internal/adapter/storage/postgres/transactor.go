package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ledgerTxOptions is the isolation every ledger write runs under. Transfers serialise through
// SELECT ... FOR UPDATE on the account rows and the chain advisory lock, not through SERIALIZABLE.
var ledgerTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}

// Transactor implements ports.DBTransactor. A non-zero lockTimeout bounds how long a transaction
// may queue behind another transfer's locks before Postgres aborts it with 55P03.
type Transactor struct {
	pool        Pool
	lockTimeout time.Duration
}

func NewTransactor(pool Pool, lockTimeout time.Duration) *Transactor {
	return &Transactor{pool: pool, lockTimeout: lockTimeout}
}

// Begin opens a READ COMMITTED read-write transaction and applies the lock timeout to it.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.pool.BeginTx(ctx, ledgerTxOptions)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	if t.lockTimeout <= 0 {
		return tx, nil
	}

	// SET takes no bind parameters.
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", t.lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, stmt); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("set lock_timeout: %w", err)
	}
	return tx, nil
}
