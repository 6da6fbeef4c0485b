// Package memory is an in-process storage driver for local development and tests. Write
// transactions are serialised by a single lock and their changes become visible to readers only
// when committed.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errUnsupported = errors.New("memory: operation not supported")

// Store holds committed state shared by the memory repositories.
type Store struct {
	writeSem chan struct{} // one open write transaction at a time

	mu           sync.RWMutex
	accounts     map[uuid.UUID]domain.Account
	emails       map[string]uuid.UUID
	transactions []domain.Transaction // transaction id == index + 1
	blocks       []domain.ChainBlock
	audit        []domain.AuditLog
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		writeSem: make(chan struct{}, 1),
		accounts: make(map[uuid.UUID]domain.Account),
		emails:   make(map[string]uuid.UUID),
	}
}

// Begin implements ports.DBTransactor. It blocks until no other write transaction is open.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	select {
	case s.writeSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Tx{store: s, balances: make(map[uuid.UUID]int64)}, nil
}

// Ping implements ports.HealthChecker.
func (s *Store) Ping(context.Context) error { return nil }

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "memory" }

// Tx stages writes until Commit. It implements pgx.Tx so the memory driver satisfies the same
// repository ports as the PostgreSQL driver; only Commit and Rollback are meaningful.
type Tx struct {
	store        *Store
	balances     map[uuid.UUID]int64
	transactions []domain.Transaction
	blocks       []domain.ChainBlock
	closed       bool
}

func asTx(tx pgx.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory: foreign transaction type %T", tx)
	}
	if t.closed {
		return nil, pgx.ErrTxClosed
	}
	return t, nil
}

func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true

	s := t.store
	now := time.Now().UTC()
	s.mu.Lock()
	for id, balance := range t.balances {
		acc := s.accounts[id]
		acc.Balance = balance
		acc.UpdatedAt = now
		s.accounts[id] = acc
	}
	s.transactions = append(s.transactions, t.transactions...)
	s.blocks = append(s.blocks, t.blocks...)
	s.mu.Unlock()

	<-s.writeSem
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	<-t.store.writeSem
	return nil
}

func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, fmt.Errorf("nested transaction: %w", errUnsupported)
}

func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errUnsupported
}

// SendBatch is not supported and returns nil.
func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *Tx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errUnsupported
}

func (t *Tx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errUnsupported
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errUnsupported
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{}
}

func (t *Tx) Conn() *pgx.Conn { return nil }

type errRow struct{}

func (errRow) Scan(...any) error { return errUnsupported }
