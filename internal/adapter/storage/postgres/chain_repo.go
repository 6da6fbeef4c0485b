package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// chainAppendLockKey is the pg_advisory_xact_lock key held by every chain append, so a transfer
// always reads the head committed by the append before it.
const chainAppendLockKey int64 = 0x776c6564676572 // "wledger"

// ChainRepo implements ports.ChainRepository. Appends are serialised by an advisory lock held to
// the end of the database transaction; the idx primary key stays as the last line against forks.
type ChainRepo struct {
	pool Pool
}

// NewChainRepo creates a new ChainRepo.
func NewChainRepo(pool Pool) *ChainRepo {
	return &ChainRepo{pool: pool}
}

// Head takes the chain append lock and returns the last block, or nil on an empty chain. The lock
// is released when tx commits or rolls back.
func (r *ChainRepo) Head(ctx context.Context, tx pgx.Tx) (*domain.ChainBlock, error) {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, chainAppendLockKey); err != nil {
		return nil, fmt.Errorf("lock chain: %w", err)
	}

	query := `SELECT idx, transaction_id, prev_hash, hash, created_at FROM chain_blocks
		ORDER BY idx DESC LIMIT 1`

	b, err := scanBlock(tx.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chain head: %w", err)
	}
	return &b, nil
}

// Append inserts a block within a database transaction.
func (r *ChainRepo) Append(ctx context.Context, tx pgx.Tx, b *domain.ChainBlock) error {
	var txID *int64
	if !b.IsGenesis() {
		txID = &b.TransactionID
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO chain_blocks (idx, transaction_id, prev_hash, hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		b.Index, txID, b.PrevHash, b.Hash, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chain block: %w", err)
	}
	return nil
}

// List returns blocks ordered by index starting at fromIndex; limit <= 0 returns the rest of the chain.
func (r *ChainRepo) List(ctx context.Context, fromIndex int64, limit int) ([]domain.ChainBlock, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := r.pool.Query(ctx,
		`SELECT idx, transaction_id, prev_hash, hash, created_at FROM chain_blocks
		WHERE idx >= $1 ORDER BY idx ASC LIMIT $2`,
		fromIndex, lim,
	)
	if err != nil {
		return nil, fmt.Errorf("list chain: %w", err)
	}
	defer rows.Close()

	blocks := []domain.ChainBlock{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chain block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chain: %w", err)
	}
	return blocks, nil
}

func scanBlock(row pgx.Row) (domain.ChainBlock, error) {
	var (
		b    domain.ChainBlock
		txID *int64
	)
	if err := row.Scan(&b.Index, &txID, &b.PrevHash, &b.Hash, &b.CreatedAt); err != nil {
		return domain.ChainBlock{}, err
	}
	if txID != nil {
		b.TransactionID = *txID
	}
	return b, nil
}
