package memory

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ChainRepo implements ports.ChainRepository.
type ChainRepo struct {
	store *Store
}

// NewChainRepo creates a new ChainRepo.
func NewChainRepo(store *Store) *ChainRepo {
	return &ChainRepo{store: store}
}

func (r *ChainRepo) Head(ctx context.Context, tx pgx.Tx) (*domain.ChainBlock, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	return r.head(t), nil
}

func (r *ChainRepo) head(t *Tx) *domain.ChainBlock {
	if n := len(t.blocks); n > 0 {
		b := t.blocks[n-1]
		return &b
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if n := len(r.store.blocks); n > 0 {
		b := r.store.blocks[n-1]
		return &b
	}
	return nil
}

// Append enforces the same contiguous-index rule as the idx primary key in PostgreSQL.
func (r *ChainRepo) Append(ctx context.Context, tx pgx.Tx, block *domain.ChainBlock) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	want := int64(0)
	if head := r.head(t); head != nil {
		want = head.Index + 1
	}
	if block.Index != want {
		return fmt.Errorf("insert chain block: index %d, expected %d", block.Index, want)
	}

	t.blocks = append(t.blocks, *block)
	return nil
}

func (r *ChainRepo) List(ctx context.Context, fromIndex int64, limit int) ([]domain.ChainBlock, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fromIndex < 0 {
		fromIndex = 0
	}
	if fromIndex >= int64(len(s.blocks)) {
		return []domain.ChainBlock{}, nil
	}

	end := int64(len(s.blocks))
	if limit > 0 && fromIndex+int64(limit) < end {
		end = fromIndex + int64(limit)
	}

	out := make([]domain.ChainBlock, end-fromIndex)
	copy(out, s.blocks[fromIndex:end])
	return out, nil
}
