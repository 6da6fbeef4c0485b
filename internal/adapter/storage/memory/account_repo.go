package memory

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	store *Store
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(store *Store) *AccountRepo {
	return &AccountRepo{store: store}
}

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[a.Email]; taken {
		return fmt.Errorf("insert account: %w", domain.ErrDuplicateEmail)
	}
	s.accounts[a.ID] = *a
	s.emails[a.Email] = a.ID
	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	id, ok := s.emails[email]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// GetByIDForUpdate reads through the transaction's staged balance.
func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	a, err := r.GetByID(ctx, id)
	if err != nil || a == nil {
		return a, err
	}
	if balance, staged := t.balances[id]; staged {
		a.Balance = balance
	}
	return a, nil
}

func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	_, ok := r.store.accounts[id]
	r.store.mu.RUnlock()
	if !ok {
		return fmt.Errorf("account not found: %s", id)
	}
	if balance < 0 {
		return fmt.Errorf("update account balance: negative balance for %s", id)
	}
	t.balances[id] = balance
	return nil
}
