package memory

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	store *Store
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(store *Store) *TransactionRepo {
	return &TransactionRepo{store: store}
}

func (r *TransactionRepo) NextID(ctx context.Context, tx pgx.Tx) (int64, error) {
	t, err := asTx(tx)
	if err != nil {
		return 0, err
	}

	r.store.mu.RLock()
	committed := len(r.store.transactions)
	r.store.mu.RUnlock()
	return int64(committed + len(t.transactions) + 1), nil
}

func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	next, err := r.NextID(ctx, tx)
	if err != nil {
		return err
	}
	if txn.ID != next {
		return fmt.Errorf("insert transaction: id %d out of sequence, expected %d", txn.ID, next)
	}

	t, _ := asTx(tx)
	t.transactions = append(t.transactions, *txn)
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 1 || id > int64(len(s.transactions)) {
		return nil, nil
	}
	txn := s.transactions[id-1]
	return &txn, nil
}

func (r *TransactionRepo) ListSent(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.TransferRecord, error) {
	return r.list(accountID, limit, true), nil
}

func (r *TransactionRepo) ListReceived(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.TransferRecord, error) {
	return r.list(accountID, limit, false), nil
}

func (r *TransactionRepo) list(accountID uuid.UUID, limit int, sent bool) []domain.TransferRecord {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := []domain.TransferRecord{}
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if limit > 0 && len(records) >= limit {
			break
		}
		txn := s.transactions[i]

		var counterpart uuid.UUID
		switch {
		case sent && txn.SenderID == accountID:
			counterpart = txn.ReceiverID
		case !sent && txn.ReceiverID == accountID:
			counterpart = txn.SenderID
		default:
			continue
		}

		records = append(records, domain.TransferRecord{
			Transaction:      txn,
			CounterpartEmail: s.accounts[counterpart].Email,
		})
	}
	return records
}
