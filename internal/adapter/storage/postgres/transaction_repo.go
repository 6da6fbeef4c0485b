package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, sender_id, receiver_id, amount_envelope, message_envelope, status, settled_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// NextID draws the next id from the transactions sequence. A rolled back transfer leaves a gap.
func (r *TransactionRepo) NextID(ctx context.Context, tx pgx.Tx) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `SELECT nextval(pg_get_serial_sequence('transactions', 'id'))`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next transaction id: %w", err)
	}
	return id, nil
}

// Create inserts a settled transaction within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.SenderID, t.ReceiverID, t.AmountEnvelope, t.MessageEnvelope, t.Status, t.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by id.
func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.SenderID, &t.ReceiverID, &t.AmountEnvelope, &t.MessageEnvelope, &t.Status, &t.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// ListSent returns transfers sent by the account, newest first, with the receiver's e-mail.
func (r *TransactionRepo) ListSent(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.TransferRecord, error) {
	query := `SELECT t.id, t.sender_id, t.receiver_id, t.amount_envelope, t.message_envelope, t.status, t.settled_at, a.email
		FROM transactions t JOIN accounts a ON a.id = t.receiver_id
		WHERE t.sender_id = $1
		ORDER BY t.id DESC
		LIMIT $2`
	return r.list(ctx, query, accountID, limit)
}

// ListReceived returns transfers received by the account, newest first, with the sender's e-mail.
func (r *TransactionRepo) ListReceived(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.TransferRecord, error) {
	query := `SELECT t.id, t.sender_id, t.receiver_id, t.amount_envelope, t.message_envelope, t.status, t.settled_at, a.email
		FROM transactions t JOIN accounts a ON a.id = t.sender_id
		WHERE t.receiver_id = $1
		ORDER BY t.id DESC
		LIMIT $2`
	return r.list(ctx, query, accountID, limit)
}

func (r *TransactionRepo) list(ctx context.Context, query string, accountID uuid.UUID, limit int) ([]domain.TransferRecord, error) {
	// LIMIT NULL means no limit.
	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := r.pool.Query(ctx, query, accountID, lim)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	records := []domain.TransferRecord{}
	for rows.Next() {
		var rec domain.TransferRecord
		if err := rows.Scan(
			&rec.ID, &rec.SenderID, &rec.ReceiverID, &rec.AmountEnvelope, &rec.MessageEnvelope,
			&rec.Status, &rec.SettledAt, &rec.CounterpartEmail,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return records, nil
}
