package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

// Transfers are recorded only once they have settled.
const TransactionStatusSettled TransactionStatus = "SETTLED"

// Transaction is an immutable record of a settled peer-to-peer transfer. Amount and message are
// stored only as sealed envelopes.
type Transaction struct {
	ID              int64             `json:"id"`
	SenderID        uuid.UUID         `json:"sender_id"`
	ReceiverID      uuid.UUID         `json:"receiver_id"`
	AmountEnvelope  string            `json:"amount_envelope"`
	MessageEnvelope string            `json:"message_envelope"`
	Status          TransactionStatus `json:"status"`
	SettledAt       time.Time         `json:"settled_at"`
}

// IsParticipant reports whether the account sent or received the transfer.
func (t *Transaction) IsParticipant(accountID uuid.UUID) bool {
	return accountID == t.SenderID || accountID == t.ReceiverID
}

// SealContext returns the context a field of this transaction was sealed under.
func (t *Transaction) SealContext(field SealField) SealContext {
	return SealContext{
		TransactionID: t.ID,
		SenderID:      t.SenderID,
		ReceiverID:    t.ReceiverID,
		Field:         field,
	}
}

// TransferRecord is a transaction as seen from one participant's history.
type TransferRecord struct {
	Transaction
	CounterpartEmail string `json:"counterpart_email"`
}
