package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SealField names the transaction field an envelope protects.
type SealField string

const (
	SealFieldAmount  SealField = "amount"
	SealFieldMessage SealField = "message"
)

// SealContext is bound to an envelope as additional authenticated data, so an envelope cannot be
// replayed into another transaction, another pair of accounts, or another field.
type SealContext struct {
	TransactionID int64
	SenderID      uuid.UUID
	ReceiverID    uuid.UUID
	Field         SealField
}

// AAD returns the canonical additional-data bytes for the context.
func (c SealContext) AAD() []byte {
	return []byte(fmt.Sprintf("wallet-ledger/v1|%d|%s|%s|%s", c.TransactionID, c.SenderID, c.ReceiverID, c.Field))
}

// Includes reports whether the account is a participant of the sealed transaction.
func (c SealContext) Includes(accountID uuid.UUID) bool {
	return accountID == c.SenderID || accountID == c.ReceiverID
}

// SealedField pairs an envelope with the context it was sealed under.
type SealedField struct {
	Context  SealContext
	Envelope string
}

var (
	ErrGrantSpent   = errors.New("decrypt grant already spent")
	ErrGrantExpired = errors.New("decrypt grant expired")
	ErrGrantInvalid = errors.New("decrypt grant tag invalid")
)

// DecryptGrant is the proof that a decrypt OTP was just consumed for an account. Tag is an
// HMAC over SigningInput under a key held only by the OTP engine and the envelope service, and
// Nonce is accepted once.
type DecryptGrant struct {
	AccountID uuid.UUID
	IssuedAt  time.Time
	Nonce     []byte
	Tag       []byte
}

// SigningInput returns the canonical bytes the grant tag covers.
func (g *DecryptGrant) SigningInput() []byte {
	return []byte(fmt.Sprintf("wallet-ledger/grant/v1|%s|%d|%s",
		g.AccountID, g.IssuedAt.UnixNano(), hex.EncodeToString(g.Nonce)))
}
