package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateEmail is returned by account stores when the e-mail is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// Account is a wallet holder. Balance is in whole coins and is only mutated by the ledger.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose
	PinHash      string    `json:"-"` // Never expose
	Balance      int64     `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanCover reports whether the balance covers a debit of amount.
func (a *Account) CanCover(amount int64) bool {
	return amount > 0 && a.Balance >= amount
}

// NormalizeEmail returns the canonical (trimmed, lower-cased) form used for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
