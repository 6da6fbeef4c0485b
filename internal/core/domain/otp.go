package domain

import (
	"time"

	"github.com/google/uuid"
)

// OtpPurpose scopes a challenge; a login code cannot be spent on a decryption and vice versa.
type OtpPurpose string

const (
	OtpPurposeLogin   OtpPurpose = "login"
	OtpPurposeDecrypt OtpPurpose = "decrypt"
)

func (p OtpPurpose) Valid() bool {
	return p == OtpPurposeLogin || p == OtpPurposeDecrypt
}

// OtpChallenge is the stored half of a one-time password. Only the keyed hash of the code is kept.
// A consumed challenge is deleted.
type OtpChallenge struct {
	AccountID uuid.UUID  `json:"account_id"`
	Purpose   OtpPurpose `json:"purpose"`
	CodeHash  string     `json:"-"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	Attempts  int        `json:"attempts"`
}

// IsExpired reports whether the challenge can no longer be verified at now.
func (c *OtpChallenge) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// OtpOutcome is the decision taken on a stored challenge during verification.
type OtpOutcome int

const (
	// OtpMissing means no live challenge existed.
	OtpMissing OtpOutcome = iota
	// OtpConsumed means the code matched; the challenge is deleted.
	OtpConsumed
	// OtpRejected means the code did not match; the attempt counter is incremented.
	OtpRejected
	// OtpInvalidated means the challenge expired or ran out of attempts; it is deleted.
	OtpInvalidated
	// OtpSuperseded means a concurrent issuance replaced the challenge mid-verification.
	OtpSuperseded
)

func (o OtpOutcome) String() string {
	switch o {
	case OtpMissing:
		return "missing"
	case OtpConsumed:
		return "consumed"
	case OtpRejected:
		return "rejected"
	case OtpInvalidated:
		return "invalidated"
	case OtpSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// OtpDelivery is what a notifier hands to the account holder.
type OtpDelivery struct {
	AccountID uuid.UUID  `json:"account_id"`
	Email     string     `json:"email"`
	Purpose   OtpPurpose `json:"purpose"`
	Code      string     `json:"code"`
	ExpiresAt time.Time  `json:"expires_at"`
}
