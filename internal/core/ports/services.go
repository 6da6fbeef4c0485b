package ports

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// EnvelopeService seals transaction fields and opens them against a decrypt grant.
type EnvelopeService interface {
	Seal(plaintext string, sc domain.SealContext) (string, error)
	// Open spends grant once for all fields passed in the call.
	Open(grant *domain.DecryptGrant, fields ...domain.SealedField) ([]string, error)
}

// WebhookSigner authenticates outbound webhook deliveries. The receiving gateway recomputes the
// signature from the timestamp header and the raw body.
type WebhookSigner interface {
	Sign(secret string, timestamp int64, body []byte) string
}

// HashService handles password and PIN hashing (Argon2id).
type HashService interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Email     string
}

// OtpStore holds at most one challenge per (account, purpose).
type OtpStore interface {
	// Put replaces any live challenge for the same account and purpose.
	Put(ctx context.Context, challenge *domain.OtpChallenge) error
	// Resolve hands the live challenge to decide and applies the outcome atomically with respect to
	// Put. decide is not called when no challenge exists.
	Resolve(ctx context.Context, accountID uuid.UUID, purpose domain.OtpPurpose,
		decide func(*domain.OtpChallenge) domain.OtpOutcome) (domain.OtpOutcome, error)
}

// Notifier delivers an OTP to the account holder out of band.
type Notifier interface {
	Deliver(ctx context.Context, delivery domain.OtpDelivery) error
}

// RateLimitStore counts requests in fixed windows.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

// --- Service Ports (Business Logic) ---

// OtpService issues and verifies one-time passwords.
type OtpService interface {
	Issue(ctx context.Context, account *domain.Account, purpose domain.OtpPurpose) error
	Verify(ctx context.Context, accountID uuid.UUID, purpose domain.OtpPurpose, code string) (bool, error)
	// VerifyDecrypt consumes a decrypt challenge and returns a single-use grant, or nil on failure.
	VerifyDecrypt(ctx context.Context, accountID uuid.UUID, code string) (*domain.DecryptGrant, error)
}

// AuthService defines identity and login business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (uuid.UUID, error)
	Authenticate(ctx context.Context, email, password string) (uuid.UUID, error)
	// Login authenticates and sends a login OTP.
	Login(ctx context.Context, email, password string) error
	VerifyLoginOTP(ctx context.Context, email, code string) (string, time.Time, error) // token, expiry, error
	VerifyPin(ctx context.Context, accountID uuid.UUID, pin string) (bool, error)
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Email    string
	Password string
	Pin      string
}

// PinVerifier checks a transaction PIN.
type PinVerifier interface {
	VerifyPin(ctx context.Context, accountID uuid.UUID, pin string) (bool, error)
}

// LedgerService defines balance and transfer business logic.
type LedgerService interface {
	GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error)
	Transfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error)
}

// TransferRequest holds input for a peer-to-peer transfer.
type TransferRequest struct {
	SenderID      uuid.UUID
	ReceiverEmail string
	Amount        int64
	Pin           string
	Message       string
}

// HistoryService defines the history view and the OTP-gated decryption flow.
type HistoryService interface {
	History(ctx context.Context, accountID uuid.UUID) (*History, error)
	RequestDecryptOTP(ctx context.Context, accountID uuid.UUID) error
	Decrypt(ctx context.Context, accountID uuid.UUID, transactionID int64, code string) (*DecryptedTransfer, error)
}

// History holds both sides of an account's transfers, newest first.
type History struct {
	Sent     []domain.TransferRecord
	Received []domain.TransferRecord
}

// DecryptedTransfer holds the opened fields of one transaction.
type DecryptedTransfer struct {
	TransactionID int64
	Amount        int64
	Message       string
}

// ChainService exposes the hash chain.
type ChainService interface {
	ListChain(ctx context.Context, fromIndex int64, limit int) ([]domain.ChainBlock, error)
	VerifyIntegrity(ctx context.Context) (*domain.IntegrityReport, error)
}

// AuditService records audit entries without blocking the caller.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
