package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const otpDeliveryTimeout = 30 * time.Second

// OtpConfig tunes code issuance.
type OtpConfig struct {
	TTL         time.Duration
	Length      int
	MaxAttempts int
}

// OtpServiceImpl implements ports.OtpService. Codes are stored only as HMAC-SHA256 digests.
type OtpServiceImpl struct {
	store    ports.OtpStore
	notifier ports.Notifier
	macKey   []byte
	grants   *GrantSigner
	cfg      OtpConfig
	now      func() time.Time
	log      zerolog.Logger
}

// NewOtpService creates a new OtpServiceImpl.
func NewOtpService(
	store ports.OtpStore,
	notifier ports.Notifier,
	macKey []byte,
	grants *GrantSigner,
	cfg OtpConfig,
	log zerolog.Logger,
) *OtpServiceImpl {
	return &OtpServiceImpl{
		store:    store,
		notifier: notifier,
		macKey:   macKey,
		grants:   grants,
		cfg:      cfg,
		now:      time.Now,
		log:      log,
	}
}

// Issue creates a fresh code for (account, purpose), replacing any live one, and hands it to the
// notifier in the background.
func (s *OtpServiceImpl) Issue(ctx context.Context, account *domain.Account, purpose domain.OtpPurpose) error {
	if !purpose.Valid() {
		return apperror.InternalError(fmt.Errorf("issue otp: unknown purpose %q", purpose))
	}

	code, err := generateNumericCode(s.cfg.Length)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("generate otp: %w", err))
	}

	now := s.now().UTC()
	challenge := &domain.OtpChallenge{
		AccountID: account.ID,
		Purpose:   purpose,
		CodeHash:  s.hashCode(account.ID, purpose, code),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}

	if err := s.store.Put(ctx, challenge); err != nil {
		return apperror.InternalError(fmt.Errorf("store otp: %w", err))
	}

	go s.deliver(domain.OtpDelivery{
		AccountID: account.ID,
		Email:     account.Email,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: challenge.ExpiresAt,
	})

	s.log.Info().
		Str("account_id", account.ID.String()).
		Str("purpose", string(purpose)).
		Time("expires_at", challenge.ExpiresAt).
		Msg("otp issued")

	return nil
}

func (s *OtpServiceImpl) deliver(d domain.OtpDelivery) {
	ctx, cancel := context.WithTimeout(context.Background(), otpDeliveryTimeout)
	defer cancel()

	if err := s.notifier.Deliver(ctx, d); err != nil {
		s.log.Error().Err(err).
			Str("account_id", d.AccountID.String()).
			Str("purpose", string(d.Purpose)).
			Msg("otp delivery failed")
	}
}

// Verify consumes the challenge when code matches. Every other case returns false.
func (s *OtpServiceImpl) Verify(ctx context.Context, accountID uuid.UUID, purpose domain.OtpPurpose, code string) (bool, error) {
	submitted := s.hashCode(accountID, purpose, code)
	now := s.now()

	outcome, err := s.store.Resolve(ctx, accountID, purpose, func(c *domain.OtpChallenge) domain.OtpOutcome {
		if c.IsExpired(now) {
			return domain.OtpInvalidated
		}
		if hmac.Equal([]byte(c.CodeHash), []byte(submitted)) {
			return domain.OtpConsumed
		}
		if c.Attempts+1 >= s.cfg.MaxAttempts {
			return domain.OtpInvalidated
		}
		return domain.OtpRejected
	})
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("resolve otp: %w", err))
	}

	if outcome != domain.OtpConsumed {
		s.log.Warn().
			Str("account_id", accountID.String()).
			Str("purpose", string(purpose)).
			Str("outcome", outcome.String()).
			Msg("otp verification failed")
	}
	return outcome == domain.OtpConsumed, nil
}

// VerifyDecrypt consumes a decrypt challenge and returns a grant, or nil when verification fails.
func (s *OtpServiceImpl) VerifyDecrypt(ctx context.Context, accountID uuid.UUID, code string) (*domain.DecryptGrant, error) {
	ok, err := s.Verify(ctx, accountID, domain.OtpPurposeDecrypt, code)
	if err != nil || !ok {
		return nil, err
	}
	grant, err := s.grants.Mint(accountID, s.now())
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return grant, nil
}

func (s *OtpServiceImpl) hashCode(accountID uuid.UUID, purpose domain.OtpPurpose, code string) string {
	mac := hmac.New(sha256.New, s.macKey)
	mac.Write([]byte(accountID.String() + "|" + string(purpose) + "|" + code))
	return hex.EncodeToString(mac.Sum(nil))
}

func generateNumericCode(length int) (string, error) {
	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
