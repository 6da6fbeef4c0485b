package memory

import (
	"context"
	"sync"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
)

type otpKey struct {
	accountID uuid.UUID
	purpose   domain.OtpPurpose
}

// OtpStore implements ports.OtpStore. A single mutex makes Put and Resolve mutually exclusive.
type OtpStore struct {
	mu         sync.Mutex
	challenges map[otpKey]domain.OtpChallenge
}

// NewOtpStore creates an empty OtpStore.
func NewOtpStore() *OtpStore {
	return &OtpStore{challenges: make(map[otpKey]domain.OtpChallenge)}
}

func (s *OtpStore) Put(ctx context.Context, c *domain.OtpChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[otpKey{c.AccountID, c.Purpose}] = *c
	return nil
}

func (s *OtpStore) Resolve(ctx context.Context, accountID uuid.UUID, purpose domain.OtpPurpose,
	decide func(*domain.OtpChallenge) domain.OtpOutcome) (domain.OtpOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := otpKey{accountID, purpose}
	c, ok := s.challenges[key]
	if !ok {
		return domain.OtpMissing, nil
	}

	outcome := decide(&c)
	switch outcome {
	case domain.OtpConsumed, domain.OtpInvalidated:
		delete(s.challenges, key)
	case domain.OtpRejected:
		c.Attempts++
		s.challenges[key] = c
	}
	return outcome, nil
}
