package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	fieldCodeHash  = "code_hash"
	fieldIssuedAt  = "issued_at"
	fieldExpiresAt = "expires_at"
	fieldAttempts  = "attempts"
)

// OtpStore implements ports.OtpStore. Each challenge is a hash at otp:<purpose>:<account> that
// Redis expires on its own at ExpiresAt.
//
// Put replaces the hash in one MULTI block. Resolve reads under WATCH and applies its outcome in a
// MULTI block, so a Put racing with a Resolve aborts the Resolve, which then reports
// domain.OtpSuperseded.
type OtpStore struct {
	client goredis.UniversalClient
	prefix string
}

// NewOtpStore creates a new Redis-backed OTP store.
func NewOtpStore(client goredis.UniversalClient) *OtpStore {
	return &OtpStore{
		client: client,
		prefix: "otp:",
	}
}

func (s *OtpStore) key(accountID uuid.UUID, purpose domain.OtpPurpose) string {
	return s.prefix + string(purpose) + ":" + accountID.String()
}

// Put stores the challenge, replacing any live one for the same account and purpose.
func (s *OtpStore) Put(ctx context.Context, c *domain.OtpChallenge) error {
	key := s.key(c.AccountID, c.Purpose)

	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			fieldCodeHash, c.CodeHash,
			fieldIssuedAt, c.IssuedAt.UnixMilli(),
			fieldExpiresAt, c.ExpiresAt.UnixMilli(),
			fieldAttempts, c.Attempts,
		)
		p.PExpireAt(ctx, key, c.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis otp put: %w", err)
	}
	return nil
}

// Resolve hands the live challenge to decide and applies the outcome.
func (s *OtpStore) Resolve(ctx context.Context, accountID uuid.UUID, purpose domain.OtpPurpose,
	decide func(*domain.OtpChallenge) domain.OtpOutcome) (domain.OtpOutcome, error) {
	key := s.key(accountID, purpose)
	outcome := domain.OtpMissing

	err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
		fields, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			outcome = domain.OtpMissing
			return nil
		}

		c, err := decodeChallenge(accountID, purpose, fields)
		if err != nil {
			return err
		}

		outcome = decide(c)
		switch outcome {
		case domain.OtpConsumed, domain.OtpInvalidated:
			_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
				p.Del(ctx, key)
				return nil
			})
		case domain.OtpRejected:
			_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
				p.HIncrBy(ctx, key, fieldAttempts, 1)
				return nil
			})
		}
		return err
	}, key)

	if errors.Is(err, goredis.TxFailedErr) {
		return domain.OtpSuperseded, nil
	}
	if err != nil {
		return domain.OtpMissing, fmt.Errorf("redis otp resolve: %w", err)
	}
	return outcome, nil
}

func decodeChallenge(accountID uuid.UUID, purpose domain.OtpPurpose, fields map[string]string) (*domain.OtpChallenge, error) {
	issued, err := strconv.ParseInt(fields[fieldIssuedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldIssuedAt, err)
	}
	expires, err := strconv.ParseInt(fields[fieldExpiresAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldExpiresAt, err)
	}
	attempts, err := strconv.Atoi(fields[fieldAttempts])
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fieldAttempts, err)
	}

	return &domain.OtpChallenge{
		AccountID: accountID,
		Purpose:   purpose,
		CodeHash:  fields[fieldCodeHash],
		IssuedAt:  time.UnixMilli(issued).UTC(),
		ExpiresAt: time.UnixMilli(expires).UTC(),
		Attempts:  attempts,
	}, nil
}
