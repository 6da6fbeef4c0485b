package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

const envelopeVersion = "v1"

var errMalformedEnvelope = errors.New("malformed envelope")

// AESEnvelopeService implements ports.EnvelopeService using AES-256-GCM with the seal context as
// additional authenticated data. Envelopes are "v1.<hex(nonce||ciphertext||tag)>".
type AESEnvelopeService struct {
	aead   cipher.AEAD
	grants *GrantSigner
	now    func() time.Time
	log    zerolog.Logger
}

// NewAESEnvelopeService creates an envelope service from a 32-byte key. Open redeems grants
// through grants.
func NewAESEnvelopeService(key []byte, grants *GrantSigner, log zerolog.Logger) (*AESEnvelopeService, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("envelope key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}

	return &AESEnvelopeService{
		aead:   aead,
		grants: grants,
		now:    time.Now,
		log:    log,
	}, nil
}

// Seal encrypts plaintext under a fresh nonce, binding sc as additional data.
func (s *AESEnvelopeService) Seal(plaintext string, sc domain.SealContext) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), sc.AAD())
	return envelopeVersion + "." + hex.EncodeToString(sealed), nil
}

// Open redeems grant and decrypts every field. The grant must be genuine, unspent and belong to a
// participant of every field's transaction.
func (s *AESEnvelopeService) Open(grant *domain.DecryptGrant, fields ...domain.SealedField) ([]string, error) {
	if grant == nil {
		return nil, apperror.ErrUnauthorized()
	}
	for _, f := range fields {
		if !f.Context.Includes(grant.AccountID) {
			return nil, apperror.ErrUnauthorized()
		}
	}
	if err := s.grants.Redeem(grant, s.now()); err != nil {
		s.log.Warn().Err(err).Str("account_id", grant.AccountID.String()).Msg("decrypt grant refused")
		return nil, apperror.ErrUnauthorized()
	}

	plaintexts := make([]string, 0, len(fields))
	for _, f := range fields {
		pt, err := s.open(f)
		if err != nil {
			s.log.Error().Err(err).
				Int64("tx_id", f.Context.TransactionID).
				Str("field", string(f.Context.Field)).
				Msg("envelope failed authentication")
			return nil, apperror.ErrCorrupt(err)
		}
		plaintexts = append(plaintexts, pt)
	}
	return plaintexts, nil
}

func (s *AESEnvelopeService) open(f domain.SealedField) (string, error) {
	version, body, ok := strings.Cut(f.Envelope, ".")
	if !ok || version != envelopeVersion {
		return "", errMalformedEnvelope
	}

	raw, err := hex.DecodeString(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errMalformedEnvelope, err)
	}

	nonceSize := s.aead.NonceSize()
	if len(raw) < nonceSize+s.aead.Overhead() {
		return "", fmt.Errorf("%w: too short", errMalformedEnvelope)
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, f.Context.AAD())
	if err != nil {
		return "", fmt.Errorf("decrypting: %w", err)
	}
	return string(plaintext), nil
}
