package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// DefaultGrantTTL bounds how long after OTP consumption a decrypt grant can be redeemed.
const DefaultGrantTTL = 30 * time.Second

const grantNonceLen = 16

// GrantSigner mints decrypt grants for the OTP engine and redeems them for the envelope service.
type GrantSigner struct {
	key []byte
	ttl time.Duration

	mu    sync.Mutex
	spent map[string]time.Time // nonce -> time after which the entry can be dropped
}

// NewGrantSigner creates a signer keyed with a 32-byte grant key.
func NewGrantSigner(key []byte, ttl time.Duration) *GrantSigner {
	return &GrantSigner{key: key, ttl: ttl, spent: make(map[string]time.Time)}
}

// Mint returns a tagged grant for accountID issued at now.
func (g *GrantSigner) Mint(accountID uuid.UUID, now time.Time) (*domain.DecryptGrant, error) {
	nonce := make([]byte, grantNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating grant nonce: %w", err)
	}
	grant := &domain.DecryptGrant{AccountID: accountID, IssuedAt: now, Nonce: nonce}
	grant.Tag = g.tag(grant)
	return grant, nil
}

// Redeem checks the grant tag and age, then marks its nonce spent. A grant redeems at most once.
func (g *GrantSigner) Redeem(grant *domain.DecryptGrant, now time.Time) error {
	if len(grant.Nonce) != grantNonceLen || !hmac.Equal(grant.Tag, g.tag(grant)) {
		return domain.ErrGrantInvalid
	}
	if now.Sub(grant.IssuedAt) > g.ttl || grant.IssuedAt.After(now.Add(time.Second)) {
		return domain.ErrGrantExpired
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for n, until := range g.spent {
		if now.After(until) {
			delete(g.spent, n)
		}
	}

	nonce := hex.EncodeToString(grant.Nonce)
	if _, used := g.spent[nonce]; used {
		return domain.ErrGrantSpent
	}
	g.spent[nonce] = grant.IssuedAt.Add(g.ttl)
	return nil
}

func (g *GrantSigner) tag(grant *domain.DecryptGrant) []byte {
	mac := hmac.New(sha256.New, g.key)
	mac.Write(grant.SigningInput())
	return mac.Sum(nil)
}
