package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_CanCover(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		amount  int64
		want    bool
	}{
		{"exact balance", 100, 100, true},
		{"below balance", 100, 40, true},
		{"above balance", 100, 101, false},
		{"zero amount", 100, 0, false},
		{"negative amount", 100, -5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{Balance: tt.balance}
			assert.Equal(t, tt.want, a.CanCover(tt.amount))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestOtpPurpose_Valid(t *testing.T) {
	assert.True(t, OtpPurposeLogin.Valid())
	assert.True(t, OtpPurposeDecrypt.Valid())
	assert.False(t, OtpPurpose("reset").Valid())
}

func TestOtpChallenge_IsExpired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := &OtpChallenge{IssuedAt: issued, ExpiresAt: issued.Add(5 * time.Minute)}

	assert.False(t, c.IsExpired(issued))
	assert.False(t, c.IsExpired(issued.Add(5*time.Minute-time.Nanosecond)))
	assert.True(t, c.IsExpired(issued.Add(5*time.Minute)))
}

func TestTransaction_IsParticipant(t *testing.T) {
	sender, receiver := uuid.New(), uuid.New()
	tx := &Transaction{SenderID: sender, ReceiverID: receiver}

	assert.True(t, tx.IsParticipant(sender))
	assert.True(t, tx.IsParticipant(receiver))
	assert.False(t, tx.IsParticipant(uuid.New()))
}

func TestSealContext_AADDistinguishesFields(t *testing.T) {
	tx := &Transaction{ID: 7, SenderID: uuid.New(), ReceiverID: uuid.New()}

	amount := tx.SealContext(SealFieldAmount)
	message := tx.SealContext(SealFieldMessage)

	assert.NotEqual(t, amount.AAD(), message.AAD())
	assert.True(t, amount.Includes(tx.SenderID))
	assert.False(t, amount.Includes(uuid.New()))
}

func TestDecryptGrant_SigningInputCoversEveryField(t *testing.T) {
	now := time.Now()
	base := DecryptGrant{AccountID: uuid.New(), IssuedAt: now, Nonce: []byte{1, 2, 3}}

	otherAccount := base
	otherAccount.AccountID = uuid.New()
	otherTime := base
	otherTime.IssuedAt = now.Add(time.Nanosecond)
	otherNonce := base
	otherNonce.Nonce = []byte{1, 2, 4}

	for _, g := range []DecryptGrant{otherAccount, otherTime, otherNonce} {
		assert.NotEqual(t, base.SigningInput(), g.SigningInput())
	}
	require.Equal(t, base.SigningInput(), (&DecryptGrant{AccountID: base.AccountID, IssuedAt: now, Nonce: []byte{1, 2, 3}, Tag: []byte("x")}).SigningInput())
}

func buildChain(txIDs ...int64) []ChainBlock {
	blocks := []ChainBlock{NewGenesisBlock()}
	for _, id := range txIDs {
		blocks = append(blocks, NextBlock(blocks[len(blocks)-1], id))
	}
	return blocks
}

func TestComputeBlockHash_Genesis(t *testing.T) {
	g := NewGenesisBlock()

	assert.Equal(t, int64(0), g.Index)
	assert.True(t, g.IsGenesis())
	assert.Equal(t, GenesisPrevHash, g.PrevHash)
	assert.Len(t, g.Hash, 64)
	assert.Equal(t, ComputeBlockHash(0, 0, GenesisPrevHash), g.Hash)
	// The genesis reference ignores the transaction id.
	assert.Equal(t, g.Hash, ComputeBlockHash(0, 99, GenesisPrevHash))
}

func TestNextBlock_Links(t *testing.T) {
	blocks := buildChain(1, 2)

	assert.Equal(t, int64(2), blocks[2].Index)
	assert.Equal(t, blocks[1].Hash, blocks[2].PrevHash)
	assert.Equal(t, int64(2), blocks[2].TransactionID)
	assert.NotEqual(t, blocks[1].Hash, blocks[2].Hash)
}

func TestVerifyChain(t *testing.T) {
	tests := []struct {
		name     string
		tamper   func([]ChainBlock) []ChainBlock
		valid    bool
		badIndex int64
	}{
		{"untouched", func(b []ChainBlock) []ChainBlock { return b }, true, -1},
		{"empty", func([]ChainBlock) []ChainBlock { return nil }, true, -1},
		{"hash changed", func(b []ChainBlock) []ChainBlock {
			b[2].Hash = b[3].Hash
			return b
		}, false, 2},
		{"prev hash changed", func(b []ChainBlock) []ChainBlock {
			b[3].PrevHash = GenesisPrevHash
			return b
		}, false, 3},
		{"transaction ref changed", func(b []ChainBlock) []ChainBlock {
			b[1].TransactionID = 42
			return b
		}, false, 1},
		{"block removed", func(b []ChainBlock) []ChainBlock {
			return append(b[:2], b[3:]...)
		}, false, 2},
		{"genesis rewritten", func(b []ChainBlock) []ChainBlock {
			b[0].TransactionID = 5
			b[0].Hash = ComputeBlockHash(0, 5, GenesisPrevHash)
			return b
		}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := tt.tamper(buildChain(1, 2, 3))
			report := VerifyChain(blocks)

			assert.Equal(t, tt.valid, report.Valid)
			assert.Equal(t, tt.badIndex, report.FirstBadIndex)
			assert.Equal(t, len(blocks), report.Length)
			if !tt.valid {
				assert.NotEmpty(t, report.Reason)
			}
		})
	}
}

func TestOtpOutcome_String(t *testing.T) {
	assert.Equal(t, "consumed", OtpConsumed.String())
	assert.Equal(t, "superseded", OtpSuperseded.String())
	assert.Equal(t, "unknown", OtpOutcome(99).String())
}
