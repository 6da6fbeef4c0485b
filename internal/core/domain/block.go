package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GenesisPrevHash is the predecessor hash of block 0.
var GenesisPrevHash = strings.Repeat("0", 64)

const genesisRef = "genesis"

// ChainBlock links one settled transaction into the hash chain. CreatedAt is informational and
// not covered by Hash.
type ChainBlock struct {
	Index         int64     `json:"index"`
	TransactionID int64     `json:"transaction_id"` // 0 for genesis
	PrevHash      string    `json:"prev_hash"`
	Hash          string    `json:"hash"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsGenesis reports whether the block is the chain root.
func (b ChainBlock) IsGenesis() bool {
	return b.Index == 0
}

// Ref returns the transaction reference the block hash commits to: the decimal transaction id,
// or "genesis" for block 0.
func (b ChainBlock) Ref() string {
	if b.IsGenesis() {
		return genesisRef
	}
	return strconv.FormatInt(b.TransactionID, 10)
}

// ComputeBlockHash returns hex(SHA-256("<index>|<txRef>|<prevHash>")).
// txRef is the decimal transaction id, or "genesis" for index 0.
func ComputeBlockHash(index, transactionID int64, prevHash string) string {
	ref := genesisRef
	if index != 0 {
		ref = strconv.FormatInt(transactionID, 10)
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s", index, ref, prevHash)))
	return hex.EncodeToString(sum[:])
}

// NewGenesisBlock builds block 0.
func NewGenesisBlock() ChainBlock {
	return ChainBlock{
		Index:    0,
		PrevHash: GenesisPrevHash,
		Hash:     ComputeBlockHash(0, 0, GenesisPrevHash),
	}
}

// NextBlock builds the block that links transactionID after prev.
func NextBlock(prev ChainBlock, transactionID int64) ChainBlock {
	index := prev.Index + 1
	return ChainBlock{
		Index:         index,
		TransactionID: transactionID,
		PrevHash:      prev.Hash,
		Hash:          ComputeBlockHash(index, transactionID, prev.Hash),
	}
}

// IntegrityReport is the result of walking the chain.
type IntegrityReport struct {
	Valid         bool   `json:"valid"`
	Length        int    `json:"length"`
	FirstBadIndex int64  `json:"first_bad_index"` // -1 when valid
	Reason        string `json:"reason,omitempty"`
}

// VerifyChain recomputes every hash and link of blocks, which must be ordered by index.
// An empty chain is valid.
func VerifyChain(blocks []ChainBlock) IntegrityReport {
	report := IntegrityReport{Valid: true, Length: len(blocks), FirstBadIndex: -1}

	fail := func(index int64, reason string) IntegrityReport {
		report.Valid = false
		report.FirstBadIndex = index
		report.Reason = reason
		return report
	}

	for i, b := range blocks {
		if b.Index != int64(i) {
			return fail(int64(i), fmt.Sprintf("expected index %d, found %d", i, b.Index))
		}

		wantPrev := GenesisPrevHash
		if i > 0 {
			wantPrev = blocks[i-1].Hash
		}
		if b.PrevHash != wantPrev {
			return fail(b.Index, "prev_hash does not match predecessor")
		}
		if i == 0 && b.TransactionID != 0 {
			return fail(b.Index, "genesis block references a transaction")
		}
		if i > 0 && b.TransactionID <= 0 {
			return fail(b.Index, "block references no transaction")
		}
		if b.Hash != ComputeBlockHash(b.Index, b.TransactionID, b.PrevHash) {
			return fail(b.Index, "hash mismatch")
		}
	}
	return report
}
