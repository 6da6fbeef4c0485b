// Package export writes off-site copies of the transaction chain.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"wallet-ledger/internal/core/domain"
)

// Snapshot is a self-describing copy of the chain.
type Snapshot struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Length      int                    `json:"length"`
	HeadHash    string                 `json:"head_hash"`
	Integrity   domain.IntegrityReport `json:"integrity"`
	Blocks      []domain.ChainBlock    `json:"blocks"`
}

// NewSnapshot verifies blocks and wraps them in a Snapshot.
func NewSnapshot(blocks []domain.ChainBlock, now time.Time) *Snapshot {
	s := &Snapshot{
		GeneratedAt: now.UTC(),
		Length:      len(blocks),
		Integrity:   domain.VerifyChain(blocks),
		Blocks:      blocks,
	}
	if len(blocks) > 0 {
		s.HeadHash = blocks[len(blocks)-1].Hash
	}
	return s
}

// Encode renders the snapshot as indented JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// DefaultKey names a snapshot object by its generation time.
func (s *Snapshot) DefaultKey() string {
	return fmt.Sprintf("chain-%s.json", s.GeneratedAt.Format("20060102T150405Z"))
}

// WriteFile writes the snapshot to path.
func WriteFile(path string, s *Snapshot) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
