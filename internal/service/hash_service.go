package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2SaltLen = 16

// Argon2Params is the Argon2id cost used for new hashes. Existing hashes are
// verified with the parameters encoded in them, so raising the cost never
// locks out stored credentials.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	KeyLen      uint32
}

// DefaultArgon2Params returns 64 MiB, one pass, four lanes and a 32-byte key.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{MemoryKiB: 64 * 1024, Iterations: 1, Parallelism: 4, KeyLen: 32}
}

func (p Argon2Params) validate() error {
	switch {
	case p.MemoryKiB < 8*uint32(p.Parallelism):
		return errors.New("argon2 memory must be at least 8 KiB per lane")
	case p.Iterations == 0:
		return errors.New("argon2 iterations must be positive")
	case p.Parallelism == 0:
		return errors.New("argon2 parallelism must be positive")
	case p.KeyLen < 16:
		return errors.New("argon2 key length must be at least 16 bytes")
	}
	return nil
}

// Argon2HashService implements ports.HashService for passwords and PINs.
type Argon2HashService struct {
	params Argon2Params
}

// NewArgon2HashService creates a hash service producing PHC strings with params.
func NewArgon2HashService(params Argon2Params) (*Argon2HashService, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Argon2HashService{params: params}, nil
}

// Hash returns $argon2id$v=19$m=<kib>,t=<iter>,p=<lanes>$<salt>$<key>.
func (s *Argon2HashService) Hash(secret string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	p := s.params
	key := argon2.IDKey([]byte(secret), salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKiB, p.Iterations, p.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify reports whether secret matches encoded. A malformed encoding is an error, a mismatch is not.
func (s *Argon2HashService) Verify(secret, encoded string) (bool, error) {
	h, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}
	key := argon2.IDKey([]byte(secret), h.salt, h.params.Iterations, h.params.MemoryKiB, h.params.Parallelism, h.params.KeyLen)
	return subtle.ConstantTimeCompare(h.key, key) == 1, nil
}

type phcHash struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

func parsePHC(encoded string) (*phcHash, error) {
	fields := strings.Split(strings.TrimPrefix(encoded, "$"), "$")
	if len(fields) != 5 {
		return nil, fmt.Errorf("invalid hash format: expected 5 fields, got %d", len(fields))
	}
	if fields[0] != "argon2id" {
		return nil, fmt.Errorf("unsupported algorithm: %s", fields[0])
	}

	var version int
	if _, err := fmt.Sscanf(fields[1], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("parsing version: %w", err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("incompatible argon2 version: %d", version)
	}

	h := &phcHash{}
	if _, err := fmt.Sscanf(fields[2], "m=%d,t=%d,p=%d", &h.params.MemoryKiB, &h.params.Iterations, &h.params.Parallelism); err != nil {
		return nil, fmt.Errorf("parsing params: %w", err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[3]); err != nil {
		return nil, fmt.Errorf("decoding salt: %w", err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return nil, fmt.Errorf("decoding key: %w", err)
	}
	h.params.KeyLen = uint32(len(h.key))
	if err := h.params.validate(); err != nil {
		return nil, err
	}
	return h, nil
}
