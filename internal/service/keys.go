package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	envelopeKeyInfo = "wallet-ledger/envelope/v1"
	otpMACKeyInfo   = "wallet-ledger/otp-mac/v1"
	grantKeyInfo    = "wallet-ledger/decrypt-grant/v1"
)

// Keys holds the subkeys derived from the configured master key.
type Keys struct {
	Envelope []byte // AES-256 key for transaction envelopes
	OtpMAC   []byte // HMAC-SHA256 key for stored OTP hashes
	Grant    []byte // HMAC-SHA256 key for decrypt grants
}

// DeriveKeys expands a 64-character hex master key into independent subkeys with HKDF-SHA256.
func DeriveKeys(masterKeyHex string) (*Keys, error) {
	master, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decoding master key: %w", err)
	}
	if len(master) != 32 {
		return nil, fmt.Errorf("master key must be 32 bytes, got %d", len(master))
	}

	envelope, err := expandKey(master, envelopeKeyInfo)
	if err != nil {
		return nil, err
	}
	otpMAC, err := expandKey(master, otpMACKeyInfo)
	if err != nil {
		return nil, err
	}

	grant, err := expandKey(master, grantKeyInfo)
	if err != nil {
		return nil, err
	}

	return &Keys{Envelope: envelope, OtpMAC: otpMAC, Grant: grant}, nil
}

func expandKey(master []byte, info string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("deriving %s: %w", info, err)
	}
	return key, nil
}
