package repository

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/crypto/nacl/secretbox"
)

// Sealer encrypts Slack tokens before they reach the database and decrypts
// them on the way out.
type Sealer struct {
	key [32]byte
}

// NewSealer builds a Sealer from a base64-encoded 32-byte key. An empty key
// generates a random one, which only survives the process lifetime and is
// acceptable for local development only.
func NewSealer(encodedKey string) (*Sealer, error) {
	s := &Sealer{}

	if encodedKey == "" {
		slog.Warn("TOKEN_SEAL_KEY not set, generating ephemeral key; stored tokens will not survive a restart")
		if _, err := io.ReadFull(rand.Reader, s.key[:]); err != nil {
			return nil, fmt.Errorf("generate seal key: %w", err)
		}
		return s, nil
	}

	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode seal key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("seal key must be 32 bytes, got %d", len(key))
	}
	copy(s.key[:], key)
	return s, nil
}

// Seal encrypts plaintext and returns it base64-encoded with the nonce
// prepended.
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode sealed token: %w", err)
	}
	if len(raw) < 24 {
		return "", fmt.Errorf("sealed token too short")
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plaintext, ok := secretbox.Open(nil, raw[24:], &nonce, &s.key)
	if !ok {
		return "", fmt.Errorf("sealed token failed authentication")
	}
	return string(plaintext), nil
}
