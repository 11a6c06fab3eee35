package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SaltSize is the number of random bytes in a per-token salt.
const SaltSize = 16

// ErrShortSecret is returned when the master secret is too small to derive
// a hashing key from.
var ErrShortSecret = errors.New("cryptox: secret must be at least 32 bytes")

// KeyedHasher computes HMAC-SHA-256 fingerprints of high-entropy tokens. The
// tokens carry enough entropy that a fast MAC is sufficient, so verification
// stays cheap under load.
type KeyedHasher struct {
	key []byte
}

// NewKeyedHasher derives a purpose-bound HMAC key from secret using HKDF so
// the same master secret can back several independent hashers.
func NewKeyedHasher(secret []byte, purpose string) (*KeyedHasher, error) {
	if len(secret) < 32 {
		return nil, ErrShortSecret
	}

	key := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, secret, nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}

	return &KeyedHasher{key: key}, nil
}

// Hash returns base64url(HMAC(key, salt || secret)).
func (h *KeyedHasher) Hash(salt, secret string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(salt))
	mac.Write([]byte{0})
	mac.Write([]byte(secret))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the hash and compares it in constant time.
func (h *KeyedHasher) Verify(salt, secret, expected string) bool {
	got := h.Hash(salt, secret)
	return hmac.Equal([]byte(got), []byte(expected))
}

// GenerateSalt returns a fresh random salt, base64url encoded.
func GenerateSalt() (string, error) {
	return GenerateToken(SaltSize)
}
