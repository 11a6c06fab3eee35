package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize96 provides 96 bits of entropy (16 chars base64url).
	TokenSize96 = 12
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// ErrMalformedToken is returned by ParseSplitToken for anything that is not
// a well-formed selector.secret pair.
var ErrMalformedToken = errors.New("cryptox: malformed token")

const splitTokenSep = "."

// GenerateToken creates a cryptographically secure random token of the specified byte length.
// The token is returned as a base64url-encoded string (URL-safe, no padding).
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustGenerateToken is like GenerateToken but panics on error.
func MustGenerateToken(size int) string {
	token, err := GenerateToken(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate token: %v", err))
	}
	return token
}

// SplitToken is a bearer credential made of a public lookup handle and a
// secret. Only the selector is ever used as a database key; the secret is
// verified through a keyed hash.
type SplitToken struct {
	Selector string
	Secret   string
}

// String renders the plaintext form handed to the invitee.
func (t SplitToken) String() string {
	return t.Selector + splitTokenSep + t.Secret
}

// GenerateSplitToken draws a fresh selector and secret of the given sizes.
func GenerateSplitToken(selectorSize, secretSize int) (SplitToken, error) {
	selector, err := GenerateToken(selectorSize)
	if err != nil {
		return SplitToken{}, err
	}
	secret, err := GenerateToken(secretSize)
	if err != nil {
		return SplitToken{}, err
	}
	return SplitToken{Selector: selector, Secret: secret}, nil
}

// ParseSplitToken splits a plaintext token and checks that both halves are
// base64url of the expected decoded sizes.
func ParseSplitToken(raw string, selectorSize, secretSize int) (SplitToken, error) {
	selector, secret, ok := strings.Cut(strings.TrimSpace(raw), splitTokenSep)
	if !ok {
		return SplitToken{}, ErrMalformedToken
	}
	if !decodesTo(selector, selectorSize) || !decodesTo(secret, secretSize) {
		return SplitToken{}, ErrMalformedToken
	}
	return SplitToken{Selector: selector, Secret: secret}, nil
}

func decodesTo(s string, size int) bool {
	if len(s) != base64.RawURLEncoding.EncodedLen(size) {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}
