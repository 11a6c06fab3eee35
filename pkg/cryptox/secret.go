package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const secretLength = 32

// LoadOrGenerateSecret loads the base64url master secret stored at path,
// creating the file with a fresh random secret on first start. Every instance
// sharing a database must share this file, otherwise issued tokens will not
// verify on other instances.
func LoadOrGenerateSecret(path string) ([]byte, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		secret := make([]byte, secretLength)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		encoded := base64.RawURLEncoding.EncodeToString(secret)
		if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
			return nil, err
		}
		return secret, nil
	}
	if err != nil {
		return nil, err
	}

	secret, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, err
	}
	if len(secret) < secretLength {
		return nil, ErrShortSecret
	}
	return secret, nil
}
