package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/pkg/cryptox"
)

// Token layout: a 96-bit public selector and a 256-bit secret.
const (
	SelectorSize = cryptox.TokenSize96
	SecretSize   = cryptox.TokenSize256
)

// HashPurpose binds the HKDF-derived hashing key to invite tokens.
const HashPurpose = "invite-token-v1"

// TokenCodec creates plaintext invite tokens and resolves them back to their
// stored rows. Only the selector, salt and keyed hash are ever persisted.
type TokenCodec struct {
	hasher *cryptox.KeyedHasher

	// Used on the not-found path so it costs one hash, like a mismatch.
	dummySalt string
	dummyHash string
}

// NewTokenCodec wraps hasher.
func NewTokenCodec(hasher *cryptox.KeyedHasher) (*TokenCodec, error) {
	if hasher == nil {
		return nil, errors.New("service: nil token hasher")
	}
	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return nil, err
	}
	filler, err := cryptox.GenerateToken(SecretSize)
	if err != nil {
		return nil, err
	}
	return &TokenCodec{
		hasher:    hasher,
		dummySalt: salt,
		dummyHash: hasher.Hash(salt, filler),
	}, nil
}

// Sealed is a freshly generated token together with what gets stored.
type Sealed struct {
	Plaintext string
	Selector  string
	Salt      string
	Hash      string
}

// Generate draws a new token and seals its secret under a fresh salt.
func (c *TokenCodec) Generate() (Sealed, error) {
	tok, err := cryptox.GenerateSplitToken(SelectorSize, SecretSize)
	if err != nil {
		return Sealed{}, fmt.Errorf("generate token: %w", err)
	}
	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return Sealed{}, fmt.Errorf("generate salt: %w", err)
	}
	return Sealed{
		Plaintext: tok.String(),
		Selector:  tok.Selector,
		Salt:      salt,
		Hash:      c.hasher.Hash(salt, tok.Secret),
	}, nil
}

// Resolve parses raw, loads the token by its selector and verifies the secret
// in constant time. Malformed, unknown and mismatching tokens all return
// ErrInvalid; storage failures return ErrTransientStorage.
func (c *TokenCodec) Resolve(ctx context.Context, tokens store.Tokens, raw string) (domain.InviteToken, error) {
	parsed, err := cryptox.ParseSplitToken(raw, SelectorSize, SecretSize)
	if err != nil {
		return domain.InviteToken{}, ErrInvalid
	}

	tok, err := tokens.GetTokenBySelector(ctx, parsed.Selector)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.hasher.Verify(c.dummySalt, parsed.Secret, c.dummyHash)
			return domain.InviteToken{}, ErrInvalid
		}
		return domain.InviteToken{}, transient(err)
	}

	if !c.hasher.Verify(tok.Salt, parsed.Secret, tok.TokenHash) {
		return domain.InviteToken{}, ErrInvalid
	}
	return tok, nil
}
