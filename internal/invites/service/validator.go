package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/pkg/slogx"
)

// DefaultAcceptGrace tolerates clock skew between issuer and acceptor.
const DefaultAcceptGrace = 5 * time.Minute

// ValidateService answers the public preview check. It never writes.
type ValidateService struct {
	Store store.Store
	Codec *TokenCodec
	Grace time.Duration
	Now   func() time.Time
}

// Inspect resolves raw and reports the specific reason it is unusable:
// ErrInvalid, ErrRevoked, ErrExpired or ErrCapacityExhausted. Storage
// failures return ErrTransientStorage.
func (s *ValidateService) Inspect(ctx context.Context, raw string) (domain.InviteToken, domain.Property, error) {
	tok, err := s.Codec.Resolve(ctx, s.Store.Tokens(), raw)
	if err != nil {
		return domain.InviteToken{}, domain.Property{}, err
	}
	if err := checkUsable(tok, clock(s.Now), s.Grace); err != nil {
		return tok, domain.Property{}, err
	}
	if tok.IsExhausted() {
		return tok, domain.Property{}, ErrCapacityExhausted
	}

	prop, err := s.Store.Properties().GetProperty(ctx, tok.PropertyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return tok, domain.Property{}, ErrInvalid
		}
		return tok, domain.Property{}, transient(err)
	}
	return tok, prop, nil
}

// Validate returns the property preview for a usable token. Every token
// related failure collapses to ErrNotFoundOrInvalid.
func (s *ValidateService) Validate(ctx context.Context, raw string) (domain.Preview, error) {
	log := slogx.FromContext(ctx)

	tok, prop, err := s.Inspect(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrTransientStorage) {
			log.Error("invite validate failed", slog.Any("error", err))
			return domain.Preview{}, err
		}
		// The specific reason is only logged, never returned.
		log.Debug("invite validate rejected",
			slog.String("token_id", tok.ID),
			slog.String("reason", Kind(err)),
		)
		return domain.Preview{}, ErrNotFoundOrInvalid
	}

	return domain.Preview{
		PropertyID: prop.ID,
		Name:       prop.Name,
		Address:    prop.Address,
		IssuerName: prop.OwnerName,
	}, nil
}

// checkUsable applies the revocation and expiry rules for validate. Accept
// checks them itself around the redemption lookup.
func checkUsable(tok domain.InviteToken, now time.Time, grace time.Duration) error {
	if tok.IsRevoked() {
		return ErrRevoked
	}
	if tok.IsExpired(now, grace) {
		return ErrExpired
	}
	return nil
}
