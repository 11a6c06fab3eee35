package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/pkg/idx"
	"github.com/dougsimpsoncodes/myailandlord/pkg/slogx"
)

// AcceptService redeems invites. Every redemption runs in one transaction
// whose only write to the token row is a conditional increment, so M
// concurrent accepts on a token with N uses yield exactly N successes.
type AcceptService struct {
	Store store.Store
	Codec *TokenCodec
	Grace time.Duration
	Now   func() time.Time
}

// Accept redeems raw for principalID and links the principal to the
// property. A principal that already redeemed the token gets the same
// success again without consuming another use.
//
// Errors: ErrValidation, ErrInvalid, ErrExpired, ErrRevoked,
// ErrCapacityExhausted, ErrOwnerConflict or ErrTransientStorage. Transient
// errors are never retried here.
func (s *AcceptService) Accept(ctx context.Context, raw string, principalID string) (domain.Acceptance, error) {
	log := slogx.FromContext(ctx)

	if principalID == "" {
		return domain.Acceptance{}, ErrValidation
	}

	now := clock(s.Now)
	var out domain.Acceptance

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Resolve and verify inside the transaction.
		tok, err := s.Codec.Resolve(ctx, tx.Tokens(), raw)
		if err != nil {
			return err
		}
		out.TokenID = tok.ID
		out.PropertyID = tok.PropertyID

		// 2. Revocation wins over everything, including retries.
		if tok.IsRevoked() {
			return ErrRevoked
		}

		// 3. A principal that already redeemed gets the same success, even
		// once the token has expired or run out of uses.
		if _, err := tx.Redemptions().GetRedemption(ctx, tok.ID, principalID); err == nil {
			out.AlreadyRedeemed = true
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return transient(err)
		}

		// 4. Expiry (with grace).
		if tok.IsExpired(now, s.Grace) {
			return ErrExpired
		}

		// 5. Owners cannot become tenants of their own property.
		prop, err := tx.Properties().GetProperty(ctx, tok.PropertyID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalid
			}
			return transient(err)
		}
		if prop.OwnerID == principalID {
			return ErrOwnerConflict
		}

		// 6. Claim the (token, principal) pair. An existing claim means a
		// concurrent retry committed first.
		created, err := tx.Redemptions().CreateRedemption(ctx, domain.Redemption{
			TokenID:     tok.ID,
			PrincipalID: principalID,
			PropertyID:  tok.PropertyID,
			CreatedAt:   now,
		})
		if err != nil {
			return transient(err)
		}
		if !created {
			out.AlreadyRedeemed = true
			return nil
		}

		// 7. Consume one use. No row means exhausted or revoked since the
		// read above; returning an error rolls back the redemption.
		if _, err := tx.Tokens().IncrementUseCount(ctx, tok.ID, now); err != nil {
			if !errors.Is(err, store.ErrConditionFailed) {
				return transient(err)
			}
			current, rerr := tx.Tokens().GetTokenByID(ctx, tok.ID)
			if rerr == nil && current.IsRevoked() {
				return ErrRevoked
			}
			return ErrCapacityExhausted
		}

		// 8. Link the tenant in the same transaction.
		tokenID := tok.ID
		if err := tx.Links().ActivateLink(ctx, domain.TenantLink{
			ID:            idx.NewAt(now).String(),
			PropertyID:    tok.PropertyID,
			TenantID:      principalID,
			InviteTokenID: &tokenID,
			Status:        domain.LinkStatusActive,
			CreatedAt:     now,
			UpdatedAt:     now,
		}); err != nil {
			return transient(err)
		}
		return nil
	})
	if err != nil {
		attrs := []any{
			slog.String("token_id", out.TokenID),
			slog.String("property_id", out.PropertyID),
			slog.String("principal_id", principalID),
			slog.String("reason", Kind(err)),
		}
		switch {
		case isTokenError(err):
			log.Info("invite accept rejected", attrs...)
			return domain.Acceptance{}, err
		default:
			log.Error("invite accept failed", append(attrs, slog.Any("error", err))...)
			return domain.Acceptance{}, transient(err)
		}
	}

	log.Info("invite accepted",
		slog.String("token_id", out.TokenID),
		slog.String("property_id", out.PropertyID),
		slog.String("principal_id", principalID),
		slog.Bool("already_redeemed", out.AlreadyRedeemed),
	)
	return out, nil
}
