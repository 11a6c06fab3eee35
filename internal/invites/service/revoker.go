package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/pkg/slogx"
)

type RevokeService struct {
	Store store.Store
	Now   func() time.Time
}

// Revoke permanently disables tokenID if issuerID owns its property.
// Revoking an already revoked token succeeds and keeps the first timestamp.
// Unknown tokens and foreign properties both return ErrPermissionDenied.
func (s *RevokeService) Revoke(ctx context.Context, tokenID string, issuerID string) error {
	log := slogx.FromContext(ctx)

	if tokenID == "" || issuerID == "" {
		return ErrPermissionDenied
	}

	now := clock(s.Now)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		tok, err := tx.Tokens().GetTokenByID(ctx, tokenID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPermissionDenied
			}
			return transient(err)
		}

		prop, err := tx.Properties().GetProperty(ctx, tok.PropertyID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPermissionDenied
			}
			return transient(err)
		}
		if prop.OwnerID != issuerID {
			return ErrPermissionDenied
		}

		if err := tx.Tokens().RevokeToken(ctx, tok.ID, now); err != nil {
			return transient(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			log.Warn("invite revoke denied",
				slog.String("token_id", tokenID),
				slog.String("principal_id", issuerID),
			)
			return err
		}
		log.Error("invite revoke failed",
			slog.String("token_id", tokenID),
			slog.Any("error", err),
		)
		return transient(err)
	}

	log.Info("invite revoked",
		slog.String("token_id", tokenID),
		slog.String("principal_id", issuerID),
	)
	return nil
}
