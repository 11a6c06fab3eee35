package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store/storetest"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func TestPostgresStore(t *testing.T) {
	s := storetest.Postgres(t)
	ctx := context.Background()

	require.NoError(t, s.Properties().CreateProperty(ctx, domain.Property{
		ID: "prop-1", OwnerID: "owner-1", Name: "Unit 4B", Address: "12 Harbour St", CreatedAt: base,
	}))
	require.NoError(t, s.Tokens().CreateToken(ctx, domain.InviteToken{
		ID: "tok-1", Selector: "sel-1", TokenHash: "hash", Salt: "salt",
		PropertyID: "prop-1", IssuerID: "owner-1", MaxUses: 3,
		ExpiresAt: base.Add(time.Hour), CreatedAt: base, UpdatedAt: base,
	}))

	t.Run("duplicate selector", func(t *testing.T) {
		err := s.Tokens().CreateToken(ctx, domain.InviteToken{
			ID: "tok-x", Selector: "sel-1", TokenHash: "h", Salt: "s",
			PropertyID: "prop-1", IssuerID: "owner-1", MaxUses: 1,
			ExpiresAt: base, CreatedAt: base, UpdatedAt: base,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("concurrent increments never exceed max uses", func(t *testing.T) {
		var ok atomic.Int32
		var wg sync.WaitGroup
		for i := range 20 {
			wg.Go(func() {
				err := s.WithTx(ctx, func(tx store.Tx) error {
					created, err := tx.Redemptions().CreateRedemption(ctx, domain.Redemption{
						TokenID: "tok-1", PrincipalID: fmt.Sprintf("tenant-%d", i), PropertyID: "prop-1", CreatedAt: base,
					})
					if err != nil || !created {
						return err
					}
					_, err = tx.Tokens().IncrementUseCount(ctx, "tok-1", base)
					return err
				})
				if err == nil {
					ok.Add(1)
				}
			})
		}
		wg.Wait()

		require.EqualValues(t, 3, ok.Load())
		tok, err := s.Tokens().GetTokenByID(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, 3, tok.UseCount)
		n, err := s.Redemptions().CountRedemptions(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, 3, n)
	})

	t.Run("rate limit bucket", func(t *testing.T) {
		for range 2 {
			b, err := s.RateLimits().TakeToken(ctx, "issue:owner-1", 2, 0.5, base)
			require.NoError(t, err)
			require.True(t, b.Allowed)
		}
		b, err := s.RateLimits().TakeToken(ctx, "issue:owner-1", 2, 0.5, base)
		require.NoError(t, err)
		require.False(t, b.Allowed)

		b, err = s.RateLimits().TakeToken(ctx, "issue:owner-1", 2, 0.5, base.Add(2*time.Second))
		require.NoError(t, err)
		require.True(t, b.Allowed)

		n, err := s.RateLimits().DeleteBucketsIdleSince(ctx, base.Add(time.Hour))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})

	t.Run("revoke and cleanup", func(t *testing.T) {
		require.NoError(t, s.Tokens().RevokeToken(ctx, "tok-1", base))
		require.NoError(t, s.Tokens().RevokeToken(ctx, "tok-1", base.Add(time.Minute)))
		tok, err := s.Tokens().GetTokenByID(ctx, "tok-1")
		require.NoError(t, err)
		require.True(t, tok.RevokedAt.Equal(base))

		n, err := s.Tokens().DeleteTokensExpiredBefore(ctx, base.Add(2*time.Hour))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		_, err = s.Tokens().GetTokenByID(ctx, "tok-1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
