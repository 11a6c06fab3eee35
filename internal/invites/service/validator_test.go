package service

import (
	"context"
	"testing"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestValidateCollapsesEveryFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	expired := f.mustIssue(t, 1, 1)
	revoked := f.mustIssue(t, 1, 7)
	exhausted := f.mustIssue(t, 1, 7)
	live := f.mustIssue(t, 1, 7)

	require.NoError(t, f.revoke.Revoke(ctx, revoked.TokenID, ownerID))
	_, err := f.accept.Accept(ctx, exhausted.Token, "tenant-a")
	require.NoError(t, err)

	unknown, err := cryptox.GenerateSplitToken(SelectorSize, SecretSize)
	require.NoError(t, err)

	f.clock.Advance(24*time.Hour + DefaultAcceptGrace + time.Second)

	cases := map[string]struct {
		raw    string
		reason error
	}{
		"malformed": {"%%%", ErrInvalid},
		"unknown":   {unknown.String(), ErrInvalid},
		"expired":   {expired.Token, ErrExpired},
		"revoked":   {revoked.Token, ErrRevoked},
		"exhausted": {exhausted.Token, ErrCapacityExhausted},
	}
	for name, tc := range cases {
		_, _, err := f.validate.Inspect(ctx, tc.raw)
		require.ErrorIs(t, err, tc.reason, name)

		_, err = f.validate.Validate(ctx, tc.raw)
		require.ErrorIs(t, err, ErrNotFoundOrInvalid, name)
		require.Equal(t, ErrNotFoundOrInvalid.Error(), err.Error(), name)
	}

	preview, err := f.validate.Validate(ctx, live.Token)
	require.NoError(t, err)
	require.Equal(t, propertyID, preview.PropertyID)
}

func TestValidateHasNoSideEffects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	inv := f.mustIssue(t, 1, 7)

	for range 5 {
		_, err := f.validate.Validate(ctx, inv.Token)
		require.NoError(t, err)
	}
	require.Equal(t, 0, f.useCount(t, inv.TokenID))

	n, err := f.store.Redemptions().CountRedemptions(ctx, inv.TokenID)
	require.NoError(t, err)
	require.Zero(t, n)
}
