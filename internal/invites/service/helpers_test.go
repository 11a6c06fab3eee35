package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store/storetest"
	"github.com/dougsimpsoncodes/myailandlord/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

const (
	ownerID    = "owner-olive"
	propertyID = "prop-4b"
)

// fakeClock is a settable clock shared by every service in a fixture.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	store    store.Store
	clock    *fakeClock
	codec    *TokenCodec
	issuer   *IssueService
	validate *ValidateService
	accept   *AcceptService
	revoke   *RevokeService
}

func newCodec(t testing.TB) *TokenCodec {
	t.Helper()
	hasher, err := cryptox.NewKeyedHasher(bytes.Repeat([]byte{0x42}, 32), HashPurpose)
	require.NoError(t, err)
	codec, err := NewTokenCodec(hasher)
	require.NoError(t, err)
	return codec
}

func newFixtureWith(t testing.TB, s store.Store) *fixture {
	t.Helper()
	clk := &fakeClock{t: base}
	codec := newCodec(t)

	seedProperty(t, s, propertyID, ownerID)

	return &fixture{
		store:    s,
		clock:    clk,
		codec:    codec,
		issuer:   &IssueService{Store: s, Codec: codec, Policy: DefaultIssuePolicy(), Now: clk.Now},
		validate: &ValidateService{Store: s, Codec: codec, Grace: DefaultAcceptGrace, Now: clk.Now},
		accept:   &AcceptService{Store: s, Codec: codec, Grace: DefaultAcceptGrace, Now: clk.Now},
		revoke:   &RevokeService{Store: s, Now: clk.Now},
	}
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	return newFixtureWith(t, storetest.SQLite(t))
}

func seedProperty(t testing.TB, s store.Store, id, owner string) {
	t.Helper()
	require.NoError(t, s.Properties().CreateProperty(context.Background(), domain.Property{
		ID:        id,
		OwnerID:   owner,
		Name:      "Unit 4B",
		Address:   "12 Harbour St",
		OwnerName: "Olive",
		CreatedAt: base,
	}))
}

func (f *fixture) mustIssue(t testing.TB, maxUses, ttlDays int) domain.IssuedInvite {
	t.Helper()
	inv, err := f.issuer.Issue(context.Background(), propertyID, ownerID, maxUses, ttlDays)
	require.NoError(t, err)
	return inv
}

func (f *fixture) useCount(t testing.TB, tokenID string) int {
	t.Helper()
	tok, err := f.store.Tokens().GetTokenByID(context.Background(), tokenID)
	require.NoError(t, err)
	return tok.UseCount
}
