package jwtx_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestJWKSFetcherRefresh(t *testing.T) {
	pub1, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	pub2, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	var rotated atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		set := jwtx.JWKS{Keys: []jwtx.JWK{jwtx.NewEd25519JWK("k1", pub1)}}
		if rotated.Load() {
			set = jwtx.JWKS{Keys: []jwtx.JWK{jwtx.NewEd25519JWK("k2", pub2)}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	defer srv.Close()

	keys := jwtx.NewKeySet()
	f := jwtx.NewJWKSFetcher(srv.URL, keys, srv.Client(), time.Minute)

	require.NoError(t, f.Refresh(context.Background()))
	_, err = keys.Get("k1")
	require.NoError(t, err)

	rotated.Store(true)
	require.NoError(t, f.Refresh(context.Background()))
	_, err = keys.Get("k1")
	require.ErrorIs(t, err, jwtx.ErrNoKey)
	_, err = keys.Get("k2")
	require.NoError(t, err)
}

func TestJWKSFetcherKeepsKeysOnFailure(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddJWK(jwtx.NewEd25519JWK("k1", pub)))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := jwtx.NewJWKSFetcher(srv.URL, keys, srv.Client(), time.Minute)
	require.Error(t, f.Refresh(context.Background()))
	require.True(t, keys.IsReady())
}

func TestJWKSFetcherStartStop(t *testing.T) {
	f := jwtx.NewJWKSFetcher("http://127.0.0.1:0/jwks", jwtx.NewKeySet(), nil, time.Hour)
	f.Start(context.Background())
	f.Stop()
}
