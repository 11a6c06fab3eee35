package jwtx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/pkg/slogx"
)

// JWKSFetcher loads the auth service's published keys into a KeySet and
// keeps them fresh so key rotation needs no restart.
type JWKSFetcher struct {
	url      string
	keys     *KeySet
	client   *http.Client
	interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewJWKSFetcher creates a fetcher for url. A zero interval defaults to
// five minutes.
func NewJWKSFetcher(url string, keys *KeySet, client *http.Client, interval time.Duration) *JWKSFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &JWKSFetcher{
		url:      url,
		keys:     keys,
		client:   client,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Refresh fetches the JWKS once and replaces the KeySet contents.
func (f *JWKSFetcher) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return fmt.Errorf("jwtx: build jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("jwtx: fetch jwks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwtx: fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&jwks); err != nil {
		return fmt.Errorf("jwtx: decode jwks: %w", err)
	}
	if len(jwks.Keys) == 0 {
		return fmt.Errorf("jwtx: jwks from %s has no keys", f.url)
	}

	return f.keys.ResetFromJWKS(jwks)
}

// Start launches the background refresh loop. Refresh failures keep the
// previous keys and are logged.
func (f *JWKSFetcher) Start(ctx context.Context) {
	log := slogx.FromContext(ctx)
	go func() {
		defer close(f.doneCh)

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := f.Refresh(ctx); err != nil {
					log.Warn("jwks refresh failed", slog.String("url", f.url), slog.Any("error", err))
					continue
				}
				log.Debug("jwks refreshed", slog.Int("keys", f.keys.Len()))
			case <-f.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the refresh loop and waits for it to exit.
func (f *JWKSFetcher) Stop() {
	close(f.stopCh)
	<-f.doneCh
}
