package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dougsimpsoncodes/myailandlord/pkg/jwtx"
)

// InitVerifier loads the auth service's signing keys and returns a verifier
// backed by them together with the fetcher that keeps them current.
//
// The first fetch is attempted synchronously. A failure is logged rather
// than returned: the service starts, /readyz reports the JWKS as not loaded,
// and the background refresh keeps retrying.
func InitVerifier(ctx context.Context, cfg Config, logger *slog.Logger) (*jwtx.KeySet, *jwtx.KeySetVerifier, *jwtx.JWKSFetcher, error) {
	if cfg.JWKSURL == "" {
		return nil, nil, nil, fmt.Errorf("AUTH_JWKS_URL is required")
	}

	keys := jwtx.NewKeySet()
	verifier := jwtx.NewVerifier(keys, jwtx.VerifyOptions{
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
	})
	fetcher := jwtx.NewJWKSFetcher(cfg.JWKSURL, keys, nil, cfg.JWKSRefresh)

	logger.Info("loading bearer verification keys",
		"jwks_url", cfg.JWKSURL,
		"issuer", cfg.AuthIssuer,
		"audience", cfg.AuthAudience,
	)

	if err := fetcher.Refresh(ctx); err != nil {
		logger.Warn("initial jwks fetch failed, will retry", "error", err)
	} else {
		logger.Info("bearer verification keys loaded", "num_keys", keys.Len())
	}

	return keys, verifier, fetcher, nil
}
