package invites_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/app"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store/drivers/postgres"
	"github.com/dougsimpsoncodes/myailandlord/pkg/invitesdk"
	"github.com/dougsimpsoncodes/myailandlord/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for invitation service end-to-end
 * tests. The service runs in-process against real Postgres and Redis
 * containers; a stub auth server publishes the JWKS it verifies against.
 */

const (
	authIssuer   = "auth-e2e"
	authAudience = "invites"
	authKID      = "e2e-key-001"
	appOrigin    = "https://app.example.com"

	ownerID    = "owner-olive"
	propertyID = "prop-4b"
	scopeWrite = "invites:write"
)

// backends holds the connection details of the shared infrastructure.
type backends struct {
	postgresDSN string
	redisAddr   string
	secretFile  string
	auth        *authServer
}

// setupBackends starts Postgres, Redis and the stub auth server, and seeds
// the property the tests invite tenants to.
func setupBackends(t *testing.T) *backends {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	b := &backends{
		postgresDSN: startPostgres(t),
		redisAddr:   startRedis(t),
		secretFile:  filepath.Join(t.TempDir(), "token_secret"),
		auth:        startAuthServer(t),
	}
	seedProperty(t, b.postgresDSN, domain.Property{
		ID:        propertyID,
		OwnerID:   ownerID,
		Name:      "Unit 4B",
		Address:   "12 Harbour St",
		OwnerName: "Olive",
		CreatedAt: time.Now().UTC(),
	})
	return b
}

// config returns a service configuration pointed at b.
func (b *backends) config() app.Config {
	cfg := app.LoadConfig()
	cfg.Env = "test"
	cfg.LogLevel = "warn"
	cfg.DatabaseDriver = "postgres"
	cfg.DatabaseURL = b.postgresDSN
	cfg.TokenSecretFile = b.secretFile
	cfg.JWKSURL = b.auth.jwksURL
	cfg.AuthIssuer = authIssuer
	cfg.AuthAudience = []string{authAudience}
	cfg.AllowedOrigins = []string{appOrigin}
	cfg.RateLimitBackend = "redis"
	cfg.RedisAddr = b.redisAddr
	return cfg
}

// startService runs the application in-process and returns its base URL and
// a stop function. Stopping twice is safe.
func startService(t *testing.T, cfg app.Config) (string, func()) {
	t.Helper()

	application, err := app.New(cfg)
	require.NoError(t, err)
	application.Start()

	srv := httptest.NewServer(application.Handler())

	stopped := false
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		srv.Close()
		if err := application.Shutdown(); err != nil {
			t.Logf("failed to shut down service: %v", err)
		}
	}
	t.Cleanup(stop)

	return srv.URL, stop
}

// startPostgres starts a throwaway Postgres container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "invites",
				"POSTGRES_PASSWORD": "invites",
				"POSTGRES_DB":       "invites",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://invites:invites@%s:%s/invites?sslmode=disable", host, port.Port())
}

// startRedis starts a throwaway Redis container and returns its address.
func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

// seedProperty writes a property the way the tenancy service would.
func seedProperty(t *testing.T, dsn string, p domain.Property) {
	t.Helper()
	ctx := context.Background()

	st, err := postgres.NewStore(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Properties().CreateProperty(ctx, p))
}

// authServer stands in for the external auth service: it publishes a JWKS
// and mints access tokens signed with the matching key.
type authServer struct {
	jwksURL string
	key     ed25519.PrivateKey
}

func startAuthServer(t *testing.T) *authServer {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddJWK(jwtx.NewEd25519JWK(authKID, pub)))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/jwks.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(keys.PublicJWKS())
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &authServer{jwksURL: srv.URL + "/.well-known/jwks.json", key: priv}
}

// mint returns an access token for subject carrying scopes.
func (a *authServer) mint(t *testing.T, subject string, scopes ...string) string {
	t.Helper()

	claims := jwtx.NewClaims(subject, scopes, time.Hour, authIssuer, []string{authAudience}, "", time.Now())
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	tok.Header["kid"] = authKID

	signed, err := tok.SignedString(a.key)
	require.NoError(t, err)
	return signed
}

// ownerClient authenticates as the property owner.
func ownerClient(t *testing.T, baseURL string, auth *authServer) *invitesdk.Client {
	return invitesdk.NewClient(baseURL).WithAccessToken(auth.mint(t, ownerID, scopeWrite))
}

// tenantClient authenticates as a prospective tenant.
func tenantClient(t *testing.T, baseURL string, auth *authServer, tenantID string) *invitesdk.Client {
	return invitesdk.NewClient(baseURL).WithAccessToken(auth.mint(t, tenantID))
}

// browserClient is an anonymous caller from the allowed web origin.
func browserClient(baseURL string) *invitesdk.Client {
	c := invitesdk.NewClient(baseURL)
	c.Origin = appOrigin
	return c
}

// requireAPIError asserts err is an APIError with status and code.
func requireAPIError(t *testing.T, err error, status int, code string) *invitesdk.APIError {
	t.Helper()

	require.Error(t, err)
	var apiErr *invitesdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *invitesdk.APIError, got %T: %v", err, err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}
