package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/service"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store/storetest"
	"github.com/dougsimpsoncodes/myailandlord/pkg/cryptox"
	"github.com/dougsimpsoncodes/myailandlord/pkg/idx"
	"github.com/dougsimpsoncodes/myailandlord/pkg/invitesdk"
	"github.com/dougsimpsoncodes/myailandlord/pkg/jwtx"
	"github.com/dougsimpsoncodes/myailandlord/pkg/ratelimit"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testOrigin   = "https://app.example.com"
	testOwner    = "owner-olive"
	testProperty = "prop-4b"
	testIssuer   = "auth"
	testAudience = "invites"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	router *Router
	store  store.Store
	clock  *testClock
	key    ed25519.PrivateKey
}

type envOption func(*testEnv, *ratelimit.Limiter)

func withLimiter(l ratelimit.Limiter) envOption {
	return func(_ *testEnv, dst *ratelimit.Limiter) { *dst = l }
}

func newEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	st := storetest.SQLite(t)
	require.NoError(t, st.Properties().CreateProperty(context.Background(), domain.Property{
		ID: testProperty, OwnerID: testOwner, Name: "Unit 4B", Address: "12 Harbour St", OwnerName: "Olive",
		CreatedAt: time.Now().UTC(),
	}))

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddJWK(jwtx.NewEd25519JWK("k1", pub)))
	verifier := jwtx.NewVerifier(keys, jwtx.VerifyOptions{Issuer: testIssuer, Audience: []string{testAudience}})

	hasher, err := cryptox.NewKeyedHasher(bytes.Repeat([]byte{1}, 32), service.HashPurpose)
	require.NoError(t, err)
	codec, err := service.NewTokenCodec(hasher)
	require.NoError(t, err)

	env := &testEnv{store: st, clock: &testClock{t: time.Now().UTC()}, key: priv}

	var limiter ratelimit.Limiter = &service.RateLimitService{
		Store:    st,
		Policies: service.DefaultPolicies(),
		Now:      env.clock.Now,
	}
	for _, opt := range opts {
		opt(env, &limiter)
	}

	r := NewRouter(keys, verifier, limiter, "test", st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.AllowedOrigins = []string{testOrigin}
	r.RequestTimeout = 5 * time.Second
	r.IssueService = &service.IssueService{Store: st, Codec: codec, Policy: service.DefaultIssuePolicy(), Now: env.clock.Now}
	r.ValidateService = &service.ValidateService{Store: st, Codec: codec, Grace: service.DefaultAcceptGrace, Now: env.clock.Now}
	r.AcceptService = &service.AcceptService{Store: st, Codec: codec, Grace: service.DefaultAcceptGrace, Now: env.clock.Now}
	r.RevokeService = &service.RevokeService{Store: st, Now: env.clock.Now}
	r.ApplyRoutes()

	env.router = r
	return env
}

func (e *testEnv) bearer(t *testing.T, sub string, scopes ...string) string {
	t.Helper()
	claims := jwtx.NewClaims(sub, scopes, time.Hour, testIssuer, []string{testAudience}, "", time.Now())
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	tok.Header["kid"] = "k1"
	s, err := tok.SignedString(e.key)
	require.NoError(t, err)
	return "Bearer " + s
}

func (e *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = "203.0.113.7:5555"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) issue(t *testing.T, maxUses, ttlDays int) invitesdk.IssueInviteResponse {
	t.Helper()
	body, _ := json.Marshal(invitesdk.IssueInviteRequest{PropertyID: testProperty, MaxUses: maxUses, TTLDays: ttlDays})
	rec := e.do(http.MethodPost, "/v1/invites", string(body), map[string]string{
		"Authorization": e.bearer(t, testOwner, ScopeInvitesWrite),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out invitesdk.IssueInviteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (e *testEnv) validate(token string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(invitesdk.TokenRequest{Token: token})
	return e.do(http.MethodPost, "/v1/invites/validate", string(body), map[string]string{"Origin": testOrigin})
}

func (e *testEnv) accept(t *testing.T, token, principal string) (*httptest.ResponseRecorder, invitesdk.AcceptInviteResponse) {
	t.Helper()
	body, _ := json.Marshal(invitesdk.TokenRequest{Token: token})
	rec := e.do(http.MethodPost, "/v1/invites/accept", string(body), map[string]string{
		"Authorization": e.bearer(t, principal),
	})
	var out invitesdk.AcceptInviteResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestWorkedExampleOverHTTP(t *testing.T) {
	e := newEnv(t)

	inv := e.issue(t, 1, 7)
	require.Equal(t, testProperty, inv.PropertyID)
	require.Equal(t, 1, inv.MaxUses)
	require.NotEmpty(t, inv.Token)

	rec := e.validate(inv.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var preview invitesdk.ValidateInviteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	require.True(t, preview.Valid)
	require.Equal(t, &invitesdk.PropertyPreview{Name: "Unit 4B", Address: "12 Harbour St", IssuerName: "Olive"}, preview.PropertyPreview)

	rec, out := e.accept(t, inv.Token, "tenant-a")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, invitesdk.AcceptInviteResponse{Success: true, PropertyID: testProperty}, out)

	rec, out = e.accept(t, inv.Token, "tenant-b")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, invitesdk.AcceptInviteResponse{Success: false, Error: "max_uses_reached"}, out)

	rec, out = e.accept(t, inv.Token, "tenant-a")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, invitesdk.AcceptInviteResponse{Success: true, PropertyID: testProperty}, out)

	tok, err := e.store.Tokens().GetTokenByID(context.Background(), inv.TokenID)
	require.NoError(t, err)
	require.Equal(t, 1, tok.UseCount)
}

func TestValidateFailuresAreByteIdentical(t *testing.T) {
	e := newEnv(t)

	expired := e.issue(t, 1, 1)
	revoked := e.issue(t, 1, 7)
	exhausted := e.issue(t, 1, 7)

	rec := e.do(http.MethodPost, "/v1/invites/"+revoked.TokenID+"/revoke", "", map[string]string{
		"Authorization": e.bearer(t, testOwner, ScopeInvitesWrite),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = e.accept(t, exhausted.Token, "tenant-a")
	require.Equal(t, http.StatusOK, rec.Code)

	unknown, err := cryptox.GenerateSplitToken(service.SelectorSize, service.SecretSize)
	require.NoError(t, err)

	e.clock.Advance(24*time.Hour + service.DefaultAcceptGrace + time.Second)

	responses := map[string]*httptest.ResponseRecorder{
		"nonexistent": e.validate(unknown.String()),
		"malformed":   e.validate("definitely-not-a-token"),
		"expired":     e.validate(expired.Token),
		"revoked":     e.validate(revoked.Token),
		"exhausted":   e.validate(exhausted.Token),
		"bad json": e.do(http.MethodPost, "/v1/invites/validate", "{", map[string]string{
			"Origin": testOrigin,
		}),
	}
	for name, rec := range responses {
		require.Equal(t, http.StatusNotFound, rec.Code, name)
		require.Equal(t, invalidInviteBody, rec.Body.Bytes(), name)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"), name)
	}
	require.Equal(t, `{"valid":false,"error":"invalid"}`, string(invalidInviteBody))
}

func TestAcceptErrorMapping(t *testing.T) {
	e := newEnv(t)

	rec, out := e.accept(t, "garbage", "tenant-a")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "invalid", out.Error)

	inv := e.issue(t, 5, 1)
	rec, out = e.accept(t, inv.Token, testOwner)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "owner_conflict", out.Error)

	e.clock.Advance(24*time.Hour + service.DefaultAcceptGrace + time.Second)
	rec, out = e.accept(t, inv.Token, "tenant-a")
	require.Equal(t, http.StatusGone, rec.Code)
	require.Equal(t, "expired", out.Error)

	rec = e.do(http.MethodPost, "/v1/invites/accept", `{"token":1}`, map[string]string{
		"Authorization": e.bearer(t, "tenant-a"),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevokeOverHTTP(t *testing.T) {
	e := newEnv(t)
	inv := e.issue(t, 3, 7)
	path := "/v1/invites/" + inv.TokenID + "/revoke"

	rec := e.do(http.MethodPost, path, "", map[string]string{
		"Authorization": e.bearer(t, "mallory", ScopeInvitesWrite),
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), `"permission_denied"`)

	for _, id := range []string{"01UNKNOWN", idx.New().String()} {
		rec = e.do(http.MethodPost, "/v1/invites/"+id+"/revoke", "", map[string]string{
			"Authorization": e.bearer(t, testOwner, ScopeInvitesWrite),
		})
		require.Equal(t, http.StatusForbidden, rec.Code, id)
		require.Contains(t, rec.Body.String(), `"permission_denied"`, id)
	}

	for range 2 {
		rec = e.do(http.MethodPost, path, "", map[string]string{
			"Authorization": e.bearer(t, testOwner, ScopeInvitesWrite),
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"success":true}`, rec.Body.String())
	}

	rec, out := e.accept(t, inv.Token, "tenant-a")
	require.Equal(t, http.StatusGone, rec.Code)
	require.Equal(t, "revoked", out.Error)
}

func TestIssueRequiresScopeAndOwnership(t *testing.T) {
	e := newEnv(t)
	body := `{"property_id":"prop-4b","max_uses":1,"ttl_days":7}`

	rec := e.do(http.MethodPost, "/v1/invites", body, map[string]string{"Origin": testOrigin})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec = e.do(http.MethodPost, "/v1/invites", body, map[string]string{"Authorization": e.bearer(t, testOwner)})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "insufficient_scope")

	rec = e.do(http.MethodPost, "/v1/invites", body, map[string]string{
		"Authorization": e.bearer(t, "mallory", ScopeInvitesWrite),
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "permission_denied")

	rec = e.do(http.MethodPost, "/v1/invites", `{"property_id":"prop-4b","max_uses":-1}`, map[string]string{
		"Authorization": e.bearer(t, testOwner, ScopeInvitesWrite),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/v1/invites", `{"property_id":"prop-4b","extra":true}`, map[string]string{
		"Authorization": e.bearer(t, testOwner, ScopeInvitesWrite),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuardRunsFirst(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/v1/invites/validate", `{"token":"x"}`, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "origin_required")
	require.Empty(t, rec.Header().Get("X-RateLimit-Limit"), "guard must run before the limiter")

	rec = e.do(http.MethodPost, "/v1/invites/validate", `{"token":"x"}`, map[string]string{"Origin": "https://evil.example"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "origin_not_allowed")

	// A bearer without Origin is a trusted non-browser client.
	rec = e.do(http.MethodPost, "/v1/invites/validate", `{"token":"x"}`, map[string]string{
		"Authorization": e.bearer(t, "tenant-a"),
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodOptions, "/v1/invites/accept", "", map[string]string{"Origin": testOrigin})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestValidateIsRateLimitedPerIP(t *testing.T) {
	clk := &testClock{t: time.Now()}
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Policies{
		service.OpValidate: ratelimit.PerMinute(2, 2),
	}, time.Hour)
	limiter.Now = clk.Now
	e := newEnv(t, withLimiter(limiter))

	for range 2 {
		rec := e.validate("x")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := e.validate("x")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "30", rec.Header().Get("Retry-After"))
	require.JSONEq(t, `{"error":"rate_limited","retry_after":30}`, rec.Body.String())
}

func TestPersistentLimiterGatesAccept(t *testing.T) {
	e := newEnv(t)
	limiter := &service.RateLimitService{
		Store:    e.store,
		Policies: ratelimit.Policies{service.OpAccept: ratelimit.PerMinute(1, 1)},
		Now:      e.clock.Now,
	}
	e.router.limiter = limiter
	e.router.Mux = http.NewServeMux()
	e.router.ApplyRoutes()

	rec, _ := e.accept(t, "garbage", "tenant-a")
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = e.accept(t, "garbage", "tenant-a")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Buckets are per principal.
	rec, _ = e.accept(t, "garbage", "tenant-b")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("bucket store unavailable")
}

func TestLimiterFailureIsUnavailable(t *testing.T) {
	e := newEnv(t, withLimiter(failingLimiter{}))

	rec := e.validate("x")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
	require.Contains(t, rec.Body.String(), "temporarily_unavailable")
}

func TestStorageFailureIsUnavailable(t *testing.T) {
	e := newEnv(t, withLimiter(ratelimit.NewMemoryLimiter(service.DefaultPolicies(), time.Hour)))
	inv := e.issue(t, 1, 7)
	require.NoError(t, e.store.Close())

	rec := e.validate(inv.Token)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = e.accept(t, inv.Token, "tenant-a")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = e.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health invitesdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, &invitesdk.HealthChecks{Database: "ok", JWKS: "ok"}, health.Checks)

	rec = e.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "invites_")
}
