package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	d   ratelimit.Decision
	err error
}

func (s stubLimiter) Allow(context.Context, string, string) (ratelimit.Decision, error) {
	return s.d, s.err
}

func TestInstrumentLimiterCountsDecisions(t *testing.T) {
	RateLimitDecisions.Reset()
	defer RateLimitDecisions.Reset()
	ctx := context.Background()

	_, _ = InstrumentLimiter(stubLimiter{d: ratelimit.Decision{Allowed: true}}).Allow(ctx, "validate", "ip")
	_, _ = InstrumentLimiter(stubLimiter{d: ratelimit.Decision{Allowed: false}}).Allow(ctx, "validate", "ip")
	_, err := InstrumentLimiter(stubLimiter{err: errors.New("down")}).Allow(ctx, "validate", "ip")
	require.Error(t, err)

	for _, decision := range []string{"allowed", "denied", "error"} {
		require.Equal(t, 1.0, testutil.ToFloat64(RateLimitDecisions.WithLabelValues("validate", decision)), decision)
	}
}

func TestObserveCleanupAndOperation(t *testing.T) {
	CleanupDeleted.Reset()
	defer CleanupDeleted.Reset()

	ObserveCleanup(domain.CleanupResult{TokensDeleted: 3, BucketsDeleted: 7})
	require.Equal(t, 3.0, testutil.ToFloat64(CleanupDeleted.WithLabelValues("tokens")))
	require.Equal(t, 7.0, testutil.ToFloat64(CleanupDeleted.WithLabelValues("buckets")))

	before := testutil.ToFloat64(Operations.WithLabelValues("accept", "ok"))
	ObserveOperation("accept", "ok", time.Now())
	require.Equal(t, before+1, testutil.ToFloat64(Operations.WithLabelValues("accept", "ok")))
}

func TestMetricsHandlerExposesCounters(t *testing.T) {
	ObserveFallback("accept", errors.New("redis down"))

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "invites_ratelimit_fallback_total"))
}
