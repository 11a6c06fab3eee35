package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Operations counts issue/validate/accept/revoke calls by outcome. The
	// outcome is the error kind ("ok", "expired", "max_uses_reached", ...).
	Operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invites_operations_total",
		Help: "Total number of invite operations grouped by outcome",
	}, []string{"operation", "outcome"})
	OperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invites_operation_duration_seconds",
		Help:    "Latency of invite operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// Rate limiter metrics
	RateLimitDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invites_ratelimit_decisions_total",
		Help: "Rate limit checks grouped by decision (allowed/denied/error)",
	}, []string{"operation", "decision"})
	RateLimitFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invites_ratelimit_fallback_total",
		Help: "Checks answered by the in-memory limiter because the primary backend failed",
	}, []string{"operation"})

	// Housekeeping metrics
	CleanupDeleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invites_cleanup_deleted_total",
		Help: "Rows removed by housekeeping grouped by kind (tokens/buckets)",
	}, []string{"kind"})
	CleanupRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invites_cleanup_runs_total",
		Help: "Total number of housekeeping sweeps",
	})
)

func init() {
	prometheus.MustRegister(Operations)
	prometheus.MustRegister(OperationDuration)
	prometheus.MustRegister(RateLimitDecisions)
	prometheus.MustRegister(RateLimitFallbacks)
	prometheus.MustRegister(CleanupDeleted)
	prometheus.MustRegister(CleanupRuns)
}

// MetricsHandler exposes the default registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// ObserveOperation records one invite operation that started at start.
func ObserveOperation(operation, outcome string, start time.Time) {
	Operations.WithLabelValues(operation, outcome).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveCleanup records a housekeeping sweep.
func ObserveCleanup(res domain.CleanupResult) {
	CleanupRuns.Inc()
	CleanupDeleted.WithLabelValues("tokens").Add(float64(res.TokensDeleted))
	CleanupDeleted.WithLabelValues("buckets").Add(float64(res.BucketsDeleted))
}

// ObserveFallback counts a check served by the fallback limiter.
func ObserveFallback(operation string, _ error) {
	RateLimitFallbacks.WithLabelValues(operation).Inc()
}

// instrumentedLimiter counts decisions of the wrapped limiter.
type instrumentedLimiter struct {
	next ratelimit.Limiter
}

// InstrumentLimiter wraps l so every decision is counted.
func InstrumentLimiter(l ratelimit.Limiter) ratelimit.Limiter {
	return &instrumentedLimiter{next: l}
}

func (l *instrumentedLimiter) Allow(ctx context.Context, operation, caller string) (ratelimit.Decision, error) {
	d, err := l.next.Allow(ctx, operation, caller)
	switch {
	case err != nil:
		RateLimitDecisions.WithLabelValues(operation, "error").Inc()
	case d.Allowed:
		RateLimitDecisions.WithLabelValues(operation, "allowed").Inc()
	default:
		RateLimitDecisions.WithLabelValues(operation, "denied").Inc()
	}
	return d, err
}
