package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/domain"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
)

// Housekeeping defaults.
const (
	DefaultHousekeepingInterval = time.Hour
	DefaultTokenRetention       = 30 * 24 * time.Hour
	DefaultBucketIdleTTL        = 24 * time.Hour
)

// HousekeepingService periodically removes invite tokens past their
// retention window and rate limit buckets that have gone idle.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	IdleTTL   time.Duration
	Now       func() time.Time

	// OnCleanup, if set, observes every sweep.
	OnCleanup func(domain.CleanupResult)

	// Internal channels for lifecycle management
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewHousekeepingService creates a housekeeping service. Zero or negative
// durations fall back to the defaults.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, retention, idleTTL time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	if retention <= 0 {
		retention = DefaultTokenRetention
	}
	if idleTTL <= 0 {
		idleTTL = DefaultBucketIdleTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		IdleTTL:   idleTTL,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. It is non-blocking; call Stop to shut
// it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		slog.Duration("interval", s.Interval),
		slog.Duration("token_retention", s.Retention),
		slog.Duration("bucket_idle_ttl", s.IdleTTL),
	)
}

// Stop shuts the worker down and waits for an in-progress sweep to finish.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), max(s.Interval/2, time.Second))
	defer cancel()

	res, _ := s.Cleanup(ctx)
	if s.OnCleanup != nil {
		s.OnCleanup(res)
	}
}

// Cleanup deletes tokens whose expiry is older than the retention window and
// buckets idle longer than IdleTTL. Tokens that are expired but still inside
// the retention window are kept. Each deletion is independent: a failure in
// one does not stop the other, and the first error is returned alongside
// whatever was deleted.
func (s *HousekeepingService) Cleanup(ctx context.Context) (domain.CleanupResult, error) {
	now := clock(s.Now)
	var res domain.CleanupResult
	var firstErr error

	n, err := s.Store.Tokens().DeleteTokensExpiredBefore(ctx, now.Add(-s.Retention))
	if err != nil {
		s.Logger.Error("failed to delete expired invite tokens", slog.Any("error", err))
		firstErr = transient(err)
	} else {
		res.TokensDeleted = n
	}

	n, err = s.Store.RateLimits().DeleteBucketsIdleSince(ctx, now.Add(-s.IdleTTL))
	if err != nil {
		s.Logger.Error("failed to delete idle rate limit buckets", slog.Any("error", err))
		if firstErr == nil {
			firstErr = transient(err)
		}
	} else {
		res.BucketsDeleted = n
	}

	s.Logger.Info("housekeeping cleanup completed",
		slog.Int64("tokens_deleted", res.TokensDeleted),
		slog.Int64("buckets_deleted", res.BucketsDeleted),
	)
	return res, firstErr
}
