package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/todopilot/pilot/internal/pilot/store"
)

// HousekeepingService periodically prunes accounts that signed up but never
// verified their email within Retention.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to one hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		slog.Duration("interval", s.Interval),
		slog.Duration("retention", s.Retention),
	)
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.Logger.Error("housekeeping cleanup failed", slog.Any("error", err))
	}
}

// RunOnce deletes unverified accounts older than Retention and reports how
// many were removed. A non-positive Retention disables pruning.
func (s *HousekeepingService) RunOnce(ctx context.Context) (int64, error) {
	if s.Retention <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-s.Retention)
	n, err := s.Store.Users().DeleteUnverifiedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.Logger.Info("housekeeping cleanup completed",
		slog.Int64("unverified_users_deleted", n),
		slog.Time("cutoff", cutoff),
	)
	return n, nil
}
