// Package scheduler runs the periodic market statistics refresh. Computed
// aggregates are pushed into the Redis cache so the market endpoints serve
// warm data between refreshes.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"starboard/internal/common/logging"
	"starboard/internal/redis"
	"starboard/internal/storage"
)

const (
	refreshLockKey = "market_refresh"
	refreshLockTTL = time.Minute
	cacheTTL       = 5 * time.Minute
)

// timeframes mirrors the windows served by the market updates endpoint; the
// cache keys must line up with the ones the handler reads.
var timeframes = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

type Scheduler struct {
	cron    *cron.Cron
	storage storage.Storage
	cache   *redis.Client
	logger  logging.Logger
}

func New(store storage.Storage, cache *redis.Client, logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &Scheduler{
		cron:    cron.New(),
		storage: store,
		cache:   cache,
		logger:  logger,
	}
}

// Start schedules the market refresh using a cron expression. Without a
// Redis cache there is nowhere to publish refreshed stats, so Start becomes
// a no-op.
func (s *Scheduler) Start(schedule string) error {
	if s.cache == nil {
		s.logger.Info("Market refresh scheduler disabled, no Redis configured")
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, s.refresh); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Market refresh scheduler started",
		logging.Field{Key: "schedule", Value: schedule},
	)
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RefreshNow performs one refresh cycle immediately, outside the schedule.
func (s *Scheduler) RefreshNow() {
	s.refresh()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Only one instance refreshes at a time.
	acquired, err := s.cache.AcquireLock(ctx, refreshLockKey, refreshLockTTL)
	if err != nil {
		s.logger.Warn("Failed to acquire market refresh lock",
			logging.Field{Key: "error", Value: err.Error()},
		)
		return
	}
	if !acquired {
		s.logger.Debug("Market refresh already running elsewhere, skipping")
		return
	}
	defer func() {
		if err := s.cache.ReleaseLock(ctx, refreshLockKey); err != nil {
			s.logger.Warn("Failed to release market refresh lock",
				logging.Field{Key: "error", Value: err.Error()},
			)
		}
	}()

	for timeframe, window := range timeframes {
		stats, err := s.storage.GetMarketStats(time.Now().Add(-window))
		if err != nil {
			s.logger.Error("Market stats refresh failed", err,
				logging.Field{Key: "timeframe", Value: timeframe},
			)
			continue
		}

		key := "market:stats:" + timeframe
		if err := s.cache.Set(ctx, key, stats, cacheTTL); err != nil {
			s.logger.Error("Failed to cache refreshed market stats", err,
				logging.Field{Key: "timeframe", Value: timeframe},
			)
			continue
		}

		s.logger.Debug("Market stats refreshed",
			logging.Field{Key: "timeframe", Value: timeframe},
			logging.Field{Key: "property_count", Value: stats.PropertyCount},
		)
	}
}
