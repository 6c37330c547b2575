package giveaway

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxCheckFailures bounds how many consecutive ticks a transient existence
// check may postpone an expired giveaway before it completes regardless.
const maxCheckFailures = 30

// Scheduler polls the store: one loop completes expired giveaways, the other
// evicts ended ones after their grace period.
type Scheduler struct {
	service         *Service
	logger          *zap.Logger
	checkInterval   time.Duration
	cleanupInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group

	failuresMu sync.Mutex
	failures   map[string]int
}

func NewScheduler(service *Service, checkInterval, cleanupInterval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkInterval <= 0 {
		checkInterval = 10 * time.Second
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Second
	}
	return &Scheduler{
		service:         service,
		logger:          logger,
		checkInterval:   checkInterval,
		cleanupInterval: cleanupInterval,
		failures:        make(map[string]int),
	}
}

// Start launches both loops. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	s.cancel = cancel
	s.group = group

	group.Go(func() error {
		return s.loop(ctx, s.checkInterval, s.CheckActive)
	})
	group.Go(func() error {
		return s.loop(ctx, s.cleanupInterval, s.CleanupEnded)
	})
	s.logger.Info("giveaway scheduler started",
		zap.Duration("check_interval", s.checkInterval),
		zap.Duration("cleanup_interval", s.cleanupInterval),
	)
}

// Stop cancels both loops and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, group := s.cancel, s.group
	s.cancel, s.group = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("giveaway scheduler stopped with error", zap.Error(err))
	}
	s.logger.Info("giveaway scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) error {
	tick(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// CheckActive completes every active giveaway whose end time has passed.
func (s *Scheduler) CheckActive(ctx context.Context) {
	now := s.service.Now()
	for _, record := range s.service.store.ListActive() {
		if ctx.Err() != nil {
			return
		}
		if now.Before(record.EndTime) {
			continue
		}

		err := s.service.announcementExists(ctx, record)
		switch {
		case errors.Is(err, ErrMessageGone), errors.Is(err, ErrForbidden):
			s.resetFailures(record.ID)
			if s.service.store.Discard(ctx, record.ID) {
				s.logger.Info("giveaway announcement unreachable, discarded", zap.String("giveaway_id", record.ID), zap.Error(err))
			}
			continue
		case err != nil:
			if attempts := s.recordFailure(record.ID); attempts < maxCheckFailures {
				s.logger.Warn("giveaway check skipped", zap.String("giveaway_id", record.ID), zap.Int("attempts", attempts), zap.Error(err))
				continue
			}
			s.logger.Warn("giveaway check keeps failing, completing anyway", zap.String("giveaway_id", record.ID), zap.Error(err))
		}
		s.resetFailures(record.ID)

		if _, err := s.service.Complete(ctx, record, record.WinnerCount); err != nil && !errors.Is(err, ErrAlreadyEnded) {
			s.logger.Warn("giveaway completion failed", zap.String("giveaway_id", record.ID), zap.Error(err))
		}
	}
}

func (s *Scheduler) recordFailure(id string) int {
	s.failuresMu.Lock()
	defer s.failuresMu.Unlock()
	s.failures[id]++
	return s.failures[id]
}

func (s *Scheduler) resetFailures(id string) {
	s.failuresMu.Lock()
	delete(s.failures, id)
	s.failuresMu.Unlock()
}

// CleanupEnded evicts ended giveaways whose grace period elapsed.
func (s *Scheduler) CleanupEnded(ctx context.Context) {
	now := s.service.Now()
	for _, record := range s.service.store.ListEnded() {
		if now.Before(record.CleanupAt) {
			continue
		}
		if s.service.store.EvictEnded(ctx, record.ID) {
			s.logger.Debug("giveaway evicted", zap.String("giveaway_id", record.ID))
		}
	}
}
