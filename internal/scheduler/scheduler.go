package scheduler

import (
	"context"
	"sync"
	"time"

	"shopcompare/backend/internal/service"
	"shopcompare/backend/pkg/logger"
)

// Scheduler periodically prunes rate-limit counters whose windows closed long ago.
type Scheduler struct {
	limiter    service.RateLimitService
	interval   time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc // cancels the current prune
	mu         sync.Mutex         // protects cancelFunc
}

func New(limiter service.RateLimitService, interval time.Duration) *Scheduler {
	return &Scheduler{
		limiter:  limiter,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "module", "scheduler", "action", "start", "resource", "rate_limit", "interval", s.interval)
}

// Stop cancels a running prune and waits for the loop to exit. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
		s.mu.Unlock()

		close(s.stopCh)
		s.wg.Wait()
		logger.Info("scheduler stopped", "module", "scheduler", "action", "stop", "resource", "rate_limit")
	})
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.prune()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.prune()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)

	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	if _, err := s.limiter.PruneStale(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info("scheduled prune cancelled", "module", "scheduler", "action", "prune", "resource", "rate_limit", "result", "cancelled")
			return
		}
		logger.Error("scheduled prune failed", "module", "scheduler", "action", "prune", "resource", "rate_limit", "result", "failed", "error", err)
	}
}
