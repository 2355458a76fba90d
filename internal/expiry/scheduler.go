package expiry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Expirer interface {
	ExpireOverdue(ctx context.Context) (int, error)
}

// Scheduler periodically moves reservations nobody showed up for to expired.
type Scheduler struct {
	expirer  Expirer
	interval time.Duration
	log      *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewScheduler(expirer Expirer, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		expirer:  expirer,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting expiry scheduler", zap.Duration("interval", s.interval))
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.log.Info("stopping expiry scheduler")
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopCh:
			s.log.Info("expiry scheduler stopped")
			return
		case <-ctx.Done():
			s.log.Info("expiry scheduler cancelled")
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	if _, err := s.RunOnceNow(ctx); err != nil {
		s.log.Error("reservation expiry failed", zap.Error(err))
	}
}

// RunOnceNow expires overdue reservations batch after batch until none are left.
func (s *Scheduler) RunOnceNow(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := s.expirer.ExpireOverdue(ctx)
		total += n
		if err != nil || n == 0 {
			return total, err
		}
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}
}
