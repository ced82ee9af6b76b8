package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leasehold/backend/internal/infrastructure/config"
)

// SweepJob is the unit of work the scheduler triggers on every tick.
// The handler path reuses the same implementation for on-demand sweeps,
// so both entry points share one reconciliation routine.
type SweepJob interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// SweepScheduler runs the overdue sweep on a fixed interval.
type SweepScheduler struct {
	config config.SweepConfig
	job    SweepJob
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  bool
}

// NewSweepScheduler creates a new sweep scheduler
func NewSweepScheduler(cfg config.SweepConfig, job SweepJob, logger *zap.Logger) (*SweepScheduler, error) {
	if job == nil {
		return nil, ErrInvalidConfig
	}
	if cfg.Interval < time.Minute {
		return nil, ErrInvalidConfig
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepScheduler{
		config: cfg,
		job:    job,
		logger: logger,
	}, nil
}

// Start launches the background ticker loop. When RunOnStart is set, one
// sweep executes immediately before the first tick.
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Overdue sweep scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *SweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Overdue sweep scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Overdue sweep scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs a sweep outside the regular schedule. Overlapping runs
// are rejected so two sweeps never race over the same tenants.
func (s *SweepScheduler) TriggerNow(ctx context.Context) (int, error) {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return 0, ErrSchedulerNotRunning
	}
	if s.inFlight {
		s.mu.Unlock()
		return 0, ErrSweepAlreadyRunning
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	return s.executeSweep(ctx)
}

func (s *SweepScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *SweepScheduler) tick(ctx context.Context) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Warn("Skipping scheduled sweep, previous run still in progress")
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	for attempt := 0; ; attempt++ {
		_, err := s.executeSweep(ctx)
		if err == nil {
			return
		}
		if attempt >= s.config.MaxRetries {
			s.logger.Error("Scheduled overdue sweep failed, giving up until next tick",
				zap.Int("attempts", attempt+1),
				zap.Error(err),
			)
			return
		}
		s.logger.Warn("Scheduled overdue sweep failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("retry_delay", s.config.RetryDelay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.config.RetryDelay):
		}
	}
}

func (s *SweepScheduler) executeSweep(ctx context.Context) (int, error) {
	sweepCtx := ctx
	if s.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		sweepCtx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
	}

	started := time.Now()
	flipped, err := s.job.Sweep(sweepCtx, started)
	if err != nil {
		return flipped, err
	}

	s.logger.Info("Overdue sweep completed",
		zap.Int("tenants_flipped", flipped),
		zap.Duration("duration", time.Since(started)),
	)
	return flipped, nil
}
