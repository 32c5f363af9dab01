package rotation

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/juju/clock"
	dserrors "github.com/systmms/ssmrotate/internal/errors"
	"github.com/systmms/ssmrotate/internal/logging"
)

// DefaultInterval matches the five minute schedule the handler is deployed with.
const DefaultInterval = 5 * time.Minute

// SchedulerConfig configures a Scheduler
type SchedulerConfig struct {
	Rotator  Rotator
	Interval time.Duration
	Clock    clock.Clock
	Logger   *logging.Logger

	// RunImmediately rotates once before the first wait.
	RunImmediately bool
}

// Scheduler invokes a Rotator at a fixed interval. Runs never overlap: the
// next wait starts after the previous rotation returns. Failures are logged
// and counted, never retried.
type Scheduler struct {
	rotator        Rotator
	interval       time.Duration
	clock          clock.Clock
	logger         *logging.Logger
	runImmediately bool

	runs     atomic.Int64
	failures atomic.Int64
}

// NewScheduler validates cfg and fills in defaults
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Rotator == nil {
		return nil, errors.New("rotator is required")
	}
	if cfg.Interval < 0 {
		return nil, errors.New("interval must be positive")
	}

	s := &Scheduler{
		rotator:        cfg.Rotator,
		interval:       cfg.Interval,
		clock:          cfg.Clock,
		logger:         cfg.Logger,
		runImmediately: cfg.RunImmediately,
	}
	if s.interval == 0 {
		s.interval = DefaultInterval
	}
	if s.clock == nil {
		s.clock = clock.WallClock
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}
	return s, nil
}

// Run blocks until ctx is done. It returns nil on cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Rotating %s every %s", s.rotator.Target(), s.interval)

	if s.runImmediately {
		s.tick(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler for %s stopped after %d runs (%d failed)", s.rotator.Target(), s.Runs(), s.Failures())
			return nil
		case <-s.clock.After(s.interval):
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.runs.Add(1)
	result, err := s.rotator.Rotate(ctx)
	if err != nil {
		s.failures.Add(1)
		if dserrors.IsRetryable(err) {
			s.logger.Warn("Rotation of %s failed, will try again at the next tick in %s: %v", s.rotator.Target(), s.interval, err)
			return
		}
		s.logger.Error("Rotation of %s failed with a permanent error: %v", s.rotator.Target(), err)
		return
	}
	s.logger.Info("Rotated %s to version %d", result.Target, result.Version)
}

// Runs returns how many rotations have been attempted
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

// Failures returns how many rotations have failed
func (s *Scheduler) Failures() int64 {
	return s.failures.Load()
}
