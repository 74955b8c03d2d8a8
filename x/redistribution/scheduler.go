package redistribution

import (
	"context"
	"sync"
	"time"

	"github.com/alium-swap/ledger/errors"
	"github.com/jonboulle/clockwork"
	"github.com/tendermint/tendermint/libs/log"
)

// ReleaseFunc executes a single release, together with whatever
// synchronization and persistence the host requires.
type ReleaseFunc func(ctx context.Context) (*Run, error)

// SchedulerConfig configures the periodic release.
type SchedulerConfig struct {
	Interval time.Duration
	Release  ReleaseFunc
	Logger   log.Logger
	Clock    clockwork.Clock
}

func (cfg *SchedulerConfig) Validate() error {
	if cfg.Interval <= 0 {
		return errors.Field("Interval", errors.ErrInvalidInput, "must be positive")
	}
	if cfg.Release == nil {
		return errors.Field("Release", errors.ErrInvalidInput, "required")
	}
	return nil
}

// Scheduler releases the pool in regular intervals.
type Scheduler struct {
	cfg   SchedulerConfig
	log   log.Logger
	start sync.Once
	done  chan struct{}
}

func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}
	return &Scheduler{
		cfg:  cfg,
		log:  cfg.Logger.With("module", "redistribution", "component", "scheduler"),
		done: make(chan struct{}),
	}, nil
}

// Start runs the release loop in the background until the context is
// cancelled. The first release is executed after the first interval.
// Only the first call starts the loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.start.Do(func() { go s.loop(ctx) })
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)
	s.log.Info("starting release loop", "interval", s.cfg.Interval)

	ticker := s.cfg.Clock.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("release loop stopped")
			return
		case <-ticker.Chan():
			s.safeRelease(ctx)
		}
	}
}

// Done is closed when the release loop exits.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) safeRelease(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("release panicked", "panic", r)
			releasesTotal.WithLabelValues("panic").Inc()
		}
	}()

	run, err := s.cfg.Release(ctx)
	if err != nil {
		s.log.Error("release failed", "err", err)
		return
	}
	if run != nil && run.Failures > 0 {
		s.log.Info("release completed with failures", "run", run.ID, "failures", run.Failures)
	}
}
