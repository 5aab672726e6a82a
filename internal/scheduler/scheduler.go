package scheduler

//go:generate mockgen -source=scheduler.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"news_aggregator/internal/domain"
	"news_aggregator/internal/metrics"
)

const (
	DefaultInterval   = 5 * time.Minute
	DefaultRunTimeout = 5 * time.Minute
)

type State int32

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Refresher defines the refresh operation the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context, mode domain.RefreshMode) (*domain.RefreshStats, error)
}

// RunRecorder receives run timestamps for every active source.
type RunRecorder interface {
	MarkRun(lastRun, nextRun time.Time)
	SetNextRun(nextRun time.Time)
}

type Options struct {
	Interval   time.Duration
	RunOnStart bool
	RunTimeout time.Duration
}

type Scheduler struct {
	refresher Refresher
	recorder  RunRecorder
	cron      *cron.Cron
	entry     cron.EntryID
	state     atomic.Int32
	opts      Options
	logger    *slog.Logger
}

// NewScheduler creates an idle scheduler. recorder may be nil.
func NewScheduler(refresher Refresher, recorder RunRecorder, opts Options, logger *slog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = DefaultRunTimeout
	}
	return &Scheduler{
		refresher: refresher,
		recorder:  recorder,
		cron:      cron.New(),
		opts:      opts,
		logger:    logger.With("component", "scheduler"),
	}
}

// State returns the current run state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Start registers the periodic job and starts the timer. Jobs run with ctx
// as their parent.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.opts.Interval), func() {
		s.Tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	s.entry = id
	s.cron.Start()

	s.logger.Info("scheduler started", "interval", s.opts.Interval, "run_on_start", s.opts.RunOnStart)
	if s.recorder != nil {
		s.recorder.SetNextRun(s.nextRun())
	}
	if s.opts.RunOnStart {
		go s.Tick(ctx)
	}
	return nil
}

// Stop stops the timer and waits for an in-flight job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Tick runs a merge refresh unless one is already running. It reports
// whether a refresh ran.
func (s *Scheduler) Tick(ctx context.Context) bool {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		s.logger.Info("refresh already running, skipping tick")
		metrics.RecordSchedulerRun("tick", "skipped")
		return false
	}
	defer s.state.Store(int32(StateIdle))

	_ = s.run(ctx, "tick", domain.RefreshMerge)
	return true
}

// ForceRun performs a replace refresh regardless of state. Catalog writes
// stay serialized by the store.
func (s *Scheduler) ForceRun(ctx context.Context) error {
	if s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		defer s.state.Store(int32(StateIdle))
	}
	return s.run(ctx, "force", domain.RefreshReplace)
}

func (s *Scheduler) run(ctx context.Context, trigger string, mode domain.RefreshMode) error {
	runCtx, cancel := context.WithTimeout(ctx, s.opts.RunTimeout)
	defer cancel()

	started := time.Now()
	_, err := s.refresher.Refresh(runCtx, mode)

	if s.recorder != nil {
		s.recorder.MarkRun(started, s.nextRun())
	}

	if err != nil {
		s.logger.Error("refresh failed", "trigger", trigger, "error", err)
		metrics.RecordSchedulerRun(trigger, "error")
		return err
	}
	metrics.RecordSchedulerRun(trigger, "ok")
	return nil
}

func (s *Scheduler) nextRun() time.Time {
	if s.entry != 0 {
		if next := s.cron.Entry(s.entry).Next; !next.IsZero() {
			return next
		}
	}
	return time.Now().Add(s.opts.Interval)
}
