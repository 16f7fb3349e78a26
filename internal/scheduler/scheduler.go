package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BizPilotApp/bizpilot_backend/internal/core/domain"
	"github.com/BizPilotApp/bizpilot_backend/internal/middleware"
)

// JobFunc is one scheduled billing job. It receives the tick time and reports
// what it processed; item-level failures belong in JobResult.Errors, not in a
// returned error.
type JobFunc func(ctx context.Context, now time.Time) domain.JobResult

type jobPeriod time.Duration

const (
	periodDaily  = jobPeriod(24 * time.Hour)
	periodWeekly = jobPeriod(7 * 24 * time.Hour)
)

type job struct {
	name    string
	period  jobPeriod
	fn      JobFunc
	lastRun time.Time
	running atomic.Bool
}

// due reports whether a full period has elapsed since the job last ran.
func (j *job) due(now time.Time) bool {
	if j.lastRun.IsZero() {
		return true
	}
	return now.Sub(j.lastRun) >= time.Duration(j.period)
}

// Scheduler drives the periodic billing jobs off a single ticker loop. Jobs
// run sequentially per tick; a job still in flight from a previous tick is
// skipped, never stacked.
type Scheduler struct {
	logger       *slog.Logger
	tickInterval time.Duration
	now          func() time.Time

	mu   sync.Mutex
	jobs []*job
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a Scheduler ticking at the given interval.
func New(logger *slog.Logger, tickInterval time.Duration, options ...Option) *Scheduler {
	if tickInterval <= 0 {
		tickInterval = time.Minute
	}
	s := &Scheduler{
		logger:       logger,
		tickInterval: tickInterval,
		now:          time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// RegisterDailyJob registers a job that fires once per day.
func (s *Scheduler) RegisterDailyJob(name string, fn JobFunc) {
	s.register(name, periodDaily, fn)
}

// RegisterWeeklyJob registers a job that fires once per week.
func (s *Scheduler) RegisterWeeklyJob(name string, fn JobFunc) {
	s.register(name, periodWeekly, fn)
}

func (s *Scheduler) register(name string, period jobPeriod, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &job{name: name, period: period, fn: fn})
}

// Run blocks, firing due jobs on every tick until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.logger.Info("Scheduler started",
		slog.Duration("tick_interval", s.tickInterval),
		slog.Int("jobs", len(s.jobs)))

	// Fire immediately so a restarted service does not wait a full tick.
	s.RunPending(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.RunPending(ctx)
		}
	}
}

// RunPending runs every due job once, sequentially. Exposed so tests and the
// jobs CLI can drive ticks without the ticker loop.
func (s *Scheduler) RunPending(ctx context.Context) {
	now := s.now().UTC()

	s.mu.Lock()
	jobs := make([]*job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, j := range jobs {
		if !j.due(now) {
			continue
		}
		if !j.running.CompareAndSwap(false, true) {
			s.logger.Warn("Skipping job, previous run still in flight", slog.String("job", j.name))
			continue
		}
		s.runJob(ctx, j, now)
		j.running.Store(false)
	}
}

func (s *Scheduler) runJob(ctx context.Context, j *job, now time.Time) {
	jobLogger := s.logger.With(slog.String("job", j.name), slog.Time("tick", now))
	jobCtx := middleware.WithLogger(ctx, jobLogger)

	defer func() {
		if r := recover(); r != nil {
			jobLogger.Error("Job panicked",
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	start := time.Now()
	result := j.fn(jobCtx, now)
	j.lastRun = now

	jobLogger.Info("Job finished",
		slog.Int("processed", result.Processed),
		slog.Int("generated", result.Generated),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", time.Since(start)))
	for _, e := range result.Errors {
		jobLogger.Warn("Job item failed", slog.String("error", e))
	}
}
