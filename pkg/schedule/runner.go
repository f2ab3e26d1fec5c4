package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrJobAlreadyRegistered = errors.New("job already registered")
	ErrNoJobsRegistered     = errors.New("no jobs registered")
)

// JobFunc is the work executed on each due run.
type JobFunc func(ctx context.Context) error

// Runner executes registered jobs on their schedules. Jobs run sequentially
// within one tick; a job's error is logged and never stops the runner.
type Runner struct {
	mu       sync.RWMutex
	jobs     map[string]*job
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

type job struct {
	name      string
	schedule  Schedule
	fn        JobFunc
	nextRunAt time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCheckInterval sets how often the runner checks for due jobs.
func WithCheckInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets the logger for the runner.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a job runner with a 30s default check interval.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		jobs:     make(map[string]*job),
		interval: 30 * time.Second,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddJob registers a periodic job. The first run happens at the schedule's
// next occurrence after registration, not immediately.
func (r *Runner) AddJob(name string, s Schedule, fn JobFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[name]; exists {
		return ErrJobAlreadyRegistered
	}

	r.jobs[name] = &job{
		name:      name,
		schedule:  s,
		fn:        fn,
		nextRunAt: s.Next(r.now()),
	}

	r.logger.Info("registered periodic job",
		slog.String("job", name),
		slog.String("schedule", s.String()))

	return nil
}

// Start blocks, checking for due jobs every check interval, until ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.RLock()
	jobCount := len(r.jobs)
	r.mu.RUnlock()

	if jobCount == 0 {
		return ErrNoJobsRegistered
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("job runner shutting down")
			return ctx.Err()
		case <-ticker.C:
			r.RunDue(ctx)
		}
	}
}

// RunDue executes every job whose next run time has passed. Exported so tests
// and operational tooling can trigger a check without waiting for the ticker.
func (r *Runner) RunDue(ctx context.Context) {
	now := r.now()

	r.mu.Lock()
	due := make([]*job, 0, len(r.jobs))
	for _, j := range r.jobs {
		if !j.nextRunAt.After(now) {
			due = append(due, j)
			j.nextRunAt = j.schedule.Next(now)
		}
	}
	r.mu.Unlock()

	for _, j := range due {
		started := r.now()
		r.logger.Info("running periodic job", slog.String("job", j.name))

		if err := j.fn(ctx); err != nil {
			r.logger.Error("periodic job failed",
				slog.String("job", j.name),
				slog.String("error", err.Error()))
			continue
		}

		r.logger.Info("periodic job finished",
			slog.String("job", j.name),
			slog.Duration("took", r.now().Sub(started)))
	}
}
