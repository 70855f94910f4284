package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of background work
type Job func(ctx context.Context) error

// IntervalTriggerConfig holds configuration for an interval trigger
type IntervalTriggerConfig struct {
	// Name identifies the job in logs
	Name string
	// Interval between runs
	Interval time.Duration
	// RunOnStart runs the job once right after Start
	RunOnStart bool
	// JobTimeout bounds a single run; zero means the interval
	JobTimeout time.Duration
}

// IntervalTrigger runs a job on a fixed interval until stopped. Runs never
// overlap: a run that outlasts the interval delays the next tick.
type IntervalTrigger struct {
	config IntervalTriggerConfig
	job    Job
	logger *zap.Logger

	cancel    context.CancelFunc
	done      chan struct{}
	mu        sync.Mutex
	isRunning bool
	runs      int
	lastRun   time.Time
	lastErr   error
}

// NewIntervalTrigger creates a new interval trigger
func NewIntervalTrigger(config IntervalTriggerConfig, job Job, logger *zap.Logger) (*IntervalTrigger, error) {
	if job == nil || config.Interval <= 0 {
		return nil, ErrInvalidConfig
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = config.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntervalTrigger{
		config: config,
		job:    job,
		logger: logger.With(zap.String("job", config.Name)),
	}, nil
}

// Start starts the trigger loop
func (t *IntervalTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done
	t.isRunning = true
	t.mu.Unlock()

	go t.runLoop(ctx, done)

	t.logger.Info("Interval trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Bool("run_on_start", t.config.RunOnStart),
	)
	return nil
}

// Stop stops the trigger and waits for a run in progress
func (t *IntervalTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	cancel()

	select {
	case <-done:
		t.logger.Info("Interval trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the trigger loop is active
func (t *IntervalTrigger) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isRunning
}

// Stats returns the number of completed runs and the outcome of the last one
func (t *IntervalTrigger) Stats() (runs int, lastRun time.Time, lastErr error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs, t.lastRun, t.lastErr
}

func (t *IntervalTrigger) runLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	if t.config.RunOnStart {
		t.runOnce(ctx)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

func (t *IntervalTrigger) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, t.config.JobTimeout)
	defer cancel()

	start := time.Now()
	err := t.job(runCtx)

	t.mu.Lock()
	t.runs++
	t.lastRun = start
	t.lastErr = err
	t.mu.Unlock()

	if err != nil {
		t.logger.Error("Scheduled job failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}
	t.logger.Debug("Scheduled job completed", zap.Duration("duration", time.Since(start)))
}
