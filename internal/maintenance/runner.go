// Package maintenance runs periodic housekeeping jobs on a cron schedule.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a named unit of periodic work.
type Job struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Runner schedules jobs with robfig/cron. Panicking jobs are recovered and a
// job still running when its next tick arrives is skipped.
type Runner struct {
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRunner constructs a stopped Runner.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "maintenance")
	adapter := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add schedules job using a standard five-field expression or a descriptor such as
// "@every 5m".
func (r *Runner) Add(schedule string, job Job) (cron.EntryID, error) {
	if job.Run == nil {
		return 0, errors.New("maintenance: job has no Run function")
	}
	id, err := r.cron.AddFunc(schedule, func() { r.run(job) })
	if err != nil {
		return 0, fmt.Errorf("maintenance: schedule %s (%q): %w", job.Name, schedule, err)
	}
	r.logger.Info("job scheduled", "job", job.Name, "schedule", schedule)
	return id, nil
}

// Start begins running scheduled jobs in the background.
func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts scheduling, cancels running jobs, and waits for them to return
// or for ctx to end.
func (r *Runner) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	r.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) run(job Job) {
	ctx := r.ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	started := time.Now()
	logger := r.logger.With("job", job.Name)
	if err := job.Run(ctx); err != nil {
		logger.Error("job failed", "error", err, "duration", time.Since(started))
		return
	}
	logger.Debug("job finished", "duration", time.Since(started))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
