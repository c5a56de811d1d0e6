// Package sweeper runs periodic maintenance jobs on cron schedules.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/metrics"
	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single job run.
const jobTimeout = 2 * time.Minute

// Job is one maintenance task. Run returns the number of rows it changed.
type Job struct {
	Name string
	Spec string // standard 5-field cron expression
	Run  func(ctx context.Context) (int, error)
}

type Sweeper struct {
	jobs   []Job
	logger *slog.Logger
}

// New validates every job's cron expression up front.
func New(logger *slog.Logger, jobs ...Job) (*Sweeper, error) {
	for _, j := range jobs {
		if _, err := cron.ParseStandard(j.Spec); err != nil {
			return nil, fmt.Errorf("job %s: invalid cron expression %q: %w", j.Name, j.Spec, err)
		}
	}
	return &Sweeper{jobs: jobs, logger: logger.With("component", "sweeper")}, nil
}

// Start schedules all jobs and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Sweeper) Start(ctx context.Context) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	for _, j := range s.jobs {
		// Specs were validated in New.
		_, _ = c.AddFunc(j.Spec, func() { s.run(ctx, j) })
	}

	c.Start()
	s.logger.Info("sweeper started", "jobs", len(s.jobs))

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("sweeper shut down")
}

// RunOnce runs every job immediately, in order, and returns the first error.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	for _, j := range s.jobs {
		if _, err := s.run(ctx, j); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sweeper) run(ctx context.Context, j Job) (int, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := j.Run(ctx)
	metrics.SweepDuration.WithLabelValues(j.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.ErrorContext(ctx, "sweep job failed", "job", j.Name, "error", err)
		return 0, fmt.Errorf("%s: %w", j.Name, err)
	}

	metrics.SweepRowsTotal.WithLabelValues(j.Name).Add(float64(n))
	if n > 0 {
		s.logger.InfoContext(ctx, "sweep job done", "job", j.Name, "rows", n)
	}
	return n, nil
}
