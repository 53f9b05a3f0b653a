// Package jobs runs periodic background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Skotchmaster/shopdb/pkg/logging"
)

const runTimeout = time.Minute

// Job is one unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

func NewScheduler(log *slog.Logger) *Scheduler {
	cl := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelWarn))
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl)),
		log:  log,
	}
}

// Add registers job under a standard cron spec or a descriptor such as "@every 10m".
func (s *Scheduler) Add(spec string, job Job) error {
	l := s.log.With("job", job.Name())
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(logging.IntoContext(context.Background(), l), runTimeout)
		defer cancel()

		start := time.Now()
		if err := job.Run(ctx); err != nil {
			l.Error("job_failed", "error", err, "duration", time.Since(start))
			return
		}
		l.Debug("job_done", "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}
	l.Info("job_scheduled", "spec", spec)
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler_stop_timeout")
	}
}
