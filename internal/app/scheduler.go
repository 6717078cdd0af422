package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"mirror-scraper/internal/config"
	"mirror-scraper/internal/observability"
)

// Runner is one full pipeline pass.
type Runner interface {
	Run(ctx context.Context) (*RunStats, error)
}

// Scheduler repeats runs in a loop or on a cron schedule. Every rerun starts from scratch.
type Scheduler struct {
	cfg      config.SchedulerConfig
	runner   Runner
	logger   *observability.Logger
	interval time.Duration
}

func NewScheduler(cfg *config.Config, runner Runner, logger *observability.Logger) *Scheduler {
	return &Scheduler{
		cfg:      cfg.Scheduler,
		runner:   runner,
		logger:   logger,
		interval: cfg.GetSchedulerInterval(),
	}
}

// Start blocks until the schedule is done or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	switch s.cfg.Mode {
	case "interval":
		return s.loop(ctx)
	case "cron":
		return s.runCron(ctx)
	default:
		_, err := s.runner.Run(ctx)
		return err
	}
}

func (s *Scheduler) loop(ctx context.Context) error {
	for runs := 1; ; runs++ {
		if _, err := s.runner.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if s.cfg.MaxRuns > 0 && runs >= s.cfg.MaxRuns {
			s.logger.Info("Reached max runs", "runs", runs)
			return nil
		}

		s.logger.Info("Script will rerun after the specified time interval", "interval", s.interval.String())
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.interval):
		}
	}
}

func (s *Scheduler) runCron(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var runs atomic.Int64
	job := func() {
		n := runs.Add(1)
		if _, err := s.runner.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("Scheduled run failed", "run", n, "error", err.Error())
		}
		if s.cfg.MaxRuns > 0 && n >= int64(s.cfg.MaxRuns) {
			cancel()
		}
	}

	cronLogger := cron.PrintfLogger(s.logger)
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := c.AddFunc(s.cfg.CronExpr, job); err != nil {
		return err
	}

	s.logger.Info("Running first pass immediately")
	job()

	s.logger.Info("Starting scheduler", "cron", s.cfg.CronExpr)
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
	s.logger.Info("Scheduler stopped", "runs", runs.Load())
	return nil
}
