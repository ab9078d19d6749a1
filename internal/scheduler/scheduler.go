package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner is the job the scheduler triggers
type Runner interface {
	RunSweep(ctx context.Context) error
}

// Scheduler triggers alert sweeps on a cron schedule
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	log    *logrus.Logger
}

// New registers runner under spec ("@every 1m", "0 0 * * *", ...)
func New(spec string, runner Runner, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		runner: runner,
		log:    log,
	}
	if _, err := s.cron.AddFunc(spec, s.Tick); err != nil {
		return nil, fmt.Errorf("failed to schedule sweep %q: %w", spec, err)
	}
	return s, nil
}

// Tick runs one sweep and logs its outcome
func (s *Scheduler) Tick() {
	s.log.Info("Notification sweep started")
	start := time.Now()
	if err := s.runner.RunSweep(context.Background()); err != nil {
		s.log.Errorf("Error running notification sweep: %v", err)
		return
	}
	s.log.Infof("Notification sweep completed in %s", time.Since(start))
}

// Start begins scheduling in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Notification scheduler is running")
}

// Stop halts scheduling; the returned context is done when running jobs finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
