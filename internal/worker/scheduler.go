// Package worker runs background jobs on a cron schedule.
package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one sweep.  It returns how many rows it touched.
type Job func(ctx context.Context) (int, error)

// Scheduler runs named sweeps.  A sweep that is still running when its
// next tick fires causes that tick to be skipped.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	log     logrus.FieldLogger
	jobs    map[string]func()
}

func NewScheduler(log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cl := cron.PrintfLogger(log)
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		timeout: 30 * time.Second,
		log:     log,
		jobs:    map[string]func(){},
	}
}

// Add schedules job on spec, a robfig/cron expression such as "@every 1m"
// or "*/5 * * * *".
func (s *Scheduler) Add(name, spec string, job Job) error {
	run := s.wrap(name, job)
	if _, err := s.cron.AddFunc(spec, run); err != nil {
		return err
	}
	s.jobs[name] = run
	return nil
}

// RunNow performs one sweep of a registered job outside its schedule.
func (s *Scheduler) RunNow(name string) bool {
	run, ok := s.jobs[name]
	if ok {
		run()
	}
	return ok
}

func (s *Scheduler) wrap(name string, job Job) func() {
	log := s.log.WithField("job", name)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		start := time.Now()
		n, err := job(ctx)
		if err != nil {
			log.WithError(err).Error("sweep failed")
			return
		}
		if n > 0 {
			log.WithFields(logrus.Fields{"affected": n, "took": time.Since(start).String()}).Info("sweep done")
		}
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("jobs", len(s.jobs)).Info("scheduler started")
}

// Stop prevents further runs and waits for running sweeps, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.log.Info("scheduler stopped")
}
