package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the screening job on a cron expression.
type Scheduler struct {
	cron *cron.Cron
	job  func()
}

// New creates a Scheduler around the given screening job.
func New(job func()) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		job:  job,
	}
}

// Register adds the screening job under the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		log.Println("[INFO] running scheduled screen")
		s.job()
	}); err != nil {
		return fmt.Errorf("register screen task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the screening job immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.job()
}
