package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the recurring jobs on cron schedules. It wraps robfig/cron
// with panic recovery and zap-backed logging.
type Scheduler struct {
	cron     *cron.Cron
	reminder *ReminderJob
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates the scheduler with the reminder job registered on the
// given cron expression.
func NewScheduler(reminder *ReminderJob, schedule string, logger *zap.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	c := cron.New(
		cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		),
	)

	return &Scheduler{
		cron:     c,
		reminder: reminder,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.reminder.Run(context.Background()); err != nil {
			s.logger.Error("Reminder job failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", zap.String("reminder_schedule", s.schedule))
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}
