package jobs

import (
	"context"
	"time"

	"furliva/internal/mailer"
	"furliva/internal/repository"

	"go.uber.org/zap"
)

// ReminderSummary reports one reminder run
type ReminderSummary struct {
	Checked int `json:"checked"`
	Sent    int `json:"sent"`
}

// ReminderJob emails users whose auto-renewing plans expire within the
// configured horizon. Delivery is fail-open: one bad recipient never stops
// the rest of the run.
type ReminderJob struct {
	userPlanRepo repository.UserPlanRepository
	userRepo     repository.UserRepository
	mail         mailer.Mailer
	horizonDays  int
	logger       *zap.Logger
	now          func() time.Time
}

// NewReminderJob creates the reminder job. A nil mailer yields a job that
// counts candidates but sends nothing.
func NewReminderJob(
	userPlanRepo repository.UserPlanRepository,
	userRepo repository.UserRepository,
	mail mailer.Mailer,
	horizonDays int,
	logger *zap.Logger,
) *ReminderJob {
	return &ReminderJob{
		userPlanRepo: userPlanRepo,
		userRepo:     userRepo,
		mail:         mail,
		horizonDays:  horizonDays,
		logger:       logger,
		now:          time.Now,
	}
}

// Run executes one reminder pass over plans expiring in [now, now+horizon)
func (j *ReminderJob) Run(ctx context.Context) (ReminderSummary, error) {
	now := j.now()
	to := now.AddDate(0, 0, j.horizonDays)

	plans, err := j.userPlanRepo.ListExpiring(ctx, now, to)
	if err != nil {
		return ReminderSummary{}, err
	}

	summary := ReminderSummary{Checked: len(plans)}
	if j.mail == nil {
		j.logger.Warn("Mailer not configured, skipping reminder delivery",
			zap.Int("candidates", len(plans)),
		)
		return summary, nil
	}

	for _, plan := range plans {
		user, err := j.userRepo.FindByID(ctx, plan.UserID)
		if err != nil {
			// Orphaned assignment, the owning account is gone
			j.logger.Warn("Skipping reminder for missing user",
				zap.String("plan_id", plan.ID.String()),
				zap.String("user_id", plan.UserID.String()),
				zap.Error(err),
			)
			continue
		}

		err = j.mail.Send(ctx, user.Email, mailer.ReminderSubject, mailer.RenderReminderEmail(user.Name, j.horizonDays))
		if err != nil {
			j.logger.Error("Failed to send reminder",
				zap.String("to", user.Email),
				zap.Error(err),
			)
			continue
		}
		summary.Sent++
	}

	j.logger.Info("Reminder run finished",
		zap.Int("checked", summary.Checked),
		zap.Int("sent", summary.Sent),
	)

	return summary, nil
}
