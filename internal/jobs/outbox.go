package jobs

import (
	"context"
	"time"

	"furliva/internal/mailer"
	"furliva/internal/repository"

	"go.uber.org/zap"
)

const (
	// staleClaimAfter is how long a row may sit in processing before another
	// dispatcher instance may reclaim it.
	staleClaimAfter = 5 * time.Minute

	// backoffBase is the first retry delay; each further attempt doubles it
	backoffBase = time.Minute
	maxBackoff  = time.Hour
)

// OutboxDispatcher drains the transactional email outbox: it claims pending
// rows in batches, delivers them, and reschedules failures with exponential
// backoff.
type OutboxDispatcher struct {
	outboxRepo repository.OutboxRepository
	mail       mailer.Mailer
	batchSize  int
	interval   time.Duration
	logger     *zap.Logger
}

// NewOutboxDispatcher creates the dispatcher
func NewOutboxDispatcher(
	outboxRepo repository.OutboxRepository,
	mail mailer.Mailer,
	batchSize int,
	interval time.Duration,
	logger *zap.Logger,
) *OutboxDispatcher {
	return &OutboxDispatcher{
		outboxRepo: outboxRepo,
		mail:       mail,
		batchSize:  batchSize,
		interval:   interval,
		logger:     logger,
	}
}

// Start polls the outbox until the context is cancelled
func (d *OutboxDispatcher) Start(ctx context.Context) {
	d.logger.Info("Outbox dispatcher started",
		zap.Duration("interval", d.interval),
		zap.Int("batch_size", d.batchSize),
	)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.RunOnce(ctx); err != nil {
				d.logger.Error("Outbox pass failed", zap.Error(err))
			}
		}
	}
}

// RunOnce claims and delivers one batch
func (d *OutboxDispatcher) RunOnce(ctx context.Context) error {
	emails, err := d.outboxRepo.Claim(ctx, d.batchSize, staleClaimAfter)
	if err != nil {
		return err
	}

	for _, email := range emails {
		if err := d.mail.Send(ctx, email.Recipient, email.Subject, email.Body); err != nil {
			retryAfter := backoffFor(email.Attempts)
			if markErr := d.outboxRepo.MarkFailed(ctx, email.ID, retryAfter, err.Error()); markErr != nil {
				d.logger.Error("Failed to reschedule outbox email",
					zap.Int64("id", email.ID),
					zap.Error(markErr),
				)
			}
			continue
		}

		if err := d.outboxRepo.MarkSent(ctx, email.ID); err != nil {
			d.logger.Error("Failed to mark outbox email sent",
				zap.Int64("id", email.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// backoffFor doubles the delay per attempt, capped at maxBackoff
func backoffFor(attempts int) time.Duration {
	delay := backoffBase
	for i := 0; i < attempts && delay < maxBackoff; i++ {
		delay *= 2
	}
	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay
}
