package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"furliva/internal/domain"
)

// OutboxRepository defines the interface for email outbox data access.
// Emails are enqueued in the same transaction as the write they belong to
// and delivered asynchronously by the dispatcher.
type OutboxRepository interface {
	EnqueueTx(ctx context.Context, tx *sql.Tx, email *domain.OutboxEmail) error
	// Claim atomically moves up to batchSize due messages to the processing
	// state and returns them. Messages stuck in processing longer than
	// staleAfter are reclaimed, so a crashed dispatcher cannot strand them.
	Claim(ctx context.Context, batchSize int, staleAfter time.Duration) ([]*domain.OutboxEmail, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, retryAfter time.Duration, cause string) error
}

type outboxRepository struct {
	db *sql.DB
}

// NewOutboxRepository creates a new instance of OutboxRepository
func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

// EnqueueTx inserts a pending email inside the caller's transaction
func (r *outboxRepository) EnqueueTx(ctx context.Context, tx *sql.Tx, email *domain.OutboxEmail) error {
	query := `
		INSERT INTO email_outbox (recipient, subject, body, status, attempts, next_attempt_at, created_at)
		VALUES ($1, $2, $3, 'pending', 0, NOW(), NOW())
	`

	_, err := tx.ExecContext(ctx, query, email.Recipient, email.Subject, email.Body)
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox email: %w", err)
	}

	return nil
}

// Claim selects and locks a batch of due messages
func (r *outboxRepository) Claim(ctx context.Context, batchSize int, staleAfter time.Duration) ([]*domain.OutboxEmail, error) {
	query := `
		UPDATE email_outbox
		SET status = 'processing', attempts = attempts + 1, next_attempt_at = NOW()
		WHERE id IN (
			SELECT id FROM email_outbox
			WHERE (status = 'pending' AND next_attempt_at <= NOW())
			   OR (status = 'processing' AND next_attempt_at <= NOW() - make_interval(secs => $2))
			ORDER BY id
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, recipient, subject, body, status, attempts, next_attempt_at, last_error, created_at, sent_at
	`

	rows, err := r.db.QueryContext(ctx, query, batchSize, int(staleAfter.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("failed to claim outbox emails: %w", err)
	}
	defer rows.Close()

	emails := []*domain.OutboxEmail{}
	for rows.Next() {
		email := &domain.OutboxEmail{}
		err := rows.Scan(
			&email.ID,
			&email.Recipient,
			&email.Subject,
			&email.Body,
			&email.Status,
			&email.Attempts,
			&email.NextAttemptAt,
			&email.LastError,
			&email.CreatedAt,
			&email.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox email: %w", err)
		}
		emails = append(emails, email)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox emails: %w", err)
	}

	return emails, nil
}

// MarkSent finalizes a delivered message
func (r *outboxRepository) MarkSent(ctx context.Context, id int64) error {
	query := `
		UPDATE email_outbox
		SET status = 'sent', sent_at = NOW(), last_error = ''
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox email sent: %w", err)
	}

	return nil
}

// MarkFailed schedules a retry for a message whose delivery failed
func (r *outboxRepository) MarkFailed(ctx context.Context, id int64, retryAfter time.Duration, cause string) error {
	query := `
		UPDATE email_outbox
		SET status = 'pending', next_attempt_at = NOW() + make_interval(secs => $2), last_error = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, int(retryAfter.Seconds()), cause)
	if err != nil {
		return fmt.Errorf("failed to mark outbox email failed: %w", err)
	}

	return nil
}
