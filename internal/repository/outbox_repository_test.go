package repository

import (
	"context"
	"testing"
	"time"

	"furliva/internal/domain"
)

func enqueueTestEmail(t *testing.T, recipient string) {
	t.Helper()
	ctx := context.Background()

	tx, err := testDB.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	err = NewOutboxRepository(testDB).EnqueueTx(ctx, tx, &domain.OutboxEmail{
		Recipient: recipient,
		Subject:   "Order Confirmation",
		Body:      "<p>Thanks!</p>",
	})
	if err != nil {
		tx.Rollback()
		t.Fatalf("failed to enqueue email: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	t.Cleanup(func() {
		_, _ = testDB.Exec("DELETE FROM email_outbox WHERE recipient = $1", recipient)
	})
}

// Claiming moves a pending row to processing and bumps its attempt count
func TestOutboxClaim_MarksProcessing(t *testing.T) {
	repo := NewOutboxRepository(testDB)
	enqueueTestEmail(t, "claim@example.com")

	emails, err := repo.Claim(context.Background(), 10, 5*time.Minute)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	var claimed *domain.OutboxEmail
	for _, email := range emails {
		if email.Recipient == "claim@example.com" {
			claimed = email
		}
	}
	if claimed == nil {
		t.Fatal("enqueued email not claimed")
	}
	if claimed.Status != "processing" {
		t.Errorf("claimed status: got %s, want processing", claimed.Status)
	}
	if claimed.Attempts != 1 {
		t.Errorf("attempts after claim: got %d, want 1", claimed.Attempts)
	}

	// Still in processing, so a second claim must not return it again
	again, err := repo.Claim(context.Background(), 10, 5*time.Minute)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	for _, email := range again {
		if email.ID == claimed.ID {
			t.Error("claimed email handed out twice")
		}
	}
}

// MarkSent finalizes the row so no future claim picks it up
func TestOutboxMarkSent_Finalizes(t *testing.T) {
	repo := NewOutboxRepository(testDB)
	enqueueTestEmail(t, "sent@example.com")

	emails, err := repo.Claim(context.Background(), 10, 5*time.Minute)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	for _, email := range emails {
		if email.Recipient != "sent@example.com" {
			continue
		}
		if err := repo.MarkSent(context.Background(), email.ID); err != nil {
			t.Fatalf("mark sent failed: %v", err)
		}

		var status string
		var sentAt *time.Time
		err := testDB.QueryRow("SELECT status, sent_at FROM email_outbox WHERE id = $1", email.ID).Scan(&status, &sentAt)
		if err != nil {
			t.Fatalf("failed to read row: %v", err)
		}
		if status != "sent" || sentAt == nil {
			t.Errorf("row not finalized: status=%s sent_at=%v", status, sentAt)
		}
		return
	}
	t.Fatal("enqueued email not claimed")
}

// MarkFailed returns the row to pending with a future retry time, so it is
// invisible to claims until the backoff elapses.
func TestOutboxMarkFailed_SchedulesRetry(t *testing.T) {
	repo := NewOutboxRepository(testDB)
	enqueueTestEmail(t, "retry@example.com")

	emails, err := repo.Claim(context.Background(), 10, 5*time.Minute)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	for _, email := range emails {
		if email.Recipient != "retry@example.com" {
			continue
		}
		if err := repo.MarkFailed(context.Background(), email.ID, time.Hour, "smtp: connection refused"); err != nil {
			t.Fatalf("mark failed failed: %v", err)
		}

		var status, lastError string
		err := testDB.QueryRow("SELECT status, last_error FROM email_outbox WHERE id = $1", email.ID).Scan(&status, &lastError)
		if err != nil {
			t.Fatalf("failed to read row: %v", err)
		}
		if status != "pending" {
			t.Errorf("status after failure: got %s, want pending", status)
		}
		if lastError != "smtp: connection refused" {
			t.Errorf("failure cause not recorded: %q", lastError)
		}

		// Not due for an hour
		again, err := repo.Claim(context.Background(), 10, 5*time.Minute)
		if err != nil {
			t.Fatalf("claim after failure failed: %v", err)
		}
		for _, e := range again {
			if e.ID == email.ID {
				t.Error("rescheduled email claimed before its retry time")
			}
		}
		return
	}
	t.Fatal("enqueued email not claimed")
}
