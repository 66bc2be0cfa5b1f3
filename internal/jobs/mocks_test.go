package jobs

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"furliva/internal/domain"
	"furliva/internal/repository"

	"github.com/google/uuid"
)

type mockUserRepository struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, exists := m.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type mockUserPlanRepository struct {
	plans map[uuid.UUID]*domain.UserPlan
}

func newMockUserPlanRepository() *mockUserPlanRepository {
	return &mockUserPlanRepository{plans: make(map[uuid.UUID]*domain.UserPlan)}
}

func (m *mockUserPlanRepository) Create(ctx context.Context, plan *domain.UserPlan) error {
	m.plans[plan.ID] = plan
	return nil
}

func (m *mockUserPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.plans[id]; !exists {
		return repository.ErrUserPlanNotFound
	}
	delete(m.plans, id)
	return nil
}

func (m *mockUserPlanRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserPlan, error) {
	result := []*domain.UserPlan{}
	for _, plan := range m.plans {
		if plan.UserID == userID {
			result = append(result, plan)
		}
	}
	return result, nil
}

func (m *mockUserPlanRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.UserPlan, error) {
	result := []*domain.UserPlan{}
	for _, plan := range m.plans {
		if plan.UserID == userID && plan.Active(now) {
			result = append(result, plan)
		}
	}
	return result, nil
}

func (m *mockUserPlanRepository) ListExpiring(ctx context.Context, from, to time.Time) ([]*domain.UserPlan, error) {
	result := []*domain.UserPlan{}
	for _, plan := range m.plans {
		if plan.ExpiryDate == nil || !plan.AutoRenew {
			continue
		}
		if !plan.ExpiryDate.Before(from) && plan.ExpiryDate.Before(to) {
			result = append(result, plan)
		}
	}
	return result, nil
}

func (m *mockUserPlanRepository) ListSubscribers(ctx context.Context, filter string, now time.Time) ([]*domain.Subscriber, error) {
	return nil, nil
}

// recordingMailer records sends and can fail selected recipients
type recordingMailer struct {
	mu     sync.Mutex
	sent   []string
	failTo map[string]bool
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{failTo: make(map[string]bool)}
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTo[to] {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, to)
	return nil
}

// mockOutboxRepository mirrors the claim semantics of the real table: due
// pending rows move to processing with attempts incremented, MarkFailed
// returns them to pending with a future next_attempt_at.
type mockOutboxRepository struct {
	nextID int64
	emails map[int64]*domain.OutboxEmail
	now    func() time.Time
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{
		emails: make(map[int64]*domain.OutboxEmail),
		now:    time.Now,
	}
}

func (m *mockOutboxRepository) enqueue(recipient, subject, body string) *domain.OutboxEmail {
	m.nextID++
	email := &domain.OutboxEmail{
		ID:            m.nextID,
		Recipient:     recipient,
		Subject:       subject,
		Body:          body,
		Status:        "pending",
		NextAttemptAt: m.now(),
		CreatedAt:     m.now(),
	}
	m.emails[email.ID] = email
	return email
}

func (m *mockOutboxRepository) EnqueueTx(ctx context.Context, tx *sql.Tx, email *domain.OutboxEmail) error {
	m.enqueue(email.Recipient, email.Subject, email.Body)
	return nil
}

func (m *mockOutboxRepository) Claim(ctx context.Context, batchSize int, staleAfter time.Duration) ([]*domain.OutboxEmail, error) {
	now := m.now()
	claimed := []*domain.OutboxEmail{}
	for id := int64(1); id <= m.nextID && len(claimed) < batchSize; id++ {
		email, exists := m.emails[id]
		if !exists {
			continue
		}
		due := email.Status == "pending" && !email.NextAttemptAt.After(now)
		stale := email.Status == "processing" && !email.NextAttemptAt.After(now.Add(-staleAfter))
		if !due && !stale {
			continue
		}
		email.Status = "processing"
		email.Attempts++
		email.NextAttemptAt = now
		copied := *email
		claimed = append(claimed, &copied)
	}
	return claimed, nil
}

func (m *mockOutboxRepository) MarkSent(ctx context.Context, id int64) error {
	email, exists := m.emails[id]
	if !exists {
		return errors.New("outbox email not found")
	}
	sentAt := m.now()
	email.Status = "sent"
	email.SentAt = &sentAt
	email.LastError = ""
	return nil
}

func (m *mockOutboxRepository) MarkFailed(ctx context.Context, id int64, retryAfter time.Duration, cause string) error {
	email, exists := m.emails[id]
	if !exists {
		return errors.New("outbox email not found")
	}
	email.Status = "pending"
	email.NextAttemptAt = m.now().Add(retryAfter)
	email.LastError = cause
	return nil
}
