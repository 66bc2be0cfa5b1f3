package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"furliva/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrUserPlanNotFound = errors.New("user plan not found")
)

// UserPlanRepository defines the interface for plan assignment data access
type UserPlanRepository interface {
	Create(ctx context.Context, plan *domain.UserPlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserPlan, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.UserPlan, error)
	ListExpiring(ctx context.Context, from, to time.Time) ([]*domain.UserPlan, error)
	ListSubscribers(ctx context.Context, filter string, now time.Time) ([]*domain.Subscriber, error)
}

type userPlanRepository struct {
	db *sql.DB
}

// NewUserPlanRepository creates a new instance of UserPlanRepository
func NewUserPlanRepository(db *sql.DB) UserPlanRepository {
	return &userPlanRepository{db: db}
}

// Create inserts a new plan assignment using parameterized queries
func (r *userPlanRepository) Create(ctx context.Context, plan *domain.UserPlan) error {
	query := `
		INSERT INTO user_plans (id, user_id, subscription_id, start_date, expiry_date, auto_renew, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		plan.ID,
		plan.UserID,
		plan.SubscriptionID,
		plan.StartDate,
		plan.ExpiryDate,
		plan.AutoRenew,
		plan.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user plan: %w", err)
	}

	return nil
}

// Delete removes a plan assignment. A missing id is reported as not found
// rather than silently succeeding.
func (r *userPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user plan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserPlanNotFound
	}

	return nil
}

// ListByUser retrieves every plan assignment held by a user
func (r *userPlanRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserPlan, error) {
	query := `
		SELECT id, user_id, subscription_id, start_date, expiry_date, auto_renew, created_at
		FROM user_plans
		WHERE user_id = $1
		ORDER BY start_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user plans: %w", err)
	}
	defer rows.Close()

	return scanUserPlans(rows)
}

// ListActiveByUser retrieves the user's plan assignments whose expiry is
// null or >= now. The boundary is inclusive.
func (r *userPlanRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.UserPlan, error) {
	query := `
		SELECT id, user_id, subscription_id, start_date, expiry_date, auto_renew, created_at
		FROM user_plans
		WHERE user_id = $1 AND (expiry_date IS NULL OR expiry_date >= $2)
		ORDER BY start_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active user plans: %w", err)
	}
	defer rows.Close()

	return scanUserPlans(rows)
}

// ListExpiring retrieves auto-renewing plans whose expiry falls in [from, to)
func (r *userPlanRepository) ListExpiring(ctx context.Context, from, to time.Time) ([]*domain.UserPlan, error) {
	query := `
		SELECT id, user_id, subscription_id, start_date, expiry_date, auto_renew, created_at
		FROM user_plans
		WHERE expiry_date >= $1 AND expiry_date < $2 AND auto_renew = TRUE
	`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring user plans: %w", err)
	}
	defer rows.Close()

	return scanUserPlans(rows)
}

// ListSubscribers retrieves plan assignments joined with the subscription
// name and user identity, filtered by Active/Expired/all and sorted by
// start date descending.
func (r *userPlanRepository) ListSubscribers(ctx context.Context, filter string, now time.Time) ([]*domain.Subscriber, error) {
	whereClause := ""
	args := []interface{}{}

	switch filter {
	case domain.SubscriberFilterActive:
		whereClause = "WHERE (up.expiry_date IS NULL OR up.expiry_date >= $1)"
		args = append(args, now)
	case domain.SubscriberFilterExpired:
		whereClause = "WHERE up.expiry_date < $1"
		args = append(args, now)
	}

	query := fmt.Sprintf(`
		SELECT up.id, s.name, u.name, u.email, up.start_date, up.expiry_date, up.auto_renew
		FROM user_plans up
		JOIN subscriptions s ON s.id = up.subscription_id
		JOIN users u ON u.id = up.user_id
		%s
		ORDER BY up.start_date DESC
	`, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := []*domain.Subscriber{}
	for rows.Next() {
		sub := &domain.Subscriber{}
		err := rows.Scan(
			&sub.PlanID,
			&sub.SubscriptionName,
			&sub.UserName,
			&sub.UserEmail,
			&sub.StartDate,
			&sub.ExpiryDate,
			&sub.AutoRenew,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subscribers = append(subscribers, sub)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscribers: %w", err)
	}

	return subscribers, nil
}

func scanUserPlans(rows *sql.Rows) ([]*domain.UserPlan, error) {
	plans := []*domain.UserPlan{}
	for rows.Next() {
		plan := &domain.UserPlan{}
		err := rows.Scan(
			&plan.ID,
			&plan.UserID,
			&plan.SubscriptionID,
			&plan.StartDate,
			&plan.ExpiryDate,
			&plan.AutoRenew,
			&plan.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user plan: %w", err)
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user plans: %w", err)
	}

	return plans, nil
}
