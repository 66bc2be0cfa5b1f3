package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"furliva/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// SubscriptionRepository defines the interface for subscription plan data access
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription, productIDs []uuid.UUID) error
	Update(ctx context.Context, sub *domain.Subscription, productIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)
	FindByIDWithProducts(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)
	List(ctx context.Context) ([]*domain.Subscription, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Subscription, error)
}

type subscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new instance of SubscriptionRepository
func NewSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create inserts a new subscription plan and its product group in one transaction
func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription, productIDs []uuid.UUID) error {
	features, err := json.Marshal(sub.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO subscriptions (id, name, price, time_frame_days, auto_renew, features, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		sub.ID,
		sub.Name,
		sub.Price,
		sub.TimeFrameDays,
		sub.AutoRenew,
		features,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := replaceProductGroup(ctx, tx, sub.ID, productIDs); err != nil {
		return err
	}

	return tx.Commit()
}

// Update updates a subscription plan and replaces its product group
func (r *subscriptionRepository) Update(ctx context.Context, sub *domain.Subscription, productIDs []uuid.UUID) error {
	features, err := json.Marshal(sub.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE subscriptions
		SET name = $2, price = $3, time_frame_days = $4, auto_renew = $5, features = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		sub.ID,
		sub.Name,
		sub.Price,
		sub.TimeFrameDays,
		sub.AutoRenew,
		features,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSubscriptionNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM subscription_products WHERE subscription_id = $1`, sub.ID); err != nil {
		return fmt.Errorf("failed to clear product group: %w", err)
	}
	if err := replaceProductGroup(ctx, tx, sub.ID, productIDs); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a subscription plan
func (r *subscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

// FindByID retrieves a subscription plan without its product group
func (r *subscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT id, name, price, time_frame_days, auto_renew, features, created_at, updated_at
		FROM subscriptions
		WHERE id = $1
	`

	sub, err := scanSubscription(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to find subscription by ID: %w", err)
	}

	return sub, nil
}

// FindByIDWithProducts retrieves a subscription plan with its product group
// expanded to full product documents
func (r *subscriptionRepository) FindByIDWithProducts(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	sub, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT p.id, p.name, p.category, p.subcategory, p.description, p.price, p.quantity, p.image_url, p.created_at, p.updated_at
		FROM products p
		JOIN subscription_products sp ON sp.product_id = p.id
		WHERE sp.subscription_id = $1
		ORDER BY p.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product group: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	sub.Products = products
	return sub, nil
}

// List retrieves all subscription plans
func (r *subscriptionRepository) List(ctx context.Context) ([]*domain.Subscription, error) {
	query := `
		SELECT id, name, price, time_frame_days, auto_renew, features, created_at, updated_at
		FROM subscriptions
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// FindByIDs retrieves the subscription plans matching the given set of ids
func (r *subscriptionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Subscription, error) {
	if len(ids) == 0 {
		return []*domain.Subscription{}, nil
	}

	// Build an IN clause with one placeholder per id
	placeholders := ""
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, name, price, time_frame_days, auto_renew, features, created_at, updated_at
		FROM subscriptions
		WHERE id IN (%s)
	`, placeholders)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find subscriptions by ids: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

func replaceProductGroup(ctx context.Context, tx *sql.Tx, subID uuid.UUID, productIDs []uuid.UUID) error {
	for _, productID := range productIDs {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO subscription_products (subscription_id, product_id) VALUES ($1, $2)`,
			subID,
			productID,
		)
		if err != nil {
			return fmt.Errorf("failed to attach product to subscription: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	sub := &domain.Subscription{}
	var features []byte

	err := row.Scan(
		&sub.ID,
		&sub.Name,
		&sub.Price,
		&sub.TimeFrameDays,
		&sub.AutoRenew,
		&features,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(features, &sub.Features); err != nil {
		return nil, fmt.Errorf("failed to unmarshal features: %w", err)
	}

	return sub, nil
}

func scanSubscriptions(rows *sql.Rows) ([]*domain.Subscription, error) {
	subs := []*domain.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subs, nil
}
