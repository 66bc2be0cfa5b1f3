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
	ErrSaleNotFound = errors.New("sale not found")
)

// SaleRepository defines the interface for sale data access
type SaleRepository interface {
	Create(ctx context.Context, sale *domain.Sale) error
	Update(ctx context.Context, sale *domain.Sale) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Sale, error)
	// FindActive returns the sale that is flagged active and whose validity
	// window contains now. With overlapping active sales the most recently
	// created one wins.
	FindActive(ctx context.Context, now time.Time) (*domain.Sale, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

// Create inserts a new sale using parameterized queries
func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (id, is_active, start_date, end_date, discount_percentage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		sale.ID,
		sale.IsActive,
		sale.StartDate,
		sale.EndDate,
		sale.DiscountPercentage,
		sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	return nil
}

// Update updates an existing sale
func (r *saleRepository) Update(ctx context.Context, sale *domain.Sale) error {
	query := `
		UPDATE sales
		SET is_active = $2, start_date = $3, end_date = $4, discount_percentage = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		sale.ID,
		sale.IsActive,
		sale.StartDate,
		sale.EndDate,
		sale.DiscountPercentage,
	)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSaleNotFound
	}

	return nil
}

// Delete removes a sale
func (r *saleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSaleNotFound
	}

	return nil
}

// List retrieves all sales, newest first
func (r *saleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	query := `
		SELECT id, is_active, start_date, end_date, discount_percentage, created_at
		FROM sales
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []*domain.Sale{}
	for rows.Next() {
		sale := &domain.Sale{}
		err := rows.Scan(
			&sale.ID,
			&sale.IsActive,
			&sale.StartDate,
			&sale.EndDate,
			&sale.DiscountPercentage,
			&sale.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}

// FindActive retrieves the currently active sale
func (r *saleRepository) FindActive(ctx context.Context, now time.Time) (*domain.Sale, error) {
	query := `
		SELECT id, is_active, start_date, end_date, discount_percentage, created_at
		FROM sales
		WHERE is_active = TRUE AND start_date <= $1 AND end_date >= $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	sale := &domain.Sale{}
	err := r.db.QueryRowContext(ctx, query, now).Scan(
		&sale.ID,
		&sale.IsActive,
		&sale.StartDate,
		&sale.EndDate,
		&sale.DiscountPercentage,
		&sale.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find active sale: %w", err)
	}

	return sale, nil
}
