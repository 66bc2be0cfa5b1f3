package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"furliva/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// CreateWithItems persists an order with its line items, decrements the
	// stock of every ordered product, and optionally enqueues a confirmation
	// email, all inside a single transaction. Stock decrements are guarded:
	// a line that would drive a product's quantity below zero fails the whole
	// transaction with ErrInsufficientStock, leaving no partial writes.
	CreateWithItems(ctx context.Context, order *domain.Order, email *domain.OutboxEmail) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
}

type orderRepository struct {
	db     *sql.DB
	outbox OutboxRepository
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB, outbox OutboxRepository) OrderRepository {
	return &orderRepository{db: db, outbox: outbox}
}

// CreateWithItems implements the atomic checkout write path
func (r *orderRepository) CreateWithItems(ctx context.Context, order *domain.Order, email *domain.OutboxEmail) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (id, first_name, last_name, email, street, city, state, zipcode, country, phone, payment_status, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = tx.ExecContext(
		ctx,
		orderQuery,
		order.ID,
		order.FirstName,
		order.LastName,
		order.Email,
		order.Street,
		order.City,
		order.State,
		order.Zipcode,
		order.Country,
		order.Phone,
		order.PaymentStatus,
		order.TotalPrice,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	// Conditional decrement: the quantity guard makes concurrent checkouts
	// against the same product serialize on the row and reject oversells.
	stockQuery := `
		UPDATE products
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
	`

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, itemQuery, item.ID, order.ID, item.ProductID, item.Name, item.Quantity, item.Price)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}

		result, err := tx.ExecContext(ctx, stockQuery, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrInsufficientStock
		}
	}

	if email != nil {
		if err := r.outbox.EnqueueTx(ctx, tx, email); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindByID retrieves an order with its line items
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, first_name, last_name, email, street, city, state, zipcode, country, phone, payment_status, total_price, created_at
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.FirstName,
		&order.LastName,
		&order.Email,
		&order.Street,
		&order.City,
		&order.State,
		&order.Zipcode,
		&order.Country,
		&order.Phone,
		&order.PaymentStatus,
		&order.TotalPrice,
		&order.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, name, quantity, price
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := r.db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := domain.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, nil
}

// List retrieves all orders, newest first, without line items
func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT id, first_name, last_name, email, street, city, state, zipcode, country, phone, payment_status, total_price, created_at
		FROM orders
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.ID,
			&order.FirstName,
			&order.LastName,
			&order.Email,
			&order.Street,
			&order.City,
			&order.State,
			&order.Zipcode,
			&order.Country,
			&order.Phone,
			&order.PaymentStatus,
			&order.TotalPrice,
			&order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}
