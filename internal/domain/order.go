package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is created once per successful checkout and is immutable afterwards.
type Order struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	FirstName     string      `json:"first_name" db:"first_name"`
	LastName      string      `json:"last_name" db:"last_name"`
	Email         string      `json:"email" db:"email"`
	Street        string      `json:"street" db:"street"`
	City          string      `json:"city" db:"city"`
	State         string      `json:"state" db:"state"`
	Zipcode       string      `json:"zipcode" db:"zipcode"`
	Country       string      `json:"country" db:"country"`
	Phone         string      `json:"phone" db:"phone"`
	PaymentStatus string      `json:"payment_status" db:"payment_status"`
	TotalPrice    float64     `json:"total_price" db:"total_price"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	Items         []OrderItem `json:"items"`
}

// OrderItem is a single order line with the price snapshotted at checkout time.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Price     float64   `json:"price" db:"price"`
}
