package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a store product with a non-negative stock counter.
// Quantity is only ever mutated through the checkout workflow.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Category    string    `json:"category" db:"category"`
	Subcategory string    `json:"subcategory" db:"subcategory"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Quantity    int       `json:"quantity" db:"quantity"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Sale is a time-bounded storewide discount. At most one sale is expected
// to be active at a time; overlapping sales are not reconciled.
type Sale struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	IsActive           bool      `json:"is_active" db:"is_active"`
	StartDate          time.Time `json:"start_date" db:"start_date"`
	EndDate            time.Time `json:"end_date" db:"end_date"`
	DiscountPercentage float64   `json:"discount_percentage" db:"discount_percentage"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}
