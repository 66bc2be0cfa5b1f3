package domain

import (
	"time"

	"github.com/google/uuid"
)

// Adoption form approval states
const (
	AdoptionStatusPending  = "Pending"
	AdoptionStatusApproved = "Approved"
)

// AdoptionForm is a pet adoption listing submitted by a user and published
// once an admin approves it.
type AdoptionForm struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	PetName     string    `json:"pet_name" db:"pet_name"`
	PetType     string    `json:"pet_type" db:"pet_type"`
	Breed       string    `json:"breed" db:"breed"`
	AgeMonths   int       `json:"age_months" db:"age_months"`
	Description string    `json:"description" db:"description"`
	Images      []string  `json:"images" db:"images"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
