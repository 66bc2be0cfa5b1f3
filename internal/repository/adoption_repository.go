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
	ErrAdoptionFormNotFound = errors.New("adoption form not found")
)

// AdoptionRepository defines the interface for adoption form data access
type AdoptionRepository interface {
	Create(ctx context.Context, form *domain.AdoptionForm) error
	List(ctx context.Context) ([]*domain.AdoptionForm, error)
	ListByStatus(ctx context.Context, status string) ([]*domain.AdoptionForm, error)
	ListByEmail(ctx context.Context, email string) ([]*domain.AdoptionForm, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type adoptionRepository struct {
	db *sql.DB
}

// NewAdoptionRepository creates a new instance of AdoptionRepository
func NewAdoptionRepository(db *sql.DB) AdoptionRepository {
	return &adoptionRepository{db: db}
}

// Create inserts a new adoption form using parameterized queries
func (r *adoptionRepository) Create(ctx context.Context, form *domain.AdoptionForm) error {
	images, err := json.Marshal(form.Images)
	if err != nil {
		return fmt.Errorf("failed to marshal images: %w", err)
	}

	query := `
		INSERT INTO adoption_forms (id, email, pet_name, pet_type, breed, age_months, description, images, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		form.ID,
		form.Email,
		form.PetName,
		form.PetType,
		form.Breed,
		form.AgeMonths,
		form.Description,
		images,
		form.Status,
		form.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create adoption form: %w", err)
	}

	return nil
}

// List retrieves all adoption forms, newest first
func (r *adoptionRepository) List(ctx context.Context) ([]*domain.AdoptionForm, error) {
	return r.query(ctx, "", nil)
}

// ListByStatus retrieves adoption forms with the given approval status
func (r *adoptionRepository) ListByStatus(ctx context.Context, status string) ([]*domain.AdoptionForm, error) {
	return r.query(ctx, "WHERE status = $1", []interface{}{status})
}

// ListByEmail retrieves adoption forms submitted by the given email
func (r *adoptionRepository) ListByEmail(ctx context.Context, email string) ([]*domain.AdoptionForm, error) {
	return r.query(ctx, "WHERE email = $1", []interface{}{email})
}

// UpdateStatus sets the approval status of an adoption form
func (r *adoptionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE adoption_forms SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update adoption form status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAdoptionFormNotFound
	}

	return nil
}

// Delete removes an adoption form (unpublish)
func (r *adoptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM adoption_forms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete adoption form: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAdoptionFormNotFound
	}

	return nil
}

func (r *adoptionRepository) query(ctx context.Context, whereClause string, args []interface{}) ([]*domain.AdoptionForm, error) {
	query := fmt.Sprintf(`
		SELECT id, email, pet_name, pet_type, breed, age_months, description, images, status, created_at
		FROM adoption_forms
		%s
		ORDER BY created_at DESC
	`, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list adoption forms: %w", err)
	}
	defer rows.Close()

	forms := []*domain.AdoptionForm{}
	for rows.Next() {
		form := &domain.AdoptionForm{}
		var images []byte
		err := rows.Scan(
			&form.ID,
			&form.Email,
			&form.PetName,
			&form.PetType,
			&form.Breed,
			&form.AgeMonths,
			&form.Description,
			&images,
			&form.Status,
			&form.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adoption form: %w", err)
		}
		if err := json.Unmarshal(images, &form.Images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal images: %w", err)
		}
		forms = append(forms, form)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating adoption forms: %w", err)
	}

	return forms, nil
}
