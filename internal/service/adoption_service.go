package service

import (
	"context"
	"fmt"
	"time"

	"furliva/internal/domain"
	"furliva/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdoptionInput carries the fields of a submitted adoption listing
type AdoptionInput struct {
	Email       string
	PetName     string
	PetType     string
	Breed       string
	AgeMonths   int
	Description string
	Images      []string
}

// AdoptionService manages pet adoption listings: public submission, the
// approved feed, per-user listings, and admin moderation.
type AdoptionService interface {
	Submit(ctx context.Context, input AdoptionInput) (*domain.AdoptionForm, error)
	// ListApproved returns the published feed
	ListApproved(ctx context.Context) ([]*domain.AdoptionForm, error)
	// ListAll returns every listing regardless of status (admin)
	ListAll(ctx context.Context) ([]*domain.AdoptionForm, error)
	// ListMine returns the listings submitted under the given email
	ListMine(ctx context.Context, email string) ([]*domain.AdoptionForm, error)
	// Approve publishes a pending listing
	Approve(ctx context.Context, id uuid.UUID) error
	// Remove deletes a listing
	Remove(ctx context.Context, id uuid.UUID) error
}

type adoptionService struct {
	adoptionRepo repository.AdoptionRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewAdoptionService creates a new instance of AdoptionService
func NewAdoptionService(adoptionRepo repository.AdoptionRepository, logger *zap.Logger) AdoptionService {
	return &adoptionService{
		adoptionRepo: adoptionRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Submit stores a new listing in the Pending state
func (s *adoptionService) Submit(ctx context.Context, input AdoptionInput) (*domain.AdoptionForm, error) {
	form := &domain.AdoptionForm{
		ID:          uuid.New(),
		Email:       input.Email,
		PetName:     input.PetName,
		PetType:     input.PetType,
		Breed:       input.Breed,
		AgeMonths:   input.AgeMonths,
		Description: input.Description,
		Images:      input.Images,
		Status:      domain.AdoptionStatusPending,
		CreatedAt:   s.now(),
	}
	if form.Images == nil {
		form.Images = []string{}
	}

	if err := s.adoptionRepo.Create(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to submit adoption form: %w", err)
	}

	s.logger.Info("Adoption form submitted",
		zap.String("id", form.ID.String()),
		zap.String("pet", form.PetName),
	)

	return form, nil
}

func (s *adoptionService) ListApproved(ctx context.Context) ([]*domain.AdoptionForm, error) {
	return s.adoptionRepo.ListByStatus(ctx, domain.AdoptionStatusApproved)
}

func (s *adoptionService) ListAll(ctx context.Context) ([]*domain.AdoptionForm, error) {
	return s.adoptionRepo.List(ctx)
}

func (s *adoptionService) ListMine(ctx context.Context, email string) ([]*domain.AdoptionForm, error) {
	return s.adoptionRepo.ListByEmail(ctx, email)
}

// Approve flips a listing to Approved, publishing it on the feed
func (s *adoptionService) Approve(ctx context.Context, id uuid.UUID) error {
	return s.adoptionRepo.UpdateStatus(ctx, id, domain.AdoptionStatusApproved)
}

// Remove deletes a listing
func (s *adoptionService) Remove(ctx context.Context, id uuid.UUID) error {
	return s.adoptionRepo.Delete(ctx, id)
}
