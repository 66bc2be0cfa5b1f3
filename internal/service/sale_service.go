package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"furliva/internal/domain"
	"furliva/internal/repository"

	"github.com/google/uuid"
)

// ErrInvalidSaleWindow is returned when a sale's end precedes its start
var ErrInvalidSaleWindow = errors.New("sale end date must not precede start date")

// SaleInput carries the fields of a sale create/update
type SaleInput struct {
	IsActive           bool
	StartDate          time.Time
	EndDate            time.Time
	DiscountPercentage float64
}

// SaleService manages storewide sales
type SaleService interface {
	Create(ctx context.Context, input SaleInput) (*domain.Sale, error)
	Update(ctx context.Context, id uuid.UUID, input SaleInput) (*domain.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Sale, error)
	// Active returns the currently running sale, or nil when none is live
	Active(ctx context.Context) (*domain.Sale, error)
}

type saleService struct {
	saleRepo repository.SaleRepository
	now      func() time.Time
}

// NewSaleService creates a new instance of SaleService
func NewSaleService(saleRepo repository.SaleRepository) SaleService {
	return &saleService{saleRepo: saleRepo, now: time.Now}
}

func (s *saleService) Create(ctx context.Context, input SaleInput) (*domain.Sale, error) {
	if input.EndDate.Before(input.StartDate) {
		return nil, ErrInvalidSaleWindow
	}

	sale := &domain.Sale{
		ID:                 uuid.New(),
		IsActive:           input.IsActive,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		DiscountPercentage: input.DiscountPercentage,
		CreatedAt:          s.now(),
	}

	if err := s.saleRepo.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	return sale, nil
}

func (s *saleService) Update(ctx context.Context, id uuid.UUID, input SaleInput) (*domain.Sale, error) {
	if input.EndDate.Before(input.StartDate) {
		return nil, ErrInvalidSaleWindow
	}

	sale := &domain.Sale{
		ID:                 id,
		IsActive:           input.IsActive,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		DiscountPercentage: input.DiscountPercentage,
	}

	if err := s.saleRepo.Update(ctx, sale); err != nil {
		return nil, err
	}

	return sale, nil
}

func (s *saleService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.saleRepo.Delete(ctx, id)
}

func (s *saleService) List(ctx context.Context) ([]*domain.Sale, error) {
	return s.saleRepo.List(ctx)
}

// Active returns the live sale. The not-found case is mapped to a nil sale
// so callers can treat "no sale" as a normal state.
func (s *saleService) Active(ctx context.Context) (*domain.Sale, error) {
	sale, err := s.saleRepo.FindActive(ctx, s.now())
	if err != nil {
		if err == repository.ErrSaleNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active sale: %w", err)
	}
	return sale, nil
}
