package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"furliva/internal/domain"
	"furliva/internal/payment"
	"furliva/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidPlan is returned when a subscribe request is missing required
	// fields or carries a non-numeric or non-positive price.
	ErrInvalidPlan = errors.New("invalid plan data")
)

// PlanInput carries the fields of a subscription plan create/update
type PlanInput struct {
	Name          string
	Price         float64
	TimeFrameDays int
	AutoRenew     bool
	Features      []string
	ProductIDs    []uuid.UUID
}

// SubscribePlan is the plan snapshot a subscribe request carries. Price
// arrives as a raw JSON value so non-numeric payloads can be rejected
// explicitly instead of failing at decode time.
type SubscribePlan struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Price         json.Number `json:"price"`
	TimeFrameDays int         `json:"time_frame_days"`
	AutoRenew     bool        `json:"auto_renew"`
}

// SubscriptionService manages the plan lifecycle: admin CRUD, purchase via
// the payment provider, cancellation, and webhook reconciliation.
type SubscriptionService interface {
	CreatePlan(ctx context.Context, input PlanInput) (*domain.Subscription, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, input PlanInput) (*domain.Subscription, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error
	// Subscribe validates the request and creates a payment session for the
	// plan. No plan assignment is written here; that happens when the
	// provider confirms completion via CompleteSubscription.
	Subscribe(ctx context.Context, userID uuid.UUID, user payment.UserData, plan SubscribePlan) (sessionID string, err error)
	// CancelPlan removes a plan assignment held by the user
	CancelPlan(ctx context.Context, id uuid.UUID) error
	// CompleteSubscription reconciles a completed payment session into a
	// plan assignment.
	CompleteSubscription(ctx context.Context, md *payment.SessionMetadata) (*domain.UserPlan, error)
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	userPlanRepo     repository.UserPlanRepository
	payments         payment.Client
	logger           *zap.Logger
	now              func() time.Time
}

// NewSubscriptionService creates a new instance of SubscriptionService
func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	userPlanRepo repository.UserPlanRepository,
	payments payment.Client,
	logger *zap.Logger,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		userPlanRepo:     userPlanRepo,
		payments:         payments,
		logger:           logger,
		now:              time.Now,
	}
}

// CreatePlan creates a subscription plan with its product group
func (s *subscriptionService) CreatePlan(ctx context.Context, input PlanInput) (*domain.Subscription, error) {
	sub := &domain.Subscription{
		ID:            uuid.New(),
		Name:          input.Name,
		Price:         input.Price,
		TimeFrameDays: input.TimeFrameDays,
		AutoRenew:     input.AutoRenew,
		Features:      input.Features,
		CreatedAt:     s.now(),
		UpdatedAt:     s.now(),
	}
	if sub.Features == nil {
		sub.Features = []string{}
	}

	if err := s.subscriptionRepo.Create(ctx, sub, input.ProductIDs); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	return sub, nil
}

// UpdatePlan updates a subscription plan and replaces its product group
func (s *subscriptionService) UpdatePlan(ctx context.Context, id uuid.UUID, input PlanInput) (*domain.Subscription, error) {
	sub := &domain.Subscription{
		ID:            id,
		Name:          input.Name,
		Price:         input.Price,
		TimeFrameDays: input.TimeFrameDays,
		AutoRenew:     input.AutoRenew,
		Features:      input.Features,
		UpdatedAt:     s.now(),
	}
	if sub.Features == nil {
		sub.Features = []string{}
	}

	if err := s.subscriptionRepo.Update(ctx, sub, input.ProductIDs); err != nil {
		return nil, err
	}

	return sub, nil
}

// DeletePlan removes a subscription plan
func (s *subscriptionService) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.subscriptionRepo.Delete(ctx, id)
}

// Subscribe validates the plan snapshot and opens a payment session. The
// provider being unconfigured surfaces as payment.ErrDisabled.
func (s *subscriptionService) Subscribe(ctx context.Context, userID uuid.UUID, user payment.UserData, plan SubscribePlan) (string, error) {
	if user.Email == "" || plan.Name == "" {
		return "", ErrInvalidPlan
	}

	price, err := plan.Price.Float64()
	if err != nil {
		return "", fmt.Errorf("%w: price is not numeric", ErrInvalidPlan)
	}
	if price <= 0 {
		return "", fmt.Errorf("%w: price must be positive", ErrInvalidPlan)
	}

	sessionID, err := s.payments.CreatePlanSession(ctx, payment.SessionRequest{
		PlanName: plan.Name,
		Price:    price,
		Email:    user.Email,
		Metadata: payment.SessionMetadata{
			PlanID:       plan.ID,
			UserID:       userID,
			DurationDays: plan.TimeFrameDays,
			AutoRenew:    plan.AutoRenew,
			UserData:     user,
		},
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("Checkout session created",
		zap.String("plan", plan.Name),
		zap.String("user_id", userID.String()),
	)

	return sessionID, nil
}

// CancelPlan removes the plan assignment. A missing id surfaces as
// repository.ErrUserPlanNotFound.
func (s *subscriptionService) CancelPlan(ctx context.Context, id uuid.UUID) error {
	return s.userPlanRepo.Delete(ctx, id)
}

// CompleteSubscription creates the plan assignment from reconciled session
// metadata. A non-positive duration yields a plan that never expires.
func (s *subscriptionService) CompleteSubscription(ctx context.Context, md *payment.SessionMetadata) (*domain.UserPlan, error) {
	start := s.now()

	var expiry *time.Time
	if md.DurationDays > 0 {
		e := start.AddDate(0, 0, md.DurationDays)
		expiry = &e
	}

	plan := &domain.UserPlan{
		ID:             uuid.New(),
		UserID:         md.UserID,
		SubscriptionID: md.PlanID,
		StartDate:      start,
		ExpiryDate:     expiry,
		AutoRenew:      md.AutoRenew,
		CreatedAt:      start,
	}

	if err := s.userPlanRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to record plan assignment: %w", err)
	}

	s.logger.Info("Subscription completed",
		zap.String("user_id", md.UserID.String()),
		zap.String("plan_id", md.PlanID.String()),
	)

	return plan, nil
}
