package service

import (
	"context"
	"fmt"
	"time"

	"furliva/internal/domain"
	"furliva/internal/repository"

	"github.com/google/uuid"
)

// UserPlanDetail is a plan assignment expanded with its subscription plan,
// returned by the per-user plan listing.
type UserPlanDetail struct {
	domain.UserPlan
	Subscription *domain.Subscription `json:"subscription,omitempty"`
}

// PlanService exposes the plan catalog: the public plan listing annotated
// per caller, single-plan detail, the admin subscriber listing, and the
// caller's own active plans.
type PlanService interface {
	// ListPlans returns every plan. When userID is non-nil each plan carries
	// an isSubscribed flag reflecting whether the caller holds an active
	// assignment for it.
	ListPlans(ctx context.Context, userID *uuid.UUID) ([]*domain.AnnotatedSubscription, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)
	ListSubscribers(ctx context.Context, filter string) ([]*domain.Subscriber, error)
	ListUserPlans(ctx context.Context, userID uuid.UUID) ([]*UserPlanDetail, error)
	ListPlanProducts(ctx context.Context) ([]*repository.ProductSummary, error)
}

type planService struct {
	subscriptionRepo repository.SubscriptionRepository
	userPlanRepo     repository.UserPlanRepository
	productRepo      repository.ProductRepository
	now              func() time.Time
}

// NewPlanService creates a new instance of PlanService
func NewPlanService(
	subscriptionRepo repository.SubscriptionRepository,
	userPlanRepo repository.UserPlanRepository,
	productRepo repository.ProductRepository,
) PlanService {
	return &planService{
		subscriptionRepo: subscriptionRepo,
		userPlanRepo:     userPlanRepo,
		productRepo:      productRepo,
		now:              time.Now,
	}
}

// ListPlans returns the catalog with per-caller subscription annotations
func (s *planService) ListPlans(ctx context.Context, userID *uuid.UUID) ([]*domain.AnnotatedSubscription, error) {
	plans, err := s.subscriptionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	subscribed := map[uuid.UUID]bool{}
	if userID != nil {
		active, err := s.userPlanRepo.ListActiveByUser(ctx, *userID, s.now())
		if err != nil {
			return nil, fmt.Errorf("failed to list active plans: %w", err)
		}
		for _, plan := range active {
			subscribed[plan.SubscriptionID] = true
		}
	}

	annotated := make([]*domain.AnnotatedSubscription, 0, len(plans))
	for _, plan := range plans {
		annotated = append(annotated, &domain.AnnotatedSubscription{
			Subscription: *plan,
			IsSubscribed: subscribed[plan.ID],
		})
	}

	return annotated, nil
}

// GetPlan returns a single plan with its product group expanded
func (s *planService) GetPlan(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	plan, err := s.subscriptionRepo.FindByIDWithProducts(ctx, id)
	if err != nil {
		if err == repository.ErrSubscriptionNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return plan, nil
}

// ListSubscribers returns plan assignments joined with user identity,
// filtered by Active/Expired/all.
func (s *planService) ListSubscribers(ctx context.Context, filter string) ([]*domain.Subscriber, error) {
	switch filter {
	case domain.SubscriberFilterActive, domain.SubscriberFilterExpired, domain.SubscriberFilterAll, "":
	default:
		// Unknown filters behave like "all" rather than erroring
		filter = domain.SubscriberFilterAll
	}

	subscribers, err := s.userPlanRepo.ListSubscribers(ctx, filter, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return subscribers, nil
}

// ListUserPlans returns the caller's active plan assignments with each
// subscription plan attached. Assignments whose plan has since been deleted
// are returned without the subscription detail.
func (s *planService) ListUserPlans(ctx context.Context, userID uuid.UUID) ([]*UserPlanDetail, error) {
	plans, err := s.userPlanRepo.ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list user plans: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(plans))
	seen := map[uuid.UUID]bool{}
	for _, plan := range plans {
		if !seen[plan.SubscriptionID] {
			seen[plan.SubscriptionID] = true
			ids = append(ids, plan.SubscriptionID)
		}
	}

	subs, err := s.subscriptionRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	byID := map[uuid.UUID]*domain.Subscription{}
	for _, sub := range subs {
		byID[sub.ID] = sub
	}

	details := make([]*UserPlanDetail, 0, len(plans))
	for _, plan := range plans {
		details = append(details, &UserPlanDetail{
			UserPlan:     *plan,
			Subscription: byID[plan.SubscriptionID],
		})
	}

	return details, nil
}

// ListPlanProducts returns the product summaries for the admin plan builder
func (s *planService) ListPlanProducts(ctx context.Context) ([]*repository.ProductSummary, error) {
	summaries, err := s.productRepo.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan products: %w", err)
	}
	return summaries, nil
}
