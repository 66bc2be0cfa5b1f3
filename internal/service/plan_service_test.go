package service

import (
	"context"
	"testing"
	"time"

	"furliva/internal/domain"

	"github.com/google/uuid"
)

func newPlanFixture(now time.Time) (*planService, *mockSubscriptionRepository, *mockUserPlanRepository) {
	subs := newMockSubscriptionRepository()
	userPlans := newMockUserPlanRepository()
	svc := &planService{
		subscriptionRepo: subs,
		userPlanRepo:     userPlans,
		productRepo:      newMockProductRepository(),
		now:              func() time.Time { return now },
	}
	return svc, subs, userPlans
}

// Plans the caller holds an active assignment for are flagged; the rest are not
func TestListPlans_AnnotatesSubscribedPlans(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, subs, userPlans := newPlanFixture(now)
	userID := uuid.New()

	held := &domain.Subscription{ID: uuid.New(), Name: "Gold"}
	other := &domain.Subscription{ID: uuid.New(), Name: "Basic"}
	subs.subs[held.ID] = held
	subs.subs[other.ID] = other

	future := now.AddDate(0, 1, 0)
	userPlans.plans[uuid.New()] = &domain.UserPlan{
		ID: uuid.New(), UserID: userID, SubscriptionID: held.ID, StartDate: now.AddDate(0, -1, 0), ExpiryDate: &future,
	}

	plans, err := svc.ListPlans(context.Background(), &userID)
	if err != nil {
		t.Fatalf("list plans failed: %v", err)
	}

	flags := map[uuid.UUID]bool{}
	for _, plan := range plans {
		flags[plan.ID] = plan.IsSubscribed
	}
	if !flags[held.ID] {
		t.Error("held plan not flagged as subscribed")
	}
	if flags[other.ID] {
		t.Error("unheld plan flagged as subscribed")
	}
}

// An assignment expiring exactly now still counts as subscribed; one that
// expired a moment earlier does not.
func TestListPlans_ExpiryBoundaryIsInclusive(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, subs, userPlans := newPlanFixture(now)
	userID := uuid.New()

	atBoundary := &domain.Subscription{ID: uuid.New(), Name: "Boundary"}
	justExpired := &domain.Subscription{ID: uuid.New(), Name: "Expired"}
	subs.subs[atBoundary.ID] = atBoundary
	subs.subs[justExpired.ID] = justExpired

	boundary := now
	earlier := now.Add(-time.Second)
	userPlans.plans[uuid.New()] = &domain.UserPlan{
		ID: uuid.New(), UserID: userID, SubscriptionID: atBoundary.ID, ExpiryDate: &boundary,
	}
	userPlans.plans[uuid.New()] = &domain.UserPlan{
		ID: uuid.New(), UserID: userID, SubscriptionID: justExpired.ID, ExpiryDate: &earlier,
	}

	plans, err := svc.ListPlans(context.Background(), &userID)
	if err != nil {
		t.Fatalf("list plans failed: %v", err)
	}

	for _, plan := range plans {
		switch plan.ID {
		case atBoundary.ID:
			if !plan.IsSubscribed {
				t.Error("plan expiring exactly now should count as subscribed")
			}
		case justExpired.ID:
			if plan.IsSubscribed {
				t.Error("plan that expired before now should not count as subscribed")
			}
		}
	}
}

// Anonymous callers get the catalog with no annotations set
func TestListPlans_AnonymousCallerGetsNoFlags(t *testing.T) {
	now := time.Now()
	svc, subs, _ := newPlanFixture(now)
	subs.subs[uuid.New()] = &domain.Subscription{ID: uuid.New(), Name: "Gold"}

	plans, err := svc.ListPlans(context.Background(), nil)
	if err != nil {
		t.Fatalf("list plans failed: %v", err)
	}
	for _, plan := range plans {
		if plan.IsSubscribed {
			t.Error("anonymous listing carried a subscribed flag")
		}
	}
}

// A null expiry means the plan never expires
func TestListUserPlans_NullExpiryAlwaysActive(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, subs, userPlans := newPlanFixture(now)
	userID := uuid.New()

	sub := &domain.Subscription{ID: uuid.New(), Name: "Lifetime"}
	subs.subs[sub.ID] = sub
	userPlans.plans[uuid.New()] = &domain.UserPlan{
		ID: uuid.New(), UserID: userID, SubscriptionID: sub.ID, StartDate: now.AddDate(-5, 0, 0), ExpiryDate: nil,
	}

	details, err := svc.ListUserPlans(context.Background(), userID)
	if err != nil {
		t.Fatalf("list user plans failed: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected one active plan, got %d", len(details))
	}
	if details[0].Subscription == nil || details[0].Subscription.ID != sub.ID {
		t.Error("subscription detail not attached")
	}
}

// Unknown filter values fall back to listing everyone
func TestListSubscribers_UnknownFilterListsAll(t *testing.T) {
	now := time.Now()
	svc, _, userPlans := newPlanFixture(now)

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	userPlans.plans[uuid.New()] = &domain.UserPlan{ID: uuid.New(), UserID: uuid.New(), SubscriptionID: uuid.New(), ExpiryDate: &past}
	userPlans.plans[uuid.New()] = &domain.UserPlan{ID: uuid.New(), UserID: uuid.New(), SubscriptionID: uuid.New(), ExpiryDate: &future}

	subscribers, err := svc.ListSubscribers(context.Background(), "whatever")
	if err != nil {
		t.Fatalf("list subscribers failed: %v", err)
	}
	if len(subscribers) != 2 {
		t.Errorf("expected 2 subscribers for unknown filter, got %d", len(subscribers))
	}

	active, err := svc.ListSubscribers(context.Background(), domain.SubscriberFilterActive)
	if err != nil {
		t.Fatalf("list active subscribers failed: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("expected 1 active subscriber, got %d", len(active))
	}
}
