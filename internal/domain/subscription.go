package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is a purchasable plan with a feature list and an optional
// group of products the plan gives access to.
type Subscription struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Price         float64    `json:"price" db:"price"`
	TimeFrameDays int        `json:"time_frame_days" db:"time_frame_days"`
	AutoRenew     bool       `json:"auto_renew" db:"auto_renew"`
	Features      []string   `json:"features" db:"features"`
	Products      []*Product `json:"products,omitempty"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// AnnotatedSubscription is a Subscription with the per-user subscription flag
// used by the plan catalog listing.
type AnnotatedSubscription struct {
	Subscription
	IsSubscribed bool `json:"isSubscribed"`
}

// UserPlan records a user holding a plan. A nil ExpiryDate means the plan
// never expires. The plan is active while ExpiryDate is nil or >= now.
type UserPlan struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	SubscriptionID uuid.UUID  `json:"subscription_id" db:"subscription_id"`
	StartDate      time.Time  `json:"start_date" db:"start_date"`
	ExpiryDate     *time.Time `json:"expiry_date" db:"expiry_date"`
	AutoRenew      bool       `json:"auto_renew" db:"auto_renew"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// Active reports whether the plan is valid at the given instant.
// The expiry boundary is inclusive.
func (p *UserPlan) Active(now time.Time) bool {
	return p.ExpiryDate == nil || !p.ExpiryDate.Before(now)
}

// Subscriber is the projection returned by the subscriber listing: the plan
// assignment joined with the subscription name and the owner's identity.
type Subscriber struct {
	PlanID           uuid.UUID  `json:"plan_id"`
	SubscriptionName string     `json:"subscription_name"`
	UserName         string     `json:"user_name"`
	UserEmail        string     `json:"user_email"`
	StartDate        time.Time  `json:"start_date"`
	ExpiryDate       *time.Time `json:"expiry_date"`
	AutoRenew        bool       `json:"auto_renew"`
}

// Subscriber listing filters
const (
	SubscriberFilterActive  = "Active"
	SubscriberFilterExpired = "Expired"
	SubscriberFilterAll     = "all"
)
