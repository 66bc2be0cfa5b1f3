package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"go.uber.org/zap"
)

var (
	// ErrDisabled is returned when no payment provider is configured.
	// Callers surface this as an explicit fallback instead of crashing.
	ErrDisabled = errors.New("payments are disabled: no provider configured")
	// ErrProvider wraps failures reported by the payment provider.
	ErrProvider = errors.New("payment provider error")
)

// SessionMetadata is the reconciliation blob carried through the checkout
// session. The webhook decodes it to create the plan assignment once the
// payment completes.
type SessionMetadata struct {
	PlanID       uuid.UUID `json:"planId"`
	UserID       uuid.UUID `json:"userId"`
	DurationDays int       `json:"duration"`
	AutoRenew    bool      `json:"autorenew"`
	UserData     UserData  `json:"userData"`
}

// UserData is the contact snapshot forwarded with the session
type UserData struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Zipcode   string `json:"zipcode"`
	Phone     string `json:"phone"`
}

// SessionRequest describes the checkout session to create for a plan purchase
type SessionRequest struct {
	PlanName string
	Price    float64
	Email    string
	Metadata SessionMetadata
}

// Client creates payment sessions for plan purchases
type Client interface {
	// Enabled reports whether the provider is configured. When false,
	// CreatePlanSession returns ErrDisabled without any external call.
	Enabled() bool
	CreatePlanSession(ctx context.Context, req SessionRequest) (sessionID string, err error)
}

// StripeClient implements Client against Stripe Checkout.
type StripeClient struct {
	secretKey   string
	frontendURL string
	logger      *zap.Logger
}

// NewStripeClient wires the Stripe API key. An empty key yields a disabled
// client rather than an error.
func NewStripeClient(secretKey, frontendURL string, logger *zap.Logger) *StripeClient {
	if secretKey != "" {
		stripe.Key = secretKey
		logger.Info("Stripe initialized")
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, subscribe will be disabled")
	}

	return &StripeClient{
		secretKey:   secretKey,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

func (c *StripeClient) Enabled() bool {
	return c.secretKey != ""
}

// CreatePlanSession creates a one-off Stripe Checkout session for the plan
// price, carrying the serialized reconciliation metadata.
func (c *StripeClient) CreatePlanSession(ctx context.Context, req SessionRequest) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	data, err := json.Marshal(req.Metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session metadata: %w", err)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:      stripe.String(req.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("pkr"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.PlanName),
					},
					UnitAmount: stripe.Int64(int64(math.Round(req.Price * 100))),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.frontendURL + "/manage"),
		CancelURL:  stripe.String(c.frontendURL + "/cancel"),
		Params: stripe.Params{
			Metadata: map[string]string{
				"type":     "subscription",
				"planName": req.PlanName,
				"email":    req.Email,
				"price":    fmt.Sprintf("%g", req.Price),
				"data":     string(data),
			},
		},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		c.logger.Error("Stripe checkout session failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}

	return sess.ID, nil
}
