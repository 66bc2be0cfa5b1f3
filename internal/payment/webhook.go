package payment

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

var (
	// ErrWebhookSignature is returned when the event signature does not verify.
	ErrWebhookSignature = errors.New("webhook signature verification failed")
	// ErrWebhookIgnored marks events that carry no plan reconciliation data.
	ErrWebhookIgnored = errors.New("webhook event ignored")
)

// ParseCompletedSession verifies the webhook payload and, for a completed
// checkout session carrying subscription metadata, returns the decoded
// reconciliation blob. Other event types return ErrWebhookIgnored.
func ParseCompletedSession(payload []byte, sigHeader, secret string) (*SessionMetadata, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		sigHeader,
		secret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	if event.Type != "checkout.session.completed" {
		return nil, ErrWebhookIgnored
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	if sess.Metadata["type"] != "subscription" {
		return nil, ErrWebhookIgnored
	}

	var metadata SessionMetadata
	if err := json.Unmarshal([]byte(sess.Metadata["data"]), &metadata); err != nil {
		return nil, fmt.Errorf("failed to decode session metadata: %w", err)
	}

	return &metadata, nil
}
