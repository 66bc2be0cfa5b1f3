package transport

import (
	"errors"
	"io"
	"net/http"

	"furliva/internal/middleware"
	"furliva/internal/payment"
	"furliva/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Stripe documents 64KB as the cap for event payloads
const maxWebhookBody = 65536

// WebhookHandler receives payment provider callbacks
type WebhookHandler struct {
	subscriptionService service.SubscriptionService
	webhookSecret       string
	logger              *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(subscriptionService service.SubscriptionService, webhookSecret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		subscriptionService: subscriptionService,
		webhookSecret:       webhookSecret,
		logger:              logger,
	}
}

// RegisterRoutes registers the webhook endpoint. It is unauthenticated;
// the signature header is the authentication.
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/stripe/webhook", h.HandleStripeEvent)
}

// HandleStripeEvent verifies and reconciles a provider event
func (h *WebhookHandler) HandleStripeEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("Failed to read webhook body", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	metadata, err := payment.ParseCompletedSession(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		if errors.Is(err, payment.ErrWebhookIgnored) {
			// Acknowledge so the provider stops retrying
			middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
			return
		}
		h.logger.Warn("Webhook verification failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "webhook verification failed")
		return
	}

	plan, err := h.subscriptionService.CompleteSubscription(r.Context(), metadata)
	if err != nil {
		h.logger.Error("Failed to complete subscription", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to complete subscription")
		return
	}

	h.logger.Info("Subscription reconciled from webhook",
		zap.String("plan_assignment_id", plan.ID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}
