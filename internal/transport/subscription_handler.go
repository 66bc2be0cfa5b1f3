package transport

import (
	"errors"
	"net/http"

	"furliva/internal/middleware"
	"furliva/internal/payment"
	"furliva/internal/repository"
	"furliva/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlanRequest represents a plan create/update payload
type PlanRequest struct {
	Name          string   `json:"name" validate:"required"`
	Price         float64  `json:"price" validate:"gte=0"`
	TimeFrameDays int      `json:"time_frame_days" validate:"gte=0"`
	AutoRenew     bool     `json:"auto_renew"`
	Features      []string `json:"features"`
	ProductIDs    []string `json:"product_ids"`
}

// SubscribeRequest represents a subscribe payload: the buyer's contact
// snapshot plus the plan being purchased.
type SubscribeRequest struct {
	User payment.UserData      `json:"user"`
	Plan service.SubscribePlan `json:"plan"`
}

// SubscribeResponse carries the payment session to redirect to
type SubscribeResponse struct {
	SessionID string `json:"id"`
}

// SubscriptionHandler handles HTTP requests for the plan catalog and lifecycle
type SubscriptionHandler struct {
	planService         service.PlanService
	subscriptionService service.SubscriptionService
	logger              *zap.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(
	planService service.PlanService,
	subscriptionService service.SubscriptionService,
	logger *zap.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		planService:         planService,
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

// RegisterRoutes registers all subscription routes
func (h *SubscriptionHandler) RegisterRoutes(
	r chi.Router,
	optionalAuth, authMiddleware, requireAdmin func(http.Handler) http.Handler,
) {
	r.Route("/api/subscription", func(r chi.Router) {
		// Public catalog; annotated per caller when a token is present
		r.With(optionalAuth).Get("/", h.ListPlans)
		r.With(optionalAuth).Get("/getAll", h.ListPlans)
		r.Get("/getById/{id}", h.GetPlan)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/getByUserId", h.ListUserPlans)
			r.Post("/subscribe", h.Subscribe)
			r.Delete("/cancel/{id}", h.CancelPlan)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, requireAdmin)
			r.Post("/", h.CreatePlan)
			r.Put("/{id}", h.UpdatePlan)
			r.Delete("/{id}", h.DeletePlan)
			r.Get("/products", h.ListPlanProducts)
			r.Get("/getSubscribers/{option}", h.ListSubscribers)
		})
	})
}

// ListPlans returns the plan catalog, annotated with isSubscribed for
// authenticated callers.
func (h *SubscriptionHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	if idStr, ok := middleware.GetUserID(r.Context()); ok {
		if id, err := uuid.Parse(idStr); err == nil {
			userID = &id
		}
	}

	plans, err := h.planService.ListPlans(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list plans", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list plans")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, plans)
}

// GetPlan returns a single plan with its product group
func (h *SubscriptionHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	plan, err := h.planService.GetPlan(r.Context(), id)
	if err != nil {
		if err == repository.ErrSubscriptionNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "plan not found")
			return
		}
		h.logger.Error("Failed to get plan", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get plan")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, plan)
}

// ListUserPlans returns the caller's active plan assignments
func (h *SubscriptionHandler) ListUserPlans(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	plans, err := h.planService.ListUserPlans(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list user plans", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list user plans")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, plans)
}

// ListSubscribers returns plan assignments for the admin dashboard,
// filtered by Active/Expired/all.
func (h *SubscriptionHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.planService.ListSubscribers(r.Context(), chi.URLParam(r, "option"))
	if err != nil {
		h.logger.Error("Failed to list subscribers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list subscribers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, subscribers)
}

// ListPlanProducts returns the product picker projection
func (h *SubscriptionHandler) ListPlanProducts(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.planService.ListPlanProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list plan products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list plan products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, summaries)
}

// CreatePlan creates a subscription plan
func (h *SubscriptionHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodePlan(w, r)
	if !ok {
		return
	}

	plan, err := h.subscriptionService.CreatePlan(r.Context(), input)
	if err != nil {
		h.logger.Error("Failed to create plan", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create plan")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, plan)
}

// UpdatePlan updates a subscription plan
func (h *SubscriptionHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	input, ok := h.decodePlan(w, r)
	if !ok {
		return
	}

	plan, err := h.subscriptionService.UpdatePlan(r.Context(), id, input)
	if err != nil {
		if err == repository.ErrSubscriptionNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "plan not found")
			return
		}
		h.logger.Error("Failed to update plan", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update plan")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, plan)
}

// DeletePlan deletes a subscription plan
func (h *SubscriptionHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	if err := h.subscriptionService.DeletePlan(r.Context(), id); err != nil {
		if err == repository.ErrSubscriptionNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "plan not found")
			return
		}
		h.logger.Error("Failed to delete plan", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete plan")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "plan deleted"})
}

// Subscribe opens a payment session for the plan
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubscribeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Subscribe decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID, err := h.subscriptionService.Subscribe(r.Context(), userID, req.User, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPlan):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, payment.ErrDisabled):
			middleware.RespondWithError(w, http.StatusNotImplemented, "payments are not configured")
		case errors.Is(err, payment.ErrProvider):
			middleware.RespondWithError(w, http.StatusBadGateway, "payment provider error")
		default:
			h.logger.Error("Subscribe failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create checkout session")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, SubscribeResponse{SessionID: sessionID})
}

// CancelPlan removes a plan assignment
func (h *SubscriptionHandler) CancelPlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	if err := h.subscriptionService.CancelPlan(r.Context(), id); err != nil {
		if err == repository.ErrUserPlanNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "subscription not found")
			return
		}
		h.logger.Error("Failed to cancel plan", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to cancel subscription")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "subscription cancelled"})
}

func (h *SubscriptionHandler) decodePlan(w http.ResponseWriter, r *http.Request) (service.PlanInput, bool) {
	var req PlanRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Plan validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return service.PlanInput{}, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return service.PlanInput{}, false
	}

	productIDs := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id in plan")
			return service.PlanInput{}, false
		}
		productIDs = append(productIDs, id)
	}

	return service.PlanInput{
		Name:          req.Name,
		Price:         req.Price,
		TimeFrameDays: req.TimeFrameDays,
		AutoRenew:     req.AutoRenew,
		Features:      req.Features,
		ProductIDs:    productIDs,
	}, true
}

// userIDFromContext parses the authenticated user id set by the auth middleware
func userIDFromContext(r *http.Request) (uuid.UUID, bool) {
	idStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
