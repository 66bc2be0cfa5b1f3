package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"furliva/internal/middleware"
	"furliva/internal/repository"
	"furliva/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderRequest represents the order placement payload. The buyer identity
// comes from the verified token, never from this body.
type OrderRequest struct {
	Cart          map[string]service.CartItem `json:"cart" validate:"required"`
	FirstName     string                      `json:"firstName" validate:"required"`
	LastName      string                      `json:"lastName" validate:"required"`
	Email         string                      `json:"email" validate:"required,email"`
	Street        string                      `json:"street" validate:"required"`
	City          string                      `json:"city" validate:"required"`
	State         string                      `json:"state"`
	Zipcode       string                      `json:"zipcode"`
	Country       string                      `json:"country" validate:"required"`
	Phone         string                      `json:"phone"`
	PaymentStatus string                      `json:"payment_status"`
}

// QuoteRequest represents the cart pricing preview payload
type QuoteRequest struct {
	Cart map[string]service.CartItem `json:"cart" validate:"required"`
}

// OrderHandler handles HTTP requests for checkout and orders
type OrderHandler struct {
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(checkoutService service.CheckoutService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers checkout and order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, requireAdmin func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/orders/order", h.PlaceOrder)
		r.Post("/api/checkout", h.Quote)
		// Card payment for orders was never wired up; the route keeps the
		// original contract and reports the capability as unimplemented.
		r.Post("/api/orders/create-checkout-session", h.CreateCheckoutSession)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware, requireAdmin)
		r.Get("/api/orders", h.ListOrders)
		r.Get("/api/orders/{id}", h.GetOrder)
	})
}

// PlaceOrder runs the full checkout workflow
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req OrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = "Cash on Delivery"
	}

	result, err := h.checkoutService.Checkout(r.Context(), service.CheckoutInput{
		UserID:        userID,
		Cart:          req.Cart,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Street:        req.Street,
		City:          req.City,
		State:         req.State,
		Zipcode:       req.Zipcode,
		Country:       req.Country,
		Phone:         req.Phone,
		PaymentStatus: paymentStatus,
	})
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", result.Order.ID.String()),
		zap.String("user_id", userID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, result)
}

// Quote previews the pricing context for a cart without placing an order
func (h *OrderHandler) Quote(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.checkoutService.Quote(r.Context(), userID, req.Cart)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// CreateCheckoutSession reports the unimplemented card payment path
func (h *OrderHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithError(w, http.StatusNotImplemented, "card payment for orders is not available")
}

// GetOrder returns an order with its line items
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.checkoutService.GetOrder(r.Context(), id)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListOrders returns all orders, newest first
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.checkoutService.ListOrders(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	var stockErr *service.StockError
	switch {
	case errors.As(err, &stockErr):
		middleware.RespondWithError(w, http.StatusBadRequest, stockErr.Error())
	case errors.Is(err, service.ErrEmptyCart):
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, service.ErrInvalidCartItem):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCartProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process checkout")
	}
}
