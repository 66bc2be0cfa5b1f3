package transport

import (
	"net/http"
	"time"

	"furliva/internal/middleware"
	"furliva/internal/repository"
	"furliva/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleRequest represents a sale create/update payload
type SaleRequest struct {
	IsActive           bool      `json:"is_active"`
	StartDate          time.Time `json:"start_date" validate:"required"`
	EndDate            time.Time `json:"end_date" validate:"required"`
	DiscountPercentage float64   `json:"discount_percentage" validate:"gte=0,lte=100"`
}

// SaleHandler handles HTTP requests for storewide sales
type SaleHandler struct {
	saleService service.SaleService
	logger      *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService service.SaleService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		logger:      logger,
	}
}

// RegisterRoutes registers sale routes
func (h *SaleHandler) RegisterRoutes(r chi.Router, authMiddleware, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/api/sales", func(r chi.Router) {
		// Storefronts poll this to show the active discount banner
		r.Get("/active", h.Active)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, requireAdmin)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Active returns the currently running sale, or null
func (h *SaleHandler) Active(w http.ResponseWriter, r *http.Request) {
	sale, err := h.saleService.Active(r.Context())
	if err != nil {
		h.logger.Error("Failed to get active sale", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get active sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

// List returns all sales
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	sales, err := h.saleService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sales", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list sales")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sales)
}

// Create creates a sale
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeSale(w, r)
	if !ok {
		return
	}

	sale, err := h.saleService.Create(r.Context(), input)
	if err != nil {
		if err == service.ErrInvalidSaleWindow {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to create sale", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

// Update updates a sale
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	input, ok := h.decodeSale(w, r)
	if !ok {
		return
	}

	sale, err := h.saleService.Update(r.Context(), id, input)
	if err != nil {
		if err == service.ErrInvalidSaleWindow {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err == repository.ErrSaleNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "sale not found")
			return
		}
		h.logger.Error("Failed to update sale", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

// Delete deletes a sale
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	if err := h.saleService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrSaleNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "sale not found")
			return
		}
		h.logger.Error("Failed to delete sale", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "sale deleted"})
}

func (h *SaleHandler) decodeSale(w http.ResponseWriter, r *http.Request) (service.SaleInput, bool) {
	var req SaleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Sale validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return service.SaleInput{}, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return service.SaleInput{}, false
	}

	return service.SaleInput{
		IsActive:           req.IsActive,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		DiscountPercentage: req.DiscountPercentage,
	}, true
}
