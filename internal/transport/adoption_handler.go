package transport

import (
	"net/http"

	"furliva/internal/middleware"
	"furliva/internal/repository"
	"furliva/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdoptionRequest represents an adoption listing submission
type AdoptionRequest struct {
	PetName     string   `json:"pet_name" validate:"required"`
	PetType     string   `json:"pet_type" validate:"required"`
	Breed       string   `json:"breed"`
	AgeMonths   int      `json:"age_months" validate:"gte=0"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// AdoptionHandler handles HTTP requests for adoption listings
type AdoptionHandler struct {
	adoptionService service.AdoptionService
	logger          *zap.Logger
}

// NewAdoptionHandler creates a new AdoptionHandler
func NewAdoptionHandler(adoptionService service.AdoptionService, logger *zap.Logger) *AdoptionHandler {
	return &AdoptionHandler{
		adoptionService: adoptionService,
		logger:          logger,
	}
}

// RegisterRoutes registers adoption routes
func (h *AdoptionHandler) RegisterRoutes(r chi.Router, authMiddleware, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/api/adoptions", func(r chi.Router) {
		// The approved feed is public
		r.Get("/approved", h.ListApproved)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Submit)
			r.Get("/mine", h.ListMine)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, requireAdmin)
			r.Get("/", h.ListAll)
			r.Post("/{id}/approve", h.Approve)
			r.Delete("/{id}", h.Remove)
		})
	})
}

// Submit stores a new listing under the caller's verified email
func (h *AdoptionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AdoptionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Adoption validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form, err := h.adoptionService.Submit(r.Context(), service.AdoptionInput{
		Email:       email,
		PetName:     req.PetName,
		PetType:     req.PetType,
		Breed:       req.Breed,
		AgeMonths:   req.AgeMonths,
		Description: req.Description,
		Images:      req.Images,
	})
	if err != nil {
		h.logger.Error("Failed to submit adoption form", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to submit adoption form")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, form)
}

// ListApproved returns the published feed
func (h *AdoptionHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	forms, err := h.adoptionService.ListApproved(r.Context())
	if err != nil {
		h.logger.Error("Failed to list approved adoptions", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list adoptions")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, forms)
}

// ListAll returns every listing regardless of status
func (h *AdoptionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	forms, err := h.adoptionService.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list adoptions", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list adoptions")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, forms)
}

// ListMine returns the caller's own listings
func (h *AdoptionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	forms, err := h.adoptionService.ListMine(r.Context(), email)
	if err != nil {
		h.logger.Error("Failed to list own adoptions", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list adoptions")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, forms)
}

// Approve publishes a pending listing
func (h *AdoptionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid adoption id")
		return
	}

	if err := h.adoptionService.Approve(r.Context(), id); err != nil {
		if err == repository.ErrAdoptionFormNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "adoption form not found")
			return
		}
		h.logger.Error("Failed to approve adoption form", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to approve adoption form")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "adoption form approved"})
}

// Remove deletes a listing
func (h *AdoptionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid adoption id")
		return
	}

	if err := h.adoptionService.Remove(r.Context(), id); err != nil {
		if err == repository.ErrAdoptionFormNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "adoption form not found")
			return
		}
		h.logger.Error("Failed to delete adoption form", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete adoption form")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "adoption form deleted"})
}
