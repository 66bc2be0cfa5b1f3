package transport

import (
	"net/http"

	"furliva/internal/jobs"
	"furliva/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CronStatus reports the reminder job configuration
type CronStatus struct {
	Schedule    string `json:"schedule"`
	HorizonDays int    `json:"horizon_days"`
}

// CronHandler exposes the reminder job over HTTP: a status probe and a
// manual trigger for operators.
type CronHandler struct {
	reminder    *jobs.ReminderJob
	schedule    string
	horizonDays int
	logger      *zap.Logger
}

// NewCronHandler creates a new CronHandler
func NewCronHandler(reminder *jobs.ReminderJob, schedule string, horizonDays int, logger *zap.Logger) *CronHandler {
	return &CronHandler{
		reminder:    reminder,
		schedule:    schedule,
		horizonDays: horizonDays,
		logger:      logger,
	}
}

// RegisterRoutes registers the cron routes
func (h *CronHandler) RegisterRoutes(r chi.Router, authMiddleware, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/api/cronjob", h.Status)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware, requireAdmin)
		r.Post("/api/cronjob/run", h.Run)
	})
}

// Status reports the job configuration
func (h *CronHandler) Status(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, CronStatus{
		Schedule:    h.schedule,
		HorizonDays: h.horizonDays,
	})
}

// Run triggers one reminder pass immediately
func (h *CronHandler) Run(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reminder.Run(r.Context())
	if err != nil {
		h.logger.Error("Manual reminder run failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "reminder run failed")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, summary)
}
