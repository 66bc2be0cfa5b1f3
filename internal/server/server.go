package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"furliva/internal/config"
	"furliva/internal/jobs"
	"furliva/internal/mailer"
	custommiddleware "furliva/internal/middleware"
	"furliva/internal/payment"
	"furliva/internal/repository"
	"furliva/internal/service"
	"furliva/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client

	// Reminder is exposed so the scheduler and the manual trigger share
	// one job instance.
	Reminder *jobs.ReminderJob
	// Dispatcher drains the email outbox; nil when no mailer is configured
	Dispatcher *jobs.OutboxDispatcher
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	userPlanRepo := repository.NewUserPlanRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	adoptionRepo := repository.NewAdoptionRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	orderRepo := repository.NewOrderRepository(db, outboxRepo)

	// Initialize collaborators
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP, logger)
	stripeClient := payment.NewStripeClient(cfg.Stripe.SecretKey, cfg.Stripe.FrontendURL, logger)

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret)
	planService := service.NewPlanService(subscriptionRepo, userPlanRepo, productRepo)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userPlanRepo, stripeClient, logger)
	checkoutService := service.NewCheckoutService(
		orderRepo, productRepo, saleRepo, userPlanRepo, subscriptionRepo,
		smtpMailer.Configured(), logger,
	)
	productService := service.NewProductService(productRepo)
	saleService := service.NewSaleService(saleRepo)
	adoptionService := service.NewAdoptionService(adoptionRepo, logger)

	// Initialize jobs
	reminder := jobs.NewReminderJob(userPlanRepo, userRepo, reminderMailer(smtpMailer), cfg.Jobs.ReminderHorizonDays, logger)

	var dispatcher *jobs.OutboxDispatcher
	if smtpMailer.Configured() {
		dispatcher = jobs.NewOutboxDispatcher(
			outboxRepo,
			smtpMailer,
			cfg.Jobs.OutboxBatchSize,
			time.Duration(cfg.Jobs.OutboxPollSeconds)*time.Second,
			logger,
		)
	} else {
		logger.Warn("SMTP not configured, outbox dispatcher disabled")
	}

	// Create middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	optionalAuth := custommiddleware.OptionalAuthMiddleware(cfg.JWT.Secret, logger)
	requireAdmin := custommiddleware.RequireAdmin(logger)

	// Rate limit the credential endpoints
	authRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:auth",
	}, logger)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	subscriptionHandler := transport.NewSubscriptionHandler(planService, subscriptionService, logger)
	orderHandler := transport.NewOrderHandler(checkoutService, logger)
	adoptionHandler := transport.NewAdoptionHandler(adoptionService, logger)
	productHandler := transport.NewProductHandler(productService, logger)
	saleHandler := transport.NewSaleHandler(saleService, logger)
	webhookHandler := transport.NewWebhookHandler(subscriptionService, cfg.Stripe.WebhookSecret, logger)
	cronHandler := transport.NewCronHandler(reminder, cfg.Jobs.ReminderSchedule, cfg.Jobs.ReminderHorizonDays, logger)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(authRateLimit)
		userHandler.RegisterRoutes(r, authMiddleware)
	})
	subscriptionHandler.RegisterRoutes(router, optionalAuth, authMiddleware, requireAdmin)
	orderHandler.RegisterRoutes(router, authMiddleware, requireAdmin)
	adoptionHandler.RegisterRoutes(router, authMiddleware, requireAdmin)
	productHandler.RegisterRoutes(router, authMiddleware, requireAdmin)
	saleHandler.RegisterRoutes(router, authMiddleware, requireAdmin)
	webhookHandler.RegisterRoutes(router)
	cronHandler.RegisterRoutes(router, authMiddleware, requireAdmin)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:     cfg,
		logger:     logger,
		db:         db,
		redis:      redisClient,
		Reminder:   reminder,
		Dispatcher: dispatcher,
	}

	return server
}

// reminderMailer hides an unconfigured SMTP mailer behind a nil interface so
// the reminder job degrades to counting without sending.
func reminderMailer(m *mailer.SMTPMailer) mailer.Mailer {
	if !m.Configured() {
		return nil
	}
	return m
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
