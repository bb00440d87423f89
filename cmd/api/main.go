// Package main is the entrypoint for the drtimfoo API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/TimFooLabs/drtimfoo-api/internal/cache"
	"github.com/TimFooLabs/drtimfoo-api/internal/config"
	"github.com/TimFooLabs/drtimfoo-api/internal/handler"
	"github.com/TimFooLabs/drtimfoo-api/internal/metrics"
	"github.com/TimFooLabs/drtimfoo-api/internal/middleware"
	"github.com/TimFooLabs/drtimfoo-api/internal/repository"
	"github.com/TimFooLabs/drtimfoo-api/internal/server"
	"github.com/TimFooLabs/drtimfoo-api/internal/service"
	"github.com/TimFooLabs/drtimfoo-api/internal/usersync"
	"github.com/TimFooLabs/drtimfoo-api/internal/webhook"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	metricsRecorder := metrics.NewInMemory()

	// The webhook verifier is optional: without a signing secret the
	// endpoint reports misconfiguration while the rest of the API runs.
	verifier, err := initVerifier(cfg)
	if err != nil {
		logger.Error("invalid webhook signing secret")
		os.Exit(1)
	}
	if verifier == nil {
		logger.Warn("CLERK_WEBHOOK_SIGNING_SECRET not set, webhook endpoint disabled")
	}

	dispatcher := usersync.NewDispatcher(repo, logger)
	bookingService := service.NewBookingService(repo, cacheClient, metricsRecorder, logger)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	webhookHandler := handler.NewWebhookHandler(verifier, dispatcher, cacheClient, metricsRecorder, logger)
	bookingHandler := handler.NewBookingHandler(bookingService, logger)
	testimonialHandler := handler.NewTestimonialHandler(repo, metricsRecorder, logger)
	contactHandler := handler.NewContactHandler(repo, metricsRecorder, logger)
	adminHandler := handler.NewAdminHandler(repo, repo, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	r := setupRouter(routerDeps{
		root:         h,
		health:       healthHandler,
		webhook:      webhookHandler,
		booking:      bookingHandler,
		testimonials: testimonialHandler,
		contact:      contactHandler,
		admin:        adminHandler,
		metrics:      metricsHandler,
		cache:        cacheClient,
		cfg:          cfg,
		logger:       logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initVerifier builds the webhook verifier from config, or returns nil
// when no signing secret is configured.
func initVerifier(cfg *config.Config) (*webhook.Verifier, error) {
	if cfg.ClerkWebhookSecret == "" {
		return nil, nil
	}

	secret, err := webhook.ParseSecret(cfg.ClerkWebhookSecret)
	if err != nil {
		return nil, err
	}

	return webhook.NewVerifier(secret, webhook.WithTolerance(cfg.WebhookTolerance)), nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	root         *handler.Handler
	health       *handler.HealthHandler
	webhook      *handler.WebhookHandler
	booking      *handler.BookingHandler
	testimonials *handler.TestimonialHandler
	contact      *handler.ContactHandler
	admin        *handler.AdminHandler
	metrics      *handler.MetricsHandler
	cache        *cache.Cache
	cfg          *config.Config
	logger       *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.DefaultSecurityConfig()))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.root.Root)

	// Metrics for the local Prometheus scraper
	r.Get("/metrics", deps.metrics.Metrics)

	// Identity provider webhooks authenticate by signature, not key.
	r.Post("/webhooks/clerk", deps.webhook.Receive)

	authCfg := middleware.AuthConfig{
		Logger:         deps.logger,
		Cache:          deps.cache,
		ServiceKeyHash: deps.cfg.ServiceKeyHash,
		AdminKeyHash:   deps.cfg.AdminKeyHash,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  deps.logger,
		Cache:   deps.cache,
		Enabled: deps.cfg.RateLimitContactEnabled,
		RPS:     deps.cfg.RateLimitContactRPS,
		Burst:   deps.cfg.RateLimitContactBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public site endpoints
		r.Get("/availability", deps.booking.Availability)
		r.Get("/testimonials", deps.testimonials.ListApproved)
		r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/contact", deps.contact.Submit)

		// Endpoints called by the frontend server with its service key
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Route("/bookings", func(r chi.Router) {
				r.Post("/", deps.booking.Create)
				r.Get("/", deps.booking.ListByUser)
				r.Get("/upcoming", deps.booking.ListUpcoming)
				r.Get("/{id}", deps.booking.Get)
				r.Patch("/{id}/status", deps.booking.UpdateStatus)
			})

			r.Post("/testimonials", deps.testimonials.Submit)

			// Admin-only moderation and triage
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				r.Get("/testimonials", deps.admin.ListTestimonials)
				r.Patch("/testimonials/{id}", deps.admin.ModerateTestimonial)
				r.Get("/contacts", deps.admin.ListContacts)
				r.Patch("/contacts/{id}", deps.admin.UpdateContactStatus)
				r.Get("/stats", deps.admin.Stats)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.root.NotFound)
	r.MethodNotAllowed(deps.root.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
