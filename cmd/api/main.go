package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/covenantconf/registration-api/internal/http/handlers"
	"github.com/covenantconf/registration-api/internal/notify"
	"github.com/covenantconf/registration-api/internal/platform/auth"
	"github.com/covenantconf/registration-api/internal/repo/postgres"
	"github.com/covenantconf/registration-api/internal/service"
	"github.com/covenantconf/registration-api/pkg/config"
	"github.com/covenantconf/registration-api/pkg/database"
	"github.com/covenantconf/registration-api/pkg/events"
	"github.com/covenantconf/registration-api/pkg/logger"
	mw "github.com/covenantconf/registration-api/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Repositories
	registrationRepo := postgres.NewRegistrationRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)

	// Outbound notifications, all optional and best-effort
	var notifiers notify.Multi
	if cfg.Notify.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhook("registration", cfg.Notify.WebhookURL))
	}
	if cfg.Notify.SheetsURL != "" {
		notifiers = append(notifiers, notify.NewWebhook("sheets", cfg.Notify.SheetsURL))
	}
	if cfg.Notify.MailerSendKey != "" && cfg.Notify.MailFromAddress != "" {
		notifiers = append(notifiers, notify.NewMailer(
			cfg.Notify.MailerSendKey, cfg.Notify.MailFromName, cfg.Notify.MailFromAddress, cfg.Event.Name,
		))
	}
	if cfg.NATS.URL != "" {
		eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Warn("Failed to connect to NATS, events disabled", "error", err)
		} else {
			defer eventBus.Close()
			notifiers = append(notifiers, notify.NewEventPublisher(eventBus))
		}
	}

	// Services
	registrationService := service.NewRegistrationService(
		registrationRepo, settingsRepo, notifiers, cfg.Event.Name, cfg.Event.ExportTimeout,
	)

	// Admin session authority and login limiter
	if cfg.Admin.SessionSecret == "" {
		logger.Warn("ADMIN_SESSION_SECRET is not set; admin authentication is disabled")
	}
	sessions := auth.NewSessionAuthority(cfg.Admin.SessionSecret, cfg.Admin.SessionDuration)
	credentials := auth.NewCredentials(cfg.Admin.Email, cfg.Admin.PasswordHash)

	var limiter auth.LoginLimiter = auth.NewMemoryLimiter(cfg.Admin.MaxLoginFails, cfg.Admin.LoginBlockFor)
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Warn("Invalid REDIS_URL, using in-memory login limiter", "error", err)
		} else {
			limiter = auth.NewRedisLimiter(redis.NewClient(opts), cfg.Admin.MaxLoginFails, cfg.Admin.LoginBlockFor)
		}
	}

	h := handlers.New(registrationService, sessions, credentials, limiter, cfg.Server.Environment == "production")

	// Router
	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ClientIP)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/register", func(r chi.Router) {
		r.Post("/", h.Register)
		r.Get("/status", h.RegistrationStatus)
		r.With(h.RequireAdmin).Get("/settings", h.GetSettings)
		r.With(h.RequireAdmin).Patch("/settings", h.UpdateSettings)
	})

	r.Route("/registrations", func(r chi.Router) {
		r.With(h.RequireAdmin).Get("/", h.ListRegistrations)
		r.With(h.RequireAdmin).Get("/export", h.ExportRegistrations)
		r.With(h.RequireAdmin).Patch("/{id}", h.UpdateRegistration)
		r.Patch("/{id}/attendance", h.SetAttendance)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down registration service...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Registration service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting registration service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Registration service error", "error", err)
		os.Exit(1)
	}
}
