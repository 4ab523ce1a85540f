// @title Virtual Events API
// @version 1.0
// @description Calendar, events, attendee selection and per-event chat for virtual events.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"virtualevents/config"
	_ "virtualevents/docs"
	"virtualevents/internal/adapters/auth"
	"virtualevents/internal/adapters/email"
	"virtualevents/internal/adapters/ical"
	"virtualevents/internal/calendar"
	httpdelivery "virtualevents/internal/delivery/http"
	"virtualevents/internal/delivery/http/controllers"
	"virtualevents/internal/delivery/http/middleware"
	"virtualevents/internal/jobs"
	"virtualevents/internal/services"
	"virtualevents/internal/session"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeStore(closeCtx); err != nil {
			logger.Warn("closing store", "err", err)
		}
	}()
	logger.Info("store ready", "driver", cfg.StoreDriver)

	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("load email templates: %w", err)
	}
	mailer := email.NewMailer(email.MailerConfig{
		Provider:        cfg.Email.Provider,
		FromAddress:     cfg.Email.FromAddress,
		FromName:        cfg.Email.FromName,
		Region:          cfg.Email.AWSRegion,
		AccessKeyID:     cfg.Email.AWSAccessKeyID,
		SecretAccessKey: cfg.Email.AWSSecretAccessKey,
	}, logger)
	emailService := services.NewEmailService(mailer, renderer, logger)

	registry := session.NewRegistry(logger, nil)
	tokens := auth.NewJWT(cfg.JWTSecret)

	authService := services.NewAuthService(store, registry, auth.NewBcryptHasher(bcrypt.DefaultCost), tokens, cfg.JWTExpiry, emailService, logger, cfg.ContextTimeout)
	eventService := services.NewEventService(calendar.NewBuilder(nil), ical.NewExporter(), registry, logger, cfg.ContextTimeout)
	chatService := services.NewChatService(cfg.ContextTimeout)

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.AddSessionSweep(cfg.SessionSweepSchedule, registry, cfg.SessionIdleTimeout); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:     controllers.NewAuthController(logger, authService),
		Calendar: controllers.NewCalendarController(logger, eventService),
		Events:   controllers.NewEventController(logger, eventService),
		Chat:     controllers.NewChatController(logger, chatService),
	}, middleware.RequireAuth(tokens, registry, logger))

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSAllowedOrigins)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = chimiddleware.Recoverer(handler)
	handler = chimiddleware.RequestID(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server stopped gracefully")
	}
	return nil
}
