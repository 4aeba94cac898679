// @title EventHub API
// @version 1.0
// @description Event catalog, moderation, registrations with QR tickets, reviews and wishlists.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
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

	"github.com/redis/go-redis/v9"

	"eventhub/config"
	_ "eventhub/docs"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/email"
	"eventhub/internal/adapters/export"
	"eventhub/internal/adapters/ticket"
	httpdelivery "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("database ready")

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("rate limiter uses redis")
	}

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	wishlistRepo := postgres.NewWishlistRepository(db)

	// Services
	timeout := cfg.RequestTimeout
	authService := services.NewAuthService(userRepo, auth.NewBcryptHasher(cfg.BcryptCost), auth.NewJWTIssuer(cfg.JWTSecret), cfg.JWTExpiry, timeout)
	eventService := services.NewEventService(eventRepo, timeout)
	moderationService := services.NewModerationService(eventRepo, userRepo, emailService, logger, timeout)
	registrationService := services.NewRegistrationService(services.RegistrationDeps{
		Registrations: registrationRepo,
		Events:        eventRepo,
		Users:         userRepo,
		Tickets:       ticket.NewIssuer(cfg.TicketSecret),
		Exporter:      export.NewParticipantExporter(),
		Renderer:      export.NewTicketRenderer(),
		Email:         emailService,
		Logger:        logger,
	}, timeout)
	reviewService := services.NewReviewService(reviewRepo, timeout)
	wishlistService := services.NewWishlistService(wishlistRepo, timeout)
	statsService := services.NewStatsService(postgres.NewStatsRepository(db), timeout)

	rateLimit, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:               cfg.RateLimit,
		Redis:              redisClient,
		TrustForwardHeader: cfg.TrustProxy,
	}, logger)
	if err != nil {
		return err
	}

	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:          controllers.NewAuthController(logger, authService),
		Events:        controllers.NewEventController(logger, eventService),
		Moderation:    controllers.NewModerationController(logger, moderationService),
		Registrations: controllers.NewRegistrationController(logger, registrationService),
		Reviews:       controllers.NewReviewController(logger, reviewService),
		Wishlist:      controllers.NewWishlistController(logger, wishlistService),
		Stats:         controllers.NewStatsController(logger, statsService),
		Health:        controllers.NewHealthController(logger, db),
	}, httpdelivery.RouterConfig{
		Logger:      logger,
		Verifier:    verifier,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   rateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
