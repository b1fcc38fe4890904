package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/tour-member/internal/config"
	"github.com/fairyhunter13/tour-member/internal/handler"
	"github.com/fairyhunter13/tour-member/internal/repository"
	"github.com/fairyhunter13/tour-member/internal/service"
	"github.com/fairyhunter13/tour-member/internal/validator"
	"github.com/fairyhunter13/tour-member/pkg/cache"
	"github.com/fairyhunter13/tour-member/pkg/database"
	"github.com/fairyhunter13/tour-member/pkg/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DB.DSN(), cfg.DB.MaxRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.DB.Migrate {
		if err := database.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to apply database schema")
		}
	}

	// Redis is optional; without it badges are served straight from PostgreSQL.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr()).Msg("redis unavailable, badge cache disabled")
			redisClient = nil
		}
	}
	badgeCache := cache.New(redisClient)

	app := fiber.New(fiber.Config{
		AppName:      "Tour Member API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())

	validate := validator.New()

	promoRepo := repository.NewPromotionRepository(pool)
	favoriteService := service.NewFavoriteService(pool, repository.NewFavoriteRepository(pool))
	notificationService := service.NewNotificationService(promoRepo, repository.NewReadRepository(pool))
	claimService := service.NewClaimService(pool, promoRepo, repository.NewClaimRepository())
	badgeService := service.NewBadgeService(repository.NewBadgeRepository(pool), badgeCache, cfg.Redis.BadgeTTL)

	var cachePinger handler.Pinger
	if badgeCache.IsAvailable() {
		cachePinger = badgeCache
	}

	handler.Register(app, handler.Routes{
		Health:       handler.NewHealthHandler(pool, cachePinger),
		Favorites:    handler.NewFavoriteHandler(favoriteService, validate),
		Notification: handler.NewNotificationHandler(notificationService, validate),
		Claim:        handler.NewClaimHandler(claimService, validate),
		Badges:       handler.NewBadgeHandler(badgeService),
		Verifier:     jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TokenTTL),
	})

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close backends AFTER server shutdown (even if shutdown timed out)
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis client")
		}
	}
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
