package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medikart/internal/auth"
	"medikart/internal/config"
	"medikart/internal/database"
	"medikart/internal/handler"
	"medikart/internal/idempotency"
	"medikart/internal/repository"
	"medikart/internal/router"
	"medikart/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting medikart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	medicineRepo := repository.NewMedicineRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	statsRepo := repository.NewStatsRepository(pool, logger)

	// Idempotency keys live in Redis when enabled, otherwise in process
	keys, closeKeys := newKeyStore(ctx, cfg.Redis, logger)
	defer closeKeys()

	// Initialize services
	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	authService := service.NewAuthService(userRepo, hasher, tokens, logger)
	catalogService := service.NewCatalogService(medicineRepo, logger)
	orderService := service.NewOrderService(orderRepo, medicineRepo, userRepo, keys, logger)
	statsService := service.NewStatsService(statsRepo, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService, logger),
		Medicine: handler.NewMedicineHandler(catalogService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Admin:    handler.NewAdminHandler(statsService, pool, logger),
	}

	// Initialize router
	mux := router.New(handlers, authService, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newKeyStore connects to Redis when enabled and falls back to an in-memory
// store if Redis is disabled or unreachable.
func newKeyStore(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (idempotency.Store, func()) {
	if !cfg.Enabled {
		logger.Info().Msg("using in-memory idempotency store (Redis disabled)")
		return idempotency.NewMemoryStore(cfg.IdempotencyTTL), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().
			Err(err).
			Str("addr", cfg.Addr).
			Msg("failed to connect to Redis, falling back to in-memory idempotency store")
		_ = client.Close()
		return idempotency.NewMemoryStore(cfg.IdempotencyTTL), func() {}
	}

	logger.Info().Str("addr", cfg.Addr).Msg("using Redis idempotency store")

	return idempotency.NewRedisStore(client, cfg.IdempotencyTTL), func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close Redis client")
		}
	}
}
