package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"medikart/internal/auth"
	"medikart/internal/config"
	"medikart/internal/database"
	"medikart/internal/model"
	"medikart/internal/repository"
	"medikart/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("seeding medikart database")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	seeder := seed.NewSeeder(
		repository.NewMedicineRepository(pool, logger),
		repository.NewUserRepository(pool, logger),
		auth.NewHasher(cfg.Auth.BcryptCost),
		logger,
	)

	accounts := []seed.Account{
		{
			Name:     "Admin User",
			Email:    cfg.Seed.AdminEmail,
			Password: cfg.Seed.AdminPassword,
			Phone:    "9876543210",
			Address:  "Admin Office",
			Role:     model.RoleAdmin,
		},
		{
			Name:     "Demo User",
			Email:    cfg.Seed.DemoEmail,
			Password: cfg.Seed.DemoPassword,
			Phone:    "9123456780",
			Address:  "123 Main Street",
			Role:     model.RoleUser,
		},
	}
	if err := seeder.SeedAccounts(ctx, accounts); err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}

	// Catalogue files come from S3 when enabled, with the local copy as fallback
	fileLoader := seed.NewFileLoader(logger)
	var s3Loader seed.Loader
	if cfg.S3.Enabled {
		s3Loader, err = seed.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		}
	} else {
		logger.Info().Msg("using local file system for catalogue files (S3 disabled)")
	}
	loader := seed.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled && s3Loader != nil, logger)

	medicines, err := seed.LoadCatalog(ctx, loader, cfg.Seed.CatalogFiles, logger)
	if err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}

	count, err := seeder.SeedCatalog(ctx, medicines)
	if err != nil {
		return fmt.Errorf("failed to seed catalogue: %w", err)
	}

	logger.Info().
		Int("medicines", count).
		Int("accounts", len(accounts)).
		Msg("seeding completed")

	return nil
}
