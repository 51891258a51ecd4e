package repository

import (
	"context"
	"fmt"

	"medikart/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type statsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStatsRepository creates a new PostgreSQL-backed stats repository.
func NewStatsRepository(pool *pgxpool.Pool, logger zerolog.Logger) StatsRepository {
	return &statsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stats").Logger(),
	}
}

// AdminStats reads all four counters in one statement so they share a snapshot.
func (r *statsRepository) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM medicines),
			(SELECT COUNT(*) FROM users WHERE role = $1),
			(SELECT COUNT(*) FROM orders WHERE status = $2)
	`

	var s model.AdminStats
	err := r.pool.QueryRow(ctx, query, model.RoleUser, model.StatusPlaced).Scan(
		&s.TotalOrders,
		&s.TotalMedicines,
		&s.TotalUsers,
		&s.PendingOrders,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query admin stats")
		return nil, fmt.Errorf("failed to query admin stats: %w", err)
	}

	return &s, nil
}
