package service

import (
	"context"
	"fmt"

	"medikart/internal/model"
	"medikart/internal/repository"

	"github.com/rs/zerolog"
)

type statsService struct {
	repo   repository.StatsRepository
	logger zerolog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(repo repository.StatsRepository, logger zerolog.Logger) StatsService {
	return &statsService{
		repo:   repo,
		logger: logger.With().Str("service", "stats").Logger(),
	}
}

// AdminStats returns the dashboard counters as of now. Nothing is cached.
func (s *statsService) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	stats, err := s.repo.AdminStats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read admin stats")
		return nil, fmt.Errorf("failed to read admin stats: %w", err)
	}
	return stats, nil
}
