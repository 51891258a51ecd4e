package handler

import (
	"context"
	"net/http"

	"medikart/internal/service"

	"github.com/rs/zerolog"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AdminHandler serves the dashboard counters and the health probe.
type AdminHandler struct {
	stats  service.StatsService
	db     Pinger
	logger zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(stats service.StatsService, db Pinger, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		stats:  stats,
		db:     db,
		logger: logger.With().Str("handler", "admin").Logger(),
	}
}

// Stats handles GET /admin/stats requests.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.AdminStats(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Health handles GET /health requests.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("database ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
