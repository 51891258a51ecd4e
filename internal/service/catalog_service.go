package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medikart/internal/model"
	"medikart/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// categoryAll is the catalogue filter value meaning "no category filter".
const categoryAll = "all"

// maxPrice is the first value that no longer fits NUMERIC(12, 2).
var maxPrice = decimal.New(1, 10)

// catalogService implements CatalogService.
type catalogService struct {
	repo     repository.MedicineRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewCatalogService creates a new catalogue service.
func NewCatalogService(repo repository.MedicineRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		repo:     repo,
		validate: newValidator(),
		logger:   logger.With().Str("service", "catalog").Logger(),
	}
}

// List retrieves medicines matching the filter.
func (s *catalogService) List(ctx context.Context, filter model.MedicineFilter) ([]model.Medicine, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Category = strings.TrimSpace(filter.Category)
	if strings.EqualFold(filter.Category, categoryAll) {
		filter.Category = ""
	}

	medicines, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list medicines")
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}

	s.logger.Debug().
		Str("search", filter.Search).
		Str("category", filter.Category).
		Int("count", len(medicines)).
		Msg("medicines listed")

	return medicines, nil
}

// GetByID retrieves a single medicine.
func (s *catalogService) GetByID(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("medicine_id", id.String()).Msg("failed to get medicine")
		return nil, fmt.Errorf("failed to get medicine: %w", err)
	}
	if m == nil {
		return nil, model.ErrMedicineNotFound
	}
	return m, nil
}

// Create adds a medicine to the catalogue.
func (s *catalogService) Create(ctx context.Context, req *model.MedicineRequest) (*model.Medicine, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	expiry, err := parseExpiry(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m := &model.Medicine{ID: uuid.New(), CreatedAt: now, ExpiryDate: expiry}
	applyMedicineRequest(m, req, now)

	if err := s.repo.Create(ctx, m); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			s.logger.Warn().Err(err).Str("name", m.Name).Msg("medicine rejected")
			return nil, err
		}
		s.logger.Error().Err(err).Str("name", m.Name).Msg("failed to create medicine")
		return nil, fmt.Errorf("failed to create medicine: %w", err)
	}

	s.logger.Info().Str("medicine_id", m.ID.String()).Str("name", m.Name).Msg("medicine created")

	return m, nil
}

// Update replaces a medicine's fields.
func (s *catalogService) Update(ctx context.Context, id uuid.UUID, req *model.MedicineRequest) (*model.Medicine, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	expiry, err := parseExpiry(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m := &model.Medicine{ID: id, ExpiryDate: expiry}
	applyMedicineRequest(m, req, now)

	found, err := s.repo.Update(ctx, m)
	if err != nil {
		if _, ok := model.AsDomainError(err); ok {
			s.logger.Warn().Err(err).Str("medicine_id", id.String()).Msg("medicine update rejected")
			return nil, err
		}
		s.logger.Error().Err(err).Str("medicine_id", id.String()).Msg("failed to update medicine")
		return nil, fmt.Errorf("failed to update medicine: %w", err)
	}
	if !found {
		return nil, model.ErrMedicineNotFound
	}

	s.logger.Info().Str("medicine_id", id.String()).Msg("medicine updated")

	return m, nil
}

// Delete removes a medicine that no order references.
func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if _, ok := model.AsDomainError(err); ok {
			s.logger.Warn().Err(err).Str("medicine_id", id.String()).Msg("medicine cannot be deleted")
			return err
		}
		s.logger.Error().Err(err).Str("medicine_id", id.String()).Msg("failed to delete medicine")
		return fmt.Errorf("failed to delete medicine: %w", err)
	}
	if !deleted {
		return model.ErrMedicineNotFound
	}

	s.logger.Info().Str("medicine_id", id.String()).Msg("medicine deleted")

	return nil
}

// Categories returns the distinct categories.
func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) validateRequest(req *model.MedicineRequest) error {
	if req == nil {
		return model.NewValidationError("Request body is required")
	}
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}
	if req.Price.IsNegative() {
		return model.NewValidationError("price must be at least 0")
	}
	if req.Price.Round(2).GreaterThanOrEqual(maxPrice) {
		return model.NewValidationError("price must be below " + maxPrice.String())
	}
	return nil
}

func applyMedicineRequest(m *model.Medicine, req *model.MedicineRequest, now time.Time) {
	m.Name = strings.TrimSpace(req.Name)
	m.Description = req.Description
	m.Category = strings.TrimSpace(req.Category)
	m.Price = req.Price.Round(2)
	m.Stock = *req.Stock
	m.Manufacturer = req.Manufacturer
	m.ImageURL = req.ImageURL
	m.RequiresPrescription = req.RequiresPrescription
	m.UpdatedAt = now
}

// parseExpiry accepts a calendar date or an RFC 3339 timestamp and keeps the date.
func parseExpiry(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, model.NewValidationError("expiryDate must be a date (YYYY-MM-DD)")
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
