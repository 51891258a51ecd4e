package repository

import (
	"context"
	"fmt"
	"time"

	"medikart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const medicineColumns = `id, name, description, category, price, stock, manufacturer,
	expiry_date, image_url, requires_prescription, created_at, updated_at`

// medicineRepository implements the MedicineRepository interface using PostgreSQL.
type medicineRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMedicineRepository creates a new PostgreSQL-backed medicine repository.
func NewMedicineRepository(pool *pgxpool.Pool, logger zerolog.Logger) MedicineRepository {
	return &medicineRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "medicine").Logger(),
	}
}

func scanMedicine(row pgx.Row) (*model.Medicine, error) {
	var m model.Medicine
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Description,
		&m.Category,
		&m.Price,
		&m.Stock,
		&m.Manufacturer,
		&m.ExpiryDate,
		&m.ImageURL,
		&m.RequiresPrescription,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medicineRepository) collect(rows pgx.Rows) ([]model.Medicine, error) {
	defer rows.Close()

	medicines := []model.Medicine{}
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan medicine row")
			return nil, fmt.Errorf("failed to scan medicine: %w", err)
		}
		medicines = append(medicines, *m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating medicine rows")
		return nil, fmt.Errorf("error iterating medicines: %w", err)
	}

	return medicines, nil
}

// List retrieves medicines matching the filter, ordered by name.
func (r *medicineRepository) List(ctx context.Context, filter model.MedicineFilter) ([]model.Medicine, error) {
	query := `
		SELECT ` + medicineColumns + `
		FROM medicines
		WHERE ($1 = '' OR name ILIKE $1 OR description ILIKE $1 OR manufacturer ILIKE $1)
		  AND ($2 = '' OR category = $2)
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, likePattern(filter.Search), filter.Category)
	if err != nil {
		r.logger.Error().Err(err).
			Str("search", filter.Search).
			Str("category", filter.Category).
			Msg("failed to query medicines")
		return nil, fmt.Errorf("failed to query medicines: %w", err)
	}

	return r.collect(rows)
}

// GetByID retrieves a single medicine by its ID.
func (r *medicineRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1`

	m, err := scanMedicine(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("medicine_id", id.String()).Msg("medicine not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("medicine_id", id.String()).Msg("failed to query medicine")
		return nil, fmt.Errorf("failed to query medicine: %w", err)
	}

	return m, nil
}

// GetByIDs retrieves multiple medicines by their IDs.
func (r *medicineRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Medicine, error) {
	if len(ids) == 0 {
		return []model.Medicine{}, nil
	}

	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = ANY($1) ORDER BY name`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query medicines by IDs")
		return nil, fmt.Errorf("failed to query medicines by IDs: %w", err)
	}

	return r.collect(rows)
}

// Create inserts a new medicine.
func (r *medicineRepository) Create(ctx context.Context, m *model.Medicine) error {
	query := `
		INSERT INTO medicines (` + medicineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.Name, m.Description, m.Category, m.Price, m.Stock, m.Manufacturer,
		m.ExpiryDate, m.ImageURL, m.RequiresPrescription, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn().Str("name", m.Name).Msg("medicine name already exists")
			return model.ErrMedicineNameTaken
		}
		r.logger.Error().Err(err).Str("medicine_id", m.ID.String()).Msg("failed to create medicine")
		return fmt.Errorf("failed to create medicine: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of a medicine.
func (r *medicineRepository) Update(ctx context.Context, m *model.Medicine) (bool, error) {
	query := `
		UPDATE medicines
		SET name = $2, description = $3, category = $4, price = $5, stock = $6,
		    manufacturer = $7, expiry_date = $8, image_url = $9,
		    requires_prescription = $10, updated_at = $11
		WHERE id = $1
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		m.ID, m.Name, m.Description, m.Category, m.Price, m.Stock, m.Manufacturer,
		m.ExpiryDate, m.ImageURL, m.RequiresPrescription, m.UpdatedAt,
	).Scan(&m.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		if isUniqueViolation(err) {
			r.logger.Warn().Str("medicine_id", m.ID.String()).Str("name", m.Name).Msg("medicine name already exists")
			return false, model.ErrMedicineNameTaken
		}
		r.logger.Error().Err(err).Str("medicine_id", m.ID.String()).Msg("failed to update medicine")
		return false, fmt.Errorf("failed to update medicine: %w", err)
	}

	return true, nil
}

// Delete removes a medicine. Medicines referenced by order items are kept.
func (r *medicineRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			r.logger.Warn().Str("medicine_id", id.String()).Msg("medicine referenced by orders")
			return false, model.ErrMedicineInUse
		}
		r.logger.Error().Err(err).Str("medicine_id", id.String()).Msg("failed to delete medicine")
		return false, fmt.Errorf("failed to delete medicine: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Categories returns the distinct categories, sorted.
func (r *medicineRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM medicines ORDER BY category`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan categories")
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}

	return categories, nil
}

// UpsertByName inserts a medicine or refreshes the one with the same name.
func (r *medicineRepository) UpsertByName(ctx context.Context, m *model.Medicine) error {
	query := `
		INSERT INTO medicines (` + medicineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description,
		    category = EXCLUDED.category,
		    price = EXCLUDED.price,
		    stock = EXCLUDED.stock,
		    manufacturer = EXCLUDED.manufacturer,
		    expiry_date = EXCLUDED.expiry_date,
		    image_url = EXCLUDED.image_url,
		    requires_prescription = EXCLUDED.requires_prescription,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		m.ID, m.Name, m.Description, m.Category, m.Price, m.Stock, m.Manufacturer,
		m.ExpiryDate, m.ImageURL, m.RequiresPrescription, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", m.Name).Msg("failed to upsert medicine")
		return fmt.Errorf("failed to upsert medicine: %w", err)
	}

	return nil
}

// ReserveStock decrements stock in a single conditional statement so that
// concurrent checkouts can never drive it below zero.
func (r *medicineRepository) ReserveStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (*model.Medicine, error) {
	query := `
		UPDATE medicines
		SET stock = stock - $2, updated_at = $3
		WHERE id = $1 AND stock >= $2
		RETURNING ` + medicineColumns

	m, err := scanMedicine(tx.QueryRow(ctx, query, id, quantity, time.Now().UTC()))
	if err == nil {
		return m, nil
	}
	if !isNoRows(err) {
		r.logger.Error().Err(err).Str("medicine_id", id.String()).Msg("failed to reserve stock")
		return nil, fmt.Errorf("failed to reserve stock: %w", err)
	}

	// Nothing updated: either the medicine is gone or stock is short.
	var (
		name  string
		stock int
	)
	err = tx.QueryRow(ctx, `SELECT name, stock FROM medicines WHERE id = $1`, id).Scan(&name, &stock)
	if err != nil {
		if isNoRows(err) {
			return nil, model.NewMedicineNotFoundError(id.String())
		}
		r.logger.Error().Err(err).Str("medicine_id", id.String()).Msg("failed to read stock")
		return nil, fmt.Errorf("failed to read stock: %w", err)
	}

	r.logger.Debug().
		Str("medicine_id", id.String()).
		Int("available", stock).
		Int("requested", quantity).
		Msg("insufficient stock")

	return nil, model.NewInsufficientStockError(name, stock, quantity)
}

// ReleaseStock adds quantity back to stock within the provided transaction.
func (r *medicineRepository) ReleaseStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE medicines SET stock = stock + $2, updated_at = $3 WHERE id = $1`,
		id, quantity, time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("medicine_id", id.String()).Msg("failed to release stock")
		return fmt.Errorf("failed to release stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.NewMedicineNotFoundError(id.String())
	}

	return nil
}
