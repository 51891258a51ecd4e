package repository

import (
	"context"
	"time"

	"medikart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MedicineRepository defines the interface for catalogue data access operations.
type MedicineRepository interface {
	// List retrieves medicines matching the filter, ordered by name.
	List(ctx context.Context, filter model.MedicineFilter) ([]model.Medicine, error)

	// GetByID retrieves a single medicine by its ID. Returns nil when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Medicine, error)

	// GetByIDs retrieves multiple medicines by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Medicine, error)

	// Create inserts a new medicine.
	Create(ctx context.Context, medicine *model.Medicine) error

	// Update replaces the mutable fields of a medicine. Returns false when missing.
	Update(ctx context.Context, medicine *model.Medicine) (bool, error)

	// Delete removes a medicine. Returns false when missing.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Categories returns the distinct categories, sorted.
	Categories(ctx context.Context) ([]string, error)

	// UpsertByName inserts a medicine or refreshes the one with the same name.
	UpsertByName(ctx context.Context, medicine *model.Medicine) error

	// ReserveStock decrements stock by quantity only if enough is available,
	// within the provided transaction, and returns the updated medicine.
	ReserveStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (*model.Medicine, error)

	// ReleaseStock adds quantity back to stock within the provided transaction.
	ReleaseStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetForUpdate retrieves and row-locks an order within the provided transaction.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// List retrieves orders newest first, restricted to userID when not nil,
	// together with the items of every returned order.
	List(ctx context.Context, userID *uuid.UUID) ([]model.Order, []model.OrderItem, error)

	// UpdateStatus moves an order from one status to another within the
	// provided transaction. Returns false if the order was not in from.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to model.OrderStatus, rejectionReason *string, updatedAt time.Time) (bool, error)
}

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a new user. Returns model.ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *model.User) error

	// Upsert inserts a user or refreshes the one with the same email.
	Upsert(ctx context.Context, user *model.User) error

	// GetByID retrieves a user by ID. Returns nil when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail retrieves a user by email. Returns nil when missing.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetSummaries retrieves the owner projection for the given IDs.
	GetSummaries(ctx context.Context, ids []uuid.UUID) ([]model.UserSummary, error)
}

// StatsRepository reads the admin dashboard counters.
type StatsRepository interface {
	AdminStats(ctx context.Context) (*model.AdminStats, error)
}
