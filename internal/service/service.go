package service

import (
	"context"

	"medikart/internal/model"

	"github.com/google/uuid"
)

// AuthService handles account registration and bearer token authentication.
type AuthService interface {
	// Register creates a user account and returns it with a fresh token.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login checks credentials and returns the user with a fresh token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	// Authenticate verifies a token and loads the user it was issued for.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// CatalogService defines operations for medicine catalogue management.
type CatalogService interface {
	// List retrieves medicines matching the filter.
	List(ctx context.Context, filter model.MedicineFilter) ([]model.Medicine, error)

	// GetByID retrieves a single medicine.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Medicine, error)

	// Create adds a medicine to the catalogue.
	Create(ctx context.Context, req *model.MedicineRequest) (*model.Medicine, error)

	// Update replaces a medicine's fields.
	Update(ctx context.Context, id uuid.UUID, req *model.MedicineRequest) (*model.Medicine, error)

	// Delete removes a medicine that no order references.
	Delete(ctx context.Context, id uuid.UUID) error

	// Categories returns the distinct categories.
	Categories(ctx context.Context) ([]string, error)
}

// OrderService defines the order lifecycle.
type OrderService interface {
	// CreateOrder reserves stock for every line item and places the order.
	// A non-empty idempotencyKey rejects a repeat while the first is live.
	CreateOrder(ctx context.Context, caller *model.User, req *model.OrderRequest, idempotencyKey string) (*model.OrderResponse, error)

	// GetByID retrieves an order visible to the caller.
	GetByID(ctx context.Context, caller *model.User, id uuid.UUID) (*model.OrderResponse, error)

	// List retrieves every order for admins and the caller's own otherwise.
	List(ctx context.Context, caller *model.User) ([]model.OrderResponse, error)

	// UpdateStatus applies a status transition.
	UpdateStatus(ctx context.Context, caller *model.User, id uuid.UUID, req *model.StatusUpdateRequest) (*model.OrderResponse, error)
}

// StatsService exposes the admin dashboard counters.
type StatsService interface {
	AdminStats(ctx context.Context) (*model.AdminStats, error)
}
