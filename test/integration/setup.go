package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"medikart/internal/auth"
	"medikart/internal/config"
	"medikart/internal/database"
	"medikart/internal/model"
	"medikart/internal/repository"
	"medikart/internal/seed"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// Demo accounts created by SeedAccounts.
const (
	AdminEmail    = "admin@medikart.test"
	AdminPassword = "admin123"
	UserEmail     = "user@medikart.test"
	UserPassword  = "user123"
	OtherEmail    = "other@medikart.test"
	OtherPassword = "other123"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  20,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromConnString(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedAccounts creates the admin and two regular accounts through the seeder.
func SeedAccounts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	logger := zerolog.Nop()
	seeder := seed.NewSeeder(
		repository.NewMedicineRepository(pool, logger),
		repository.NewUserRepository(pool, logger),
		auth.NewHasher(bcrypt.MinCost),
		logger,
	)

	accounts := []seed.Account{
		{Name: "Admin", Email: AdminEmail, Password: AdminPassword, Phone: "9876543210", Address: "Admin Office", Role: model.RoleAdmin},
		{Name: "Demo User", Email: UserEmail, Password: UserPassword, Phone: "9123456780", Address: "123 Main Street", Role: model.RoleUser},
		{Name: "Other User", Email: OtherEmail, Password: OtherPassword, Phone: "9000000000", Address: "456 Side Street", Role: model.RoleUser},
	}
	if err := seeder.SeedAccounts(context.Background(), accounts); err != nil {
		t.Fatalf("failed to seed accounts: %v", err)
	}
}

// SeedMedicine inserts a medicine and returns its id.
func SeedMedicine(t *testing.T, pool *pgxpool.Pool, name, price string, stock int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO medicines (id, name, description, category, price, stock, manufacturer, expiry_date)
		 VALUES ($1, $2, 'test medicine', 'Test', $3, $4, 'Test Labs', '2027-12-31')`,
		id, name, decimal.RequireFromString(price), stock,
	)
	if err != nil {
		t.Fatalf("failed to seed medicine %s: %v", name, err)
	}
	return id
}

// StockOf returns the current stock of a medicine.
func StockOf(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) int {
	t.Helper()

	var stock int
	if err := pool.QueryRow(context.Background(), "SELECT stock FROM medicines WHERE id = $1", id).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "medicines", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
