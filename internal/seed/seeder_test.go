package seed

import (
	"context"
	"errors"
	"testing"

	"medikart/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMedicineStore struct {
	mock.Mock
}

func (m *MockMedicineStore) UpsertByName(ctx context.Context, medicine *model.Medicine) error {
	args := m.Called(ctx, medicine)
	return args.Error(0)
}

type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) Upsert(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type stubHasher struct {
	err error
}

func (h stubHasher) Hash(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + password, nil
}

func TestSeeder_SeedAccounts(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountStore)

	accounts.On("Upsert", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "admin@demo.com" && u.Role == model.RoleAdmin && u.PasswordHash == "hashed:admin123"
	})).Return(nil).Once()
	accounts.On("Upsert", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "user@demo.com" && u.Role == model.RoleUser
	})).Return(nil).Once()

	seeder := NewSeeder(new(MockMedicineStore), accounts, stubHasher{}, zerolog.Nop())

	err := seeder.SeedAccounts(ctx, []Account{
		{Name: "Admin User", Email: " Admin@Demo.com ", Password: "admin123", Role: model.RoleAdmin},
		{Name: "Demo User", Email: "user@demo.com", Password: "user123", Role: model.RoleUser},
	})

	require.NoError(t, err)
	accounts.AssertExpectations(t)
}

func TestSeeder_SeedAccounts_HashFails(t *testing.T) {
	accounts := new(MockAccountStore)
	seeder := NewSeeder(new(MockMedicineStore), accounts, stubHasher{err: errors.New("boom")}, zerolog.Nop())

	err := seeder.SeedAccounts(context.Background(), []Account{{Email: "a@b.c", Password: "x"}})

	require.Error(t, err)
	accounts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSeeder_SeedCatalog(t *testing.T) {
	ctx := context.Background()
	medicines := new(MockMedicineStore)
	medicines.On("UpsertByName", ctx, mock.AnythingOfType("*model.Medicine")).Return(nil).Twice()

	seeder := NewSeeder(medicines, new(MockAccountStore), stubHasher{}, zerolog.Nop())

	n, err := seeder.SeedCatalog(ctx, named("Aspirin", "Cetirizine"))

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	medicines.AssertExpectations(t)
}

func TestSeeder_SeedCatalog_StopsOnError(t *testing.T) {
	ctx := context.Background()
	medicines := new(MockMedicineStore)
	medicines.On("UpsertByName", ctx, mock.MatchedBy(func(m *model.Medicine) bool { return m.Name == "Aspirin" })).Return(nil)
	medicines.On("UpsertByName", ctx, mock.MatchedBy(func(m *model.Medicine) bool { return m.Name == "Cetirizine" })).Return(errors.New("db down"))

	seeder := NewSeeder(medicines, new(MockAccountStore), stubHasher{}, zerolog.Nop())

	n, err := seeder.SeedCatalog(ctx, named("Aspirin", "Cetirizine", "Ibuprofen"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cetirizine")
	assert.Equal(t, 1, n)
}
