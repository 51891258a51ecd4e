package seed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"medikart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MedicineStore persists catalogue entries keyed by name.
type MedicineStore interface {
	UpsertByName(ctx context.Context, medicine *model.Medicine) error
}

// AccountStore persists accounts keyed by email.
type AccountStore interface {
	Upsert(ctx context.Context, user *model.User) error
}

// PasswordHasher hashes account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Account describes a seeded login.
type Account struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Role     model.Role
}

// Seeder writes demo accounts and catalogue entries.
type Seeder struct {
	medicines MedicineStore
	accounts  AccountStore
	hasher    PasswordHasher
	logger    zerolog.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(medicines MedicineStore, accounts AccountStore, hasher PasswordHasher, logger zerolog.Logger) *Seeder {
	return &Seeder{
		medicines: medicines,
		accounts:  accounts,
		hasher:    hasher,
		logger:    logger.With().Str("component", "seeder").Logger(),
	}
}

// SeedAccounts creates or refreshes each account.
func (s *Seeder) SeedAccounts(ctx context.Context, accounts []Account) error {
	for _, a := range accounts {
		hash, err := s.hasher.Hash(a.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", a.Email, err)
		}

		user := &model.User{
			ID:           uuid.New(),
			Name:         a.Name,
			Email:        strings.ToLower(strings.TrimSpace(a.Email)),
			PasswordHash: hash,
			Phone:        a.Phone,
			Address:      a.Address,
			Role:         a.Role,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.accounts.Upsert(ctx, user); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", a.Email, err)
		}

		s.logger.Info().
			Str("email", user.Email).
			Str("role", string(user.Role)).
			Msg("account seeded")
	}
	return nil
}

// SeedCatalog upserts every medicine by name and returns how many were written.
func (s *Seeder) SeedCatalog(ctx context.Context, medicines []model.Medicine) (int, error) {
	for i := range medicines {
		if err := s.medicines.UpsertByName(ctx, &medicines[i]); err != nil {
			return i, fmt.Errorf("failed to seed medicine %s: %w", medicines[i].Name, err)
		}
	}

	s.logger.Info().Int("medicines", len(medicines)).Msg("catalogue seeded")
	return len(medicines), nil
}

// LoadCatalog loads every file concurrently and merges the results in file
// order. When a name appears in more than one file the later file wins.
func LoadCatalog(ctx context.Context, loader Loader, paths []string, logger zerolog.Logger) ([]model.Medicine, error) {
	logger = logger.With().Str("component", "catalog").Logger()

	type loadResult struct {
		index     int
		medicines []model.Medicine
		err       error
	}

	resultChan := make(chan loadResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			medicines, err := loader.Load(ctx, path)
			resultChan <- loadResult{index: index, medicines: medicines, err: err}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(paths))
	for result := range resultChan {
		results[result.index] = result
	}

	merged := []model.Medicine{}
	position := make(map[string]int)
	for i, result := range results {
		if result.err != nil {
			logger.Error().Err(result.err).Str("file", paths[i]).Msg("failed to load catalogue file")
			return nil, fmt.Errorf("failed to load catalogue file %s: %w", paths[i], result.err)
		}
		for _, m := range result.medicines {
			if at, seen := position[m.Name]; seen {
				merged[at] = m
				continue
			}
			position[m.Name] = len(merged)
			merged = append(merged, m)
		}
	}

	logger.Info().
		Int("file_count", len(paths)).
		Int("medicines", len(merged)).
		Msg("catalogue loaded")

	return merged, nil
}
