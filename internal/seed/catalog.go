package seed

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"medikart/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const expiryLayout = "2006-01-02"

// Loader reads a gzipped catalogue file, one JSON medicine per line.
type Loader interface {
	Load(ctx context.Context, path string) ([]model.Medicine, error)
}

// Entry is one line of a catalogue file.
type Entry struct {
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	Category             string          `json:"category"`
	Price                decimal.Decimal `json:"price"`
	Stock                int             `json:"stock"`
	Manufacturer         string          `json:"manufacturer"`
	ExpiryDate           string          `json:"expiryDate"`
	ImageURL             string          `json:"imageUrl"`
	RequiresPrescription bool            `json:"requiresPrescription"`
}

func (e Entry) toMedicine(now time.Time) (model.Medicine, error) {
	if strings.TrimSpace(e.Name) == "" {
		return model.Medicine{}, fmt.Errorf("name is required")
	}
	if e.Price.IsNegative() {
		return model.Medicine{}, fmt.Errorf("%s: price must not be negative", e.Name)
	}
	if e.Stock < 0 {
		return model.Medicine{}, fmt.Errorf("%s: stock must not be negative", e.Name)
	}

	expiry, err := time.Parse(expiryLayout, e.ExpiryDate)
	if err != nil {
		return model.Medicine{}, fmt.Errorf("%s: invalid expiryDate %q", e.Name, e.ExpiryDate)
	}

	return model.Medicine{
		ID:                   uuid.New(),
		Name:                 strings.TrimSpace(e.Name),
		Description:          e.Description,
		Category:             e.Category,
		Price:                e.Price,
		Stock:                e.Stock,
		Manufacturer:         e.Manufacturer,
		ExpiryDate:           expiry,
		ImageURL:             e.ImageURL,
		RequiresPrescription: e.RequiresPrescription,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// decodeCatalog reads gzipped JSON lines from r. Blank lines are skipped.
func decodeCatalog(ctx context.Context, r io.Reader, source string) ([]model.Medicine, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	now := time.Now().UTC()
	medicines := []model.Medicine{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, lineNo, err)
		}

		m, err := entry.toMedicine(now)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, lineNo, err)
		}
		medicines = append(medicines, m)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading catalogue %s: %w", source, err)
	}

	return medicines, nil
}
