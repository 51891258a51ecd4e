package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Medicine represents a catalogue entry.
type Medicine struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	Name                 string          `json:"name" db:"name"`
	Description          string          `json:"description" db:"description"`
	Category             string          `json:"category" db:"category"`
	Price                decimal.Decimal `json:"price" db:"price"`
	Stock                int             `json:"stock" db:"stock"`
	Manufacturer         string          `json:"manufacturer" db:"manufacturer"`
	ExpiryDate           time.Time       `json:"expiryDate" db:"expiry_date"`
	ImageURL             string          `json:"imageUrl,omitempty" db:"image_url"`
	RequiresPrescription bool            `json:"requiresPrescription" db:"requires_prescription"`
	CreatedAt            time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time       `json:"updatedAt" db:"updated_at"`
}

// MedicineFilter narrows a catalogue listing.
type MedicineFilter struct {
	Search   string
	Category string
}

// MedicineRequest is the payload for creating or replacing a medicine.
type MedicineRequest struct {
	Name                 string           `json:"name" validate:"required,max=255"`
	Description          string           `json:"description" validate:"required"`
	Category             string           `json:"category" validate:"required,max=100"`
	Price                *decimal.Decimal `json:"price" validate:"required"`
	Stock                *int             `json:"stock" validate:"required,gte=0,lte=2147483647"`
	Manufacturer         string           `json:"manufacturer" validate:"required,max=255"`
	ExpiryDate           string           `json:"expiryDate" validate:"required"` // YYYY-MM-DD or RFC 3339
	ImageURL             string           `json:"imageUrl,omitempty" validate:"omitempty,url"`
	RequiresPrescription bool             `json:"requiresPrescription"`
}
