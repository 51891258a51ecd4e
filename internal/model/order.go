package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPlaced         OrderStatus = "PLACED"
	StatusAccepted       OrderStatus = "ACCEPTED"
	StatusRejected       OrderStatus = "REJECTED"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

// ParseOrderStatus accepts the canonical names and the legacy
// space-separated "OUT FOR DELIVERY" spelling.
func ParseOrderStatus(s string) (OrderStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")

	switch status := OrderStatus(normalized); status {
	case StatusPlaced, StatusAccepted, StatusRejected,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return status, nil
	}
	return "", ErrInvalidStatus
}

// IsTerminal reports whether no further transition may leave this status.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusDelivered || s == StatusCancelled
}

// Order represents a customer order.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	DeliveryAddress string          `json:"deliveryAddress" db:"delivery_address"`
	Phone           string          `json:"phone" db:"phone"`
	Status          OrderStatus     `json:"status" db:"status"`
	RejectionReason *string         `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order. Price is the unit price
// captured when the order was placed.
type OrderItem struct {
	ID         uuid.UUID       `json:"-" db:"id"`
	OrderID    uuid.UUID       `json:"-" db:"order_id"`
	MedicineID uuid.UUID       `json:"medicineId" db:"medicine_id"`
	Position   int             `json:"-" db:"position"`
	Quantity   int             `json:"quantity" db:"quantity"`
	Price      decimal.Decimal `json:"price" db:"price"`
}

// Subtotal returns price × quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalAmount     *decimal.Decimal   `json:"totalAmount,omitempty"`
	DeliveryAddress string             `json:"deliveryAddress" validate:"required"`
	Phone           string             `json:"phone" validate:"required,max=32"`
}

// OrderItemRequest represents a single item in an order request. Price is
// what the client saw in its cart; the server captures the catalogue price.
type OrderItemRequest struct {
	MedicineID string           `json:"medicine" validate:"required"`
	Quantity   int              `json:"quantity"`
	Price      *decimal.Decimal `json:"price,omitempty"`
}

// StatusUpdateRequest is the payload for PUT /orders/{id}/status.
type StatusUpdateRequest struct {
	Status          string `json:"status" validate:"required"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

// OrderItemResponse is a line item with its medicine resolved.
type OrderItemResponse struct {
	Medicine *Medicine       `json:"medicine"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order
	User  *UserSummary        `json:"user,omitempty"`
	Items []OrderItemResponse `json:"items"`
}
