package handler

import (
	"net/http"
	"strings"

	"medikart/internal/model"
	"medikart/internal/service"

	"github.com/rs/zerolog"
)

// IdempotencyKeyHeader names the optional checkout idempotency header.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	order, err := h.service.CreateOrder(r.Context(), user, &req, key)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	orders, err := h.service.List(r.Context(), user)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.OrderResponse{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), user, id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PUT /orders/{id}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), user, id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
