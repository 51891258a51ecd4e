package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"medikart/internal/idempotency"
	"medikart/internal/model"
	"medikart/internal/policy"
	"medikart/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo    repository.OrderRepository
	medicineRepo repository.MedicineRepository
	userRepo     repository.UserRepository
	keys         idempotency.Store
	validate     *validator.Validate
	logger       zerolog.Logger
}

// NewOrderService creates a new order service. keys may be nil, in which
// case idempotency keys are ignored.
func NewOrderService(
	orderRepo repository.OrderRepository,
	medicineRepo repository.MedicineRepository,
	userRepo repository.UserRepository,
	keys idempotency.Store,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		medicineRepo: medicineRepo,
		userRepo:     userRepo,
		keys:         keys,
		validate:     newValidator(),
		logger:       logger.With().Str("service", "order").Logger(),
	}
}

type orderLine struct {
	position   int
	medicineID uuid.UUID
	quantity   int
}

// CreateOrder reserves stock for every line item in one transaction and
// places the order. Either every reservation and the order are committed,
// or nothing is.
func (s *orderService) CreateOrder(
	ctx context.Context,
	caller *model.User,
	req *model.OrderRequest,
	idempotencyKey string,
) (resp *model.OrderResponse, err error) {
	if caller == nil {
		return nil, model.ErrUnauthorised
	}

	lines, err := s.validateOrderRequest(req)
	if err != nil {
		return nil, err
	}

	if key := strings.TrimSpace(idempotencyKey); key != "" && s.keys != nil {
		scoped := "order:" + caller.ID.String() + ":" + key
		reserved, kerr := s.keys.Reserve(ctx, scoped)
		if kerr != nil {
			s.logger.Error().Err(kerr).Msg("failed to reserve idempotency key")
			return nil, fmt.Errorf("failed to create order: %w", kerr)
		}
		if !reserved {
			s.logger.Warn().
				Str("user_id", caller.ID.String()).
				Str("idempotency_key", key).
				Msg("duplicate order request")
			return nil, model.ErrDuplicateRequest
		}

		// A failed attempt frees the key so the client can retry.
		defer func() {
			if err != nil {
				if rerr := s.keys.Release(context.WithoutCancel(ctx), scoped); rerr != nil {
					s.logger.Error().Err(rerr).Msg("failed to release idempotency key")
				}
			}
		}()
	}

	// Lock medicine rows in a consistent order across concurrent checkouts.
	sort.SliceStable(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].medicineID[:], lines[j].medicineID[:]) < 0
	})

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now().UTC()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          caller.ID,
		TotalAmount:     decimal.Zero,
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		Phone:           strings.TrimSpace(req.Phone),
		Status:          model.StatusPlaced,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	items := make([]model.OrderItem, len(lines))
	reserved := make(map[uuid.UUID]*model.Medicine, len(lines))
	for _, line := range lines {
		m, rerr := s.medicineRepo.ReserveStock(ctx, tx, line.medicineID, line.quantity)
		if rerr != nil {
			err = rerr
			if _, ok := model.AsDomainError(err); ok {
				s.logger.Warn().
					Err(err).
					Str("medicine_id", line.medicineID.String()).
					Int("quantity", line.quantity).
					Msg("stock reservation refused")
				return nil, err
			}
			s.logger.Error().Err(err).Str("medicine_id", line.medicineID.String()).Msg("failed to reserve stock")
			return nil, fmt.Errorf("failed to create order: %w", err)
		}

		reserved[m.ID] = m
		item := model.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			MedicineID: m.ID,
			Position:   line.position,
			Quantity:   line.quantity,
			Price:      m.Price,
		}
		items[line.position] = item
		order.TotalAmount = order.TotalAmount.Add(item.Subtotal())
	}

	// Carts total in binary floating point, so compare at cent precision.
	if req.TotalAmount != nil && !req.TotalAmount.Round(2).Equal(order.TotalAmount) {
		s.logger.Warn().
			Str("client_total", req.TotalAmount.String()).
			Str("computed_total", order.TotalAmount.String()).
			Msg("order total does not match catalogue prices")
		err = model.ErrPriceChanged
		return nil, err
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", caller.ID.String()).
		Int("item_count", len(items)).
		Str("total", order.TotalAmount.String()).
		Msg("order placed")

	return buildOrderResponse(*order, items, reserved, summaryOf(caller)), nil
}

// GetByID retrieves an order visible to the caller.
func (s *orderService) GetByID(ctx context.Context, caller *model.User, id uuid.UUID) (*model.OrderResponse, error) {
	if caller == nil {
		return nil, model.ErrUnauthorised
	}

	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if !caller.IsAdmin() && order.UserID != caller.ID {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("user_id", caller.ID.String()).
			Msg("order access denied")
		return nil, model.ErrForbidden
	}

	responses, err := s.resolve(ctx, []model.Order{*order}, items)
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// List retrieves every order for admins and the caller's own otherwise, newest first.
func (s *orderService) List(ctx context.Context, caller *model.User) ([]model.OrderResponse, error) {
	if caller == nil {
		return nil, model.ErrUnauthorised
	}

	var owner *uuid.UUID
	if !caller.IsAdmin() {
		owner = &caller.ID
	}

	orders, items, err := s.orderRepo.List(ctx, owner)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return s.resolve(ctx, orders, items)
}

// UpdateStatus locks the order, applies the transition policy and, on the
// PLACED to REJECTED or CANCELLED edges, returns reserved stock in the same
// transaction.
func (s *orderService) UpdateStatus(
	ctx context.Context,
	caller *model.User,
	id uuid.UUID,
	req *model.StatusUpdateRequest,
) (resp *model.OrderResponse, err error) {
	if caller == nil {
		return nil, model.ErrUnauthorised
	}
	if req == nil {
		return nil, model.NewValidationError("Request body is required")
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	target, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, items, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	from := order.Status
	isOwner := order.UserID == caller.ID
	switch decision := policy.CanTransition(caller.Role, isOwner, from, target); decision {
	case policy.Allow:
	case policy.Forbidden:
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("user_id", caller.ID.String()).
			Str("from", string(from)).
			Str("to", string(target)).
			Msg("transition forbidden")
		err = model.ErrForbidden
		return nil, err
	default:
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(from)).
			Str("to", string(target)).
			Msg("illegal transition")
		err = model.ErrIllegalTransition
		return nil, err
	}

	var reason *string
	if target == model.StatusRejected {
		trimmed := strings.TrimSpace(req.RejectionReason)
		if trimmed == "" {
			err = model.ErrRejectionReasonRequired
			return nil, err
		}
		reason = &trimmed
	}

	now := time.Now().UTC()
	updated, err := s.orderRepo.UpdateStatus(ctx, tx, id, from, target, reason, now)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !updated {
		// The row is locked, so this only happens if it changed underneath us.
		err = model.ErrIllegalTransition
		return nil, err
	}

	if policy.ReleasesStock(from, target) {
		for _, item := range items {
			if err = s.medicineRepo.ReleaseStock(ctx, tx, item.MedicineID, item.Quantity); err != nil {
				s.logger.Error().
					Err(err).
					Str("order_id", id.String()).
					Str("medicine_id", item.MedicineID.String()).
					Msg("failed to release stock")
				return nil, fmt.Errorf("failed to release stock: %w", err)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = target
	order.UpdatedAt = now
	if reason != nil {
		order.RejectionReason = reason
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(from)).
		Str("to", string(target)).
		Bool("stock_released", policy.ReleasesStock(from, target)).
		Msg("order status updated")

	responses, err := s.resolve(ctx, []model.Order{*order}, items)
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// resolve attaches owner summaries and medicine records to orders.
func (s *orderService) resolve(ctx context.Context, orders []model.Order, items []model.OrderItem) ([]model.OrderResponse, error) {
	responses := make([]model.OrderResponse, 0, len(orders))
	if len(orders) == 0 {
		return responses, nil
	}

	medicineIDs := make([]uuid.UUID, 0, len(items))
	seenMedicine := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !seenMedicine[item.MedicineID] {
			seenMedicine[item.MedicineID] = true
			medicineIDs = append(medicineIDs, item.MedicineID)
		}
	}

	medicines, err := s.medicineRepo.GetByIDs(ctx, medicineIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve medicine details")
		return nil, fmt.Errorf("failed to retrieve medicine details: %w", err)
	}
	byMedicine := make(map[uuid.UUID]*model.Medicine, len(medicines))
	for i := range medicines {
		byMedicine[medicines[i].ID] = &medicines[i]
	}

	userIDs := make([]uuid.UUID, 0, len(orders))
	seenUser := make(map[uuid.UUID]bool, len(orders))
	for _, o := range orders {
		if !seenUser[o.UserID] {
			seenUser[o.UserID] = true
			userIDs = append(userIDs, o.UserID)
		}
	}

	summaries, err := s.userRepo.GetSummaries(ctx, userIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve order owners")
		return nil, fmt.Errorf("failed to retrieve order owners: %w", err)
	}
	byUser := make(map[uuid.UUID]*model.UserSummary, len(summaries))
	for i := range summaries {
		byUser[summaries[i].ID] = &summaries[i]
	}

	itemsByOrder := make(map[uuid.UUID][]model.OrderItem, len(orders))
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	for _, o := range orders {
		responses = append(responses, *buildOrderResponse(o, itemsByOrder[o.ID], byMedicine, byUser[o.UserID]))
	}
	return responses, nil
}

func buildOrderResponse(
	order model.Order,
	items []model.OrderItem,
	medicines map[uuid.UUID]*model.Medicine,
	owner *model.UserSummary,
) *model.OrderResponse {
	resp := &model.OrderResponse{
		Order: order,
		User:  owner,
		Items: make([]model.OrderItemResponse, len(items)),
	}
	for i, item := range items {
		resp.Items[i] = model.OrderItemResponse{
			Medicine: medicines[item.MedicineID],
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}
	return resp
}

func summaryOf(u *model.User) *model.UserSummary {
	return &model.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// validateOrderRequest checks the payload and parses medicine references.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) ([]orderLine, error) {
	if req == nil {
		return nil, model.NewValidationError("Request body is required")
	}
	if len(req.Items) == 0 {
		return nil, model.NewValidationError("Order must contain at least one item")
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	lines := make([]orderLine, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("medicine_id", item.MedicineID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return nil, model.ErrInvalidQuantity
		}
		if item.Quantity > math.MaxInt32 {
			return nil, model.NewDomainError(model.KindValidation, model.ErrCodeInvalidQuantity,
				fmt.Sprintf("items[%d].quantity must be at most %d", i, math.MaxInt32))
		}

		id, err := uuid.Parse(item.MedicineID)
		if err != nil {
			return nil, model.NewValidationError(fmt.Sprintf("items[%d].medicine is not a valid identifier", i))
		}
		lines[i] = orderLine{position: i, medicineID: id, quantity: item.Quantity}
	}

	if req.TotalAmount != nil && req.TotalAmount.IsNegative() {
		return nil, model.NewValidationError("totalAmount must be at least 0")
	}

	return lines, nil
}
