package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/vitcanteen/canteen-backend/internal/cache"
	"github.com/vitcanteen/canteen-backend/internal/config"
	"github.com/vitcanteen/canteen-backend/internal/dto"
	"github.com/vitcanteen/canteen-backend/internal/metrics"
	"github.com/vitcanteen/canteen-backend/internal/models"
	"github.com/vitcanteen/canteen-backend/internal/repository"
)

// OrderStore is the persistence the lifecycle service needs.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (*models.Order, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Placeholder payer shown when the ordering user's profile cannot be read.
const placeholderStudentName = "Student"

// OrderService owns the order lifecycle: creation, status transitions and
// the queries the polling views run. It is the only writer of orders.
type OrderService struct {
	orders     OrderStore
	users      UserLookup
	snapshots  cache.OrderCache
	pricing    *Pricing
	validity   time.Duration
	totalCheck string
	now        func() time.Time
}

type OrderOption func(*OrderService)

// WithClock replaces the wall clock used for order timestamps.
func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(
	orders OrderStore,
	users UserLookup,
	snapshots cache.OrderCache,
	pricing *Pricing,
	cfg *config.Config,
	opts ...OrderOption,
) *OrderService {
	if snapshots == nil {
		snapshots = cache.Noop{}
	}
	s := &OrderService{
		orders:     orders,
		users:      users,
		snapshots:  snapshots,
		pricing:    pricing,
		validity:   cfg.OrderValidity,
		totalCheck: cfg.TotalCheck,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates a cart snapshot and stores it as a new pending order. The
// items array is stored exactly as submitted. An identified caller may only
// order for themselves, and the owner may not order at all.
func (s *OrderService) Create(ctx context.Context, caller Caller, req *dto.CreateOrderRequest) (*models.Order, *dto.Receipt, error) {
	userID, items, total, err := s.validateCreate(req)
	if err != nil {
		return nil, nil, err
	}
	if !caller.IsAnonymous() && (caller.IsOwner() || caller.UserID != userID) {
		return nil, nil, fmt.Errorf("%w: orders can only be placed for yourself", ErrUnauthorized)
	}

	method := models.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod)))
	if method == "" {
		method = models.PaymentCash
	}
	if !validPaymentMethod(method) {
		return nil, nil, invalidOrder("unsupported payment method %q", req.PaymentMethod)
	}

	paymentStatus := strings.TrimSpace(req.PaymentStatus)
	if paymentStatus == "" {
		paymentStatus = models.PaymentStatusCash
		if method != models.PaymentCash {
			paymentStatus = models.PaymentStatusPaid
		}
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Items:         items,
		Total:         total,
		Status:        models.StatusPending,
		PaymentMethod: method,
		PaymentStatus: paymentStatus,
		PaymentTime:   now,
		ValidTillTime: now.Add(s.validity),
		PaymentData:   datatypes.NewJSONType(s.payerSnapshot(ctx, userID)),
		CreatedAt:     now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, nil, storageError("create order", err)
	}

	s.snapshots.Invalidate(ctx, cache.AllOrdersKey(), cache.UserOrdersKey(userID))
	metrics.OrdersCreated.WithLabelValues(string(method)).Inc()
	slog.Info("order created", "order_id", order.ID.String(), "user_id", userID.String(),
		"total", total, "payment_method", string(method))

	return order, BuildReceipt(order), nil
}

func (s *OrderService) validateCreate(req *dto.CreateOrderRequest) (uuid.UUID, datatypes.JSON, float64, error) {
	rawID := strings.TrimSpace(req.UserID)
	if rawID == "" {
		return uuid.Nil, nil, 0, invalidOrder("userId is required")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, nil, 0, invalidOrder("userId is malformed")
	}

	submitted, err := req.LineItems()
	if err != nil {
		return uuid.Nil, nil, 0, invalidOrder("items must be an array of cart entries")
	}
	if len(submitted) == 0 {
		return uuid.Nil, nil, 0, invalidOrder("items must not be empty")
	}
	items := make([]models.LineItem, 0, len(submitted))
	for i, it := range submitted {
		if strings.TrimSpace(it.Name) == "" {
			return uuid.Nil, nil, 0, invalidOrder("item %d has no name", i)
		}
		if it.Quantity < 1 {
			return uuid.Nil, nil, 0, invalidOrder("item %d quantity must be at least 1", i)
		}
		if it.UnitPrice < 0 {
			return uuid.Nil, nil, 0, invalidOrder("item %d price must not be negative", i)
		}
		items = append(items, it.ToModel())
	}

	if req.Total == nil {
		return uuid.Nil, nil, 0, invalidOrder("total must be a positive amount")
	}
	rounded := decimal.NewFromFloat(*req.Total).Round(2)
	if !rounded.IsPositive() {
		return uuid.Nil, nil, 0, invalidOrder("total must be a positive amount")
	}
	total := rounded.InexactFloat64()

	if s.totalCheck != config.TotalCheckOff && !s.pricing.Matches(items, total) {
		expected := s.pricing.Total(items).StringFixed(2)
		if s.totalCheck == config.TotalCheckReject {
			return uuid.Nil, nil, 0, invalidOrder("total %.2f does not match items (expected %s)", total, expected)
		}
		metrics.TotalMismatches.Inc()
		slog.Warn("order total differs from recomputed total",
			"user_id", userID.String(), "total", total, "expected", expected)
	}

	trimmed := bytes.TrimSpace(req.Items)
	raw := make(datatypes.JSON, len(trimmed))
	copy(raw, trimmed)
	return userID, raw, total, nil
}

// payerSnapshot never fails: a missing or unreadable profile yields the
// placeholder so ordering is not blocked by a stale user row.
func (s *OrderService) payerSnapshot(ctx context.Context, userID uuid.UUID) models.PaymentData {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			slog.Warn("payer lookup failed, using placeholder", "user_id", userID.String(), "error", err)
		}
		return models.PaymentData{StudentName: placeholderStudentName}
	}
	name := user.FullName
	if name == "" {
		name = placeholderStudentName
	}
	return models.PaymentData{StudentName: name, StudentEmail: user.Email}
}

func validPaymentMethod(m models.PaymentMethod) bool {
	switch m {
	case models.PaymentCash, models.PaymentUPI, models.PaymentGPay, models.PaymentPhonePe:
		return true
	}
	return false
}

// UpdateStatus moves an order along the lifecycle graph on behalf of caller.
// The precondition check and the write happen in one conditional update.
func (s *OrderService) UpdateStatus(ctx context.Context, caller Caller, orderID uuid.UUID, status string) (*models.Order, error) {
	order, err := s.updateStatus(ctx, caller, orderID, status)
	metrics.OrderTransitions.WithLabelValues(transitionLabel(status), resultLabel(err)).Inc()
	return order, err
}

func (s *OrderService) updateStatus(ctx context.Context, caller Caller, orderID uuid.UUID, status string) (*models.Order, error) {
	target, e, err := parseTarget(status)
	if err != nil {
		return nil, err
	}

	switch e.by {
	case actorOwner:
		if !caller.IsOwner() {
			return nil, fmt.Errorf("%w: only the owner can mark orders %s", ErrUnauthorized, target)
		}
	case actorOwningStudent:
		if caller.IsOwner() || caller.UserID == uuid.Nil {
			return nil, fmt.Errorf("%w: only the ordering student can cancel", ErrUnauthorized)
		}
		current, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, s.lookupError(err)
		}
		if current.UserID != caller.UserID {
			return nil, fmt.Errorf("%w: only the ordering student can cancel", ErrUnauthorized)
		}
		if !canTransition(current.Status, target) {
			return nil, illegalTransition(current.Status, target)
		}
	}

	updated, err := s.orders.TransitionStatus(ctx, orderID, e.from, target)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, illegalTransition(updated.Status, target)
		}
		return nil, s.lookupError(err)
	}

	s.snapshots.Invalidate(ctx, cache.AllOrdersKey(), cache.UserOrdersKey(updated.UserID))
	slog.Info("order status updated", "order_id", orderID.String(),
		"from", string(e.from), "to", string(target), "by", string(caller.Role))
	return updated, nil
}

// Cancel withdraws a pending order on behalf of the student who placed it.
func (s *OrderService) Cancel(ctx context.Context, caller Caller, orderID uuid.UUID) (*models.Order, error) {
	return s.UpdateStatus(ctx, caller, orderID, string(models.StatusCancelled))
}

func (s *OrderService) lookupError(err error) error {
	if errors.Is(err, repository.ErrOrderNotFound) {
		return fmt.Errorf("order %w", ErrNotFound)
	}
	return storageError("order lookup", err)
}

// ListAll returns every order newest first. Owner only.
func (s *OrderService) ListAll(ctx context.Context, caller Caller) ([]models.Order, error) {
	if !caller.IsOwner() {
		return nil, ErrUnauthorized
	}

	key := cache.AllOrdersKey()
	if orders, ok := s.snapshots.GetList(ctx, key); ok {
		return orders, nil
	}
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, storageError("list orders", err)
	}
	s.snapshots.SetList(ctx, key, orders)
	return orders, nil
}

// ListForUser returns one student's orders newest first. An identified
// student may only read their own list; an anonymous caller gets exactly the
// requested user's rows.
func (s *OrderService) ListForUser(ctx context.Context, caller Caller, userID uuid.UUID) ([]models.Order, error) {
	if !caller.IsAnonymous() && !caller.IsOwner() && caller.UserID != userID {
		return nil, ErrUnauthorized
	}

	key := cache.UserOrdersKey(userID)
	if orders, ok := s.snapshots.GetList(ctx, key); ok {
		return orders, nil
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError("list user orders", err)
	}
	s.snapshots.SetList(ctx, key, orders)
	return orders, nil
}

func transitionLabel(status string) string {
	if st, ok := ParseStatus(status); ok {
		return string(st)
	}
	return "invalid"
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrIllegalTransition):
		return "illegal_transition"
	default:
		return "storage_failure"
	}
}
