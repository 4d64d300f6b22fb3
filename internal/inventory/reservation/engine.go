// Package reservation arbitrates which orders may claim stock. A reservation
// is decided and persisted in one store transaction together with the ledger
// increments it causes, and released by replaying its stored allocations.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/ledger"
	"github.com/tair/stock-ledger/internal/inventory/metrics"
	"github.com/tair/stock-ledger/pkg/database"
	"github.com/tair/stock-ledger/pkg/logger"
)

// Release reasons, used for metrics and logs
const (
	ReasonClient         = "client"
	ReasonExpired        = "expired"
	ReasonOrderCancelled = "order_cancelled"
)

// Config tunes the engine
type Config struct {
	// MaxAttempts bounds how often a reservation decision is re-run after
	// losing a race. Values < 1 mean 3.
	MaxAttempts int
	// RetryBackoff is multiplied by the attempt number between attempts.
	RetryBackoff time.Duration
}

// ReserveRequest asks for quantity of a product on behalf of an order
type ReserveRequest struct {
	ProductID uint
	Quantity  int
	OrderID   string
	TTL       time.Duration
}

// ReservationResult reports a reservation decision. Success=false is the
// declined outcome: not enough stock, nothing mutated.
type ReservationResult struct {
	Success           bool
	ReservationID     string
	Reservation       *domain.Reservation
	AvailableQuantity int
	RequestedQuantity int
	Message           string
}

// ReleaseResult reports a release. Released=false means the reservation does
// not exist or was already released; the two are not told apart.
type ReleaseResult struct {
	Released      bool
	ReservationID string
	Reservation   *domain.Reservation
}

// Engine is the reservation engine
type Engine struct {
	repo      domain.Repository
	ledger    *ledger.Ledger
	publisher domain.EventPublisher
	cache     domain.AvailabilityCache
	metrics   *metrics.Metrics
	cfg       Config

	now   func() time.Time
	newID func() string
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the time source used for expiry decisions
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine wires the engine. publisher, cache and m may be nil.
func NewEngine(
	repo domain.Repository,
	l *ledger.Ledger,
	publisher domain.EventPublisher,
	cache domain.AvailabilityCache,
	m *metrics.Metrics,
	cfg Config,
	opts ...Option,
) *Engine {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 10 * time.Millisecond
	}

	e := &Engine{
		repo:      repo,
		ledger:    l,
		publisher: publisher,
		cache:     cache,
		metrics:   m,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reserve claims req.Quantity across the product's stock records
func (e *Engine) Reserve(ctx context.Context, req ReserveRequest) (*ReservationResult, error) {
	if err := validateReserve(req); err != nil {
		return nil, err
	}
	if err := checkExpiry(e.now(), req.TTL); err != nil {
		return nil, err
	}

	var result *ReservationResult
	err := e.withRetry(ctx, "reserve", func() error {
		var err error
		result, err = e.reserveOnce(ctx, req)
		return err
	})
	if err != nil {
		e.metrics.ReservationOutcome(metrics.OutcomeError)
		logger.Error(ctx).
			Err(err).
			Uint("product_id", req.ProductID).
			Str("order_id", req.OrderID).
			Int("quantity", req.Quantity).
			Msg("Reservation failed")
		return nil, err
	}

	if !result.Success {
		e.metrics.ReservationOutcome(metrics.OutcomeDeclined)
		logger.Info(ctx).
			Uint("product_id", req.ProductID).
			Str("order_id", req.OrderID).
			Int("requested", req.Quantity).
			Int("available", result.AvailableQuantity).
			Msg("Reservation declined: insufficient stock")
		return result, nil
	}

	e.metrics.ReservationOutcome(metrics.OutcomeReserved)
	e.invalidate(ctx, req.ProductID)

	r := result.Reservation
	event := domain.StockEvent{
		EventID:       domain.ReservationEventID(r.ID, domain.EventStockReserved),
		EventType:     domain.EventStockReserved,
		ProductID:     r.ProductID,
		Quantity:      r.TotalQuantity,
		ReservationID: r.ID,
		OrderID:       r.OrderID,
		Timestamp:     r.CreatedAt,
	}
	if len(r.Allocations) == 1 {
		event.Location = r.Allocations[0].Location
		event.StockRecordID = r.Allocations[0].StockRecordID
	}
	e.publish(ctx, event)

	logger.Info(ctx).
		Str("reservation_id", r.ID).
		Uint("product_id", r.ProductID).
		Str("order_id", r.OrderID).
		Int("quantity", r.TotalQuantity).
		Int("allocations", len(r.Allocations)).
		Time("expires_at", r.ExpiresAt).
		Msg("Stock reserved")
	return result, nil
}

func validateReserve(req ReserveRequest) error {
	switch {
	case req.ProductID == 0:
		return domain.InvalidArgument("product id is required")
	case req.Quantity <= 0:
		return domain.InvalidArgument("quantity must be positive, got %d", req.Quantity)
	case req.OrderID == "":
		return domain.InvalidArgument("order id is required")
	case req.TTL < 0:
		return domain.InvalidArgument("ttl must not be negative, got %s", req.TTL)
	}
	return nil
}

// reserveOnce is one full decision: read, allocate, apply, persist
func (e *Engine) reserveOnce(ctx context.Context, req ReserveRequest) (*ReservationResult, error) {
	var result *ReservationResult

	err := e.repo.Transaction(ctx, func(tx domain.Repository) error {
		records, err := tx.Stock().FindByProductID(ctx, req.ProductID)
		if err != nil {
			return err
		}

		available := domain.TotalAvailable(records)
		if available < req.Quantity {
			result = &ReservationResult{
				Success:           false,
				AvailableQuantity: available,
				RequestedQuantity: req.Quantity,
				Message:           fmt.Sprintf("insufficient stock: %d available, %d requested", available, req.Quantity),
			}
			return nil
		}

		allocations := Allocate(records, req.Quantity)
		if allocations == nil {
			return domain.InvariantViolation("records report %d available but cannot cover %d", available, req.Quantity)
		}

		if err := e.ledger.WithRepository(tx).ApplyReservationDelta(ctx, req.ProductID, allocations); err != nil {
			return err
		}

		now := e.now()
		reservation := &domain.Reservation{
			ID:            e.newID(),
			ProductID:     req.ProductID,
			TotalQuantity: req.Quantity,
			OrderID:       req.OrderID,
			IsActive:      true,
			Status:        domain.ReservationActive,
			CreatedAt:     now,
			ExpiresAt:     now.Add(req.TTL),
			Allocations:   allocations,
		}
		if err := tx.Reservations().Create(ctx, reservation); err != nil {
			return err
		}

		result = &ReservationResult{
			Success:           true,
			ReservationID:     reservation.ID,
			Reservation:       reservation,
			AvailableQuantity: available,
			RequestedQuantity: req.Quantity,
			Message:           "stock reserved",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// maxExpiryYear is the last year every store and the JSON encoding can hold
const maxExpiryYear = 9999

// checkExpiry rejects TTLs whose expiry would wrap around or leave the
// representable timestamp range.
func checkExpiry(now time.Time, ttl time.Duration) error {
	expiresAt := now.Add(ttl)
	if expiresAt.Before(now) || expiresAt.Year() > maxExpiryYear {
		return domain.InvalidArgument("ttl %s puts expiry outside the supported range", ttl)
	}
	return nil
}

// withRetry re-runs fn while it fails with a conflict or a transient store
// error, up to MaxAttempts.
func (e *Engine) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		reason := retryReason(err)
		if reason == "" || attempt == e.cfg.MaxAttempts {
			return err
		}

		e.metrics.Retry(op, reason)
		logger.Debug(ctx).
			Err(err).
			Str("op", op).
			Str("reason", reason).
			Int("attempt", attempt).
			Msg("Retrying after contention")

		if serr := e.sleep(ctx, time.Duration(attempt)*e.cfg.RetryBackoff); serr != nil {
			return err
		}
	}
	return err
}

func retryReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case database.IsTransient(err):
		return "transient"
	case database.IsDuplicateKey(err):
		return "duplicate_key"
	default:
		return ""
	}
}

// Release returns a reservation's stock to available
func (e *Engine) Release(ctx context.Context, reservationID string) (*ReleaseResult, error) {
	return e.release(ctx, reservationID, domain.ReservationReleased, ReasonClient)
}

// ReleaseExpired releases a reservation only if it is past its expiry
func (e *Engine) ReleaseExpired(ctx context.Context, reservationID string) (*ReleaseResult, error) {
	return e.release(ctx, reservationID, domain.ReservationExpired, ReasonExpired)
}

func (e *Engine) release(ctx context.Context, reservationID string, status domain.ReservationStatus, reason string) (*ReleaseResult, error) {
	if reservationID == "" {
		return nil, domain.InvalidArgument("reservation id is required")
	}

	result := &ReleaseResult{ReservationID: reservationID}
	err := e.withRetry(ctx, "release", func() error {
		released, err := e.releaseOnce(ctx, reservationID, status)
		result.Reservation = released
		result.Released = released != nil
		return err
	})
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Str("reservation_id", reservationID).
			Str("reason", reason).
			Msg("Release failed")
		return nil, err
	}

	if !result.Released {
		e.metrics.Release(reason, metrics.ReleaseNoop)
		logger.Debug(ctx).
			Str("reservation_id", reservationID).
			Str("reason", reason).
			Msg("Reservation not found or already released")
		return result, nil
	}

	e.metrics.Release(reason, metrics.ReleaseApplied)
	r := result.Reservation
	e.invalidate(ctx, r.ProductID)

	eventType := domain.EventStockReleased
	if status == domain.ReservationExpired {
		eventType = domain.EventStockExpired
	}
	event := domain.StockEvent{
		EventID:       domain.ReservationEventID(r.ID, eventType),
		EventType:     eventType,
		ProductID:     r.ProductID,
		Quantity:      r.TotalQuantity,
		ReservationID: r.ID,
		OrderID:       r.OrderID,
		Timestamp:     *r.ReleasedAt,
	}
	if len(r.Allocations) == 1 {
		event.Location = r.Allocations[0].Location
		event.StockRecordID = r.Allocations[0].StockRecordID
	}
	e.publish(ctx, event)

	logger.Info(ctx).
		Str("reservation_id", r.ID).
		Uint("product_id", r.ProductID).
		Str("order_id", r.OrderID).
		Int("quantity", r.TotalQuantity).
		Str("reason", reason).
		Msg("Reservation released")
	return result, nil
}

// releaseOnce flips the reservation inactive and reverses its allocations in
// one transaction. It returns nil when there was nothing to release.
func (e *Engine) releaseOnce(ctx context.Context, reservationID string, status domain.ReservationStatus) (*domain.Reservation, error) {
	var released *domain.Reservation

	err := e.repo.Transaction(ctx, func(tx domain.Repository) error {
		r, err := tx.Reservations().FindByID(ctx, reservationID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		now := e.now()
		ok, err := tx.Reservations().Deactivate(ctx, reservationID, status, now, status == domain.ReservationExpired)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := e.ledger.WithRepository(tx).ReverseReservationDelta(ctx, r.ProductID, r.Allocations); err != nil {
			return err
		}

		r.IsActive = false
		r.Status = status
		r.ReleasedAt = &now
		released = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

// ReleaseByOrder releases every active reservation of an order and returns
// how many it released.
func (e *Engine) ReleaseByOrder(ctx context.Context, orderID string) (int, error) {
	if orderID == "" {
		return 0, domain.InvalidArgument("order id is required")
	}

	reservations, err := e.repo.Reservations().FindActiveByOrderID(ctx, orderID)
	if err != nil {
		return 0, err
	}

	released := 0
	var errs []error
	for _, r := range reservations {
		res, err := e.release(ctx, r.ID, domain.ReservationReleased, ReasonOrderCancelled)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if res.Released {
			released++
		}
	}
	return released, errors.Join(errs...)
}

// GetReservation returns a reservation with its allocations
func (e *Engine) GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	if reservationID == "" {
		return nil, domain.InvalidArgument("reservation id is required")
	}
	return e.repo.Reservations().FindByID(ctx, reservationID)
}

// ExpiredReservations lists up to limit active reservations due for expiry
func (e *Engine) ExpiredReservations(ctx context.Context, limit int) ([]domain.Reservation, error) {
	return e.repo.Reservations().FindExpired(ctx, e.now(), limit)
}

func (e *Engine) invalidate(ctx context.Context, productID uint) {
	if e.cache != nil {
		e.cache.Invalidate(ctx, productID)
	}
}

func (e *Engine) publish(ctx context.Context, event domain.StockEvent) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.metrics.PublishFailure(string(event.EventType))
		logger.Warn(ctx).
			Err(err).
			Str("event_id", event.EventID).
			Str("event_type", string(event.EventType)).
			Msg("Failed to publish event")
	}
}
