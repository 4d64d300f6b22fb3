package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// TracingRepository wraps a domain.Repository with a span per store call.
// Repositories handed out by Transaction are wrapped as well.
type TracingRepository struct {
	inner domain.Repository
}

// NewTracingRepository creates a new repository with tracing
func NewTracingRepository(inner domain.Repository) *TracingRepository {
	return &TracingRepository{inner: inner}
}

func (r *TracingRepository) Stock() domain.StockRepository {
	return &tracingStockRepository{inner: r.inner.Stock()}
}

func (r *TracingRepository) Reservations() domain.ReservationRepository {
	return &tracingReservationRepository{inner: r.inner.Reservations()}
}

func (r *TracingRepository) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	ctx, span := tracer.Start(ctx, "repository.Transaction")
	defer span.End()

	err := r.inner.Transaction(ctx, func(tx domain.Repository) error {
		return fn(&TracingRepository{inner: tx})
	})
	addDBErrorToSpan(span, err)
	return err
}

func (r *TracingRepository) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

type tracingStockRepository struct {
	inner domain.StockRepository
}

func (r *tracingStockRepository) Create(ctx context.Context, record *domain.StockRecord) error {
	ctx, span := tracer.Start(ctx, "repository.Stock.Create",
		trace.WithAttributes(
			attribute.Int("stock.product_id", int(record.ProductID)),
			attribute.String("stock.location", record.Location),
			attribute.Int("stock.quantity", record.Quantity),
		),
	)
	defer span.End()

	err := r.inner.Create(ctx, record)
	if err == nil {
		span.SetAttributes(attribute.Int("stock.id", int(record.ID)))
	}
	addDBErrorToSpan(span, err)
	return err
}

func (r *tracingStockRepository) FindByID(ctx context.Context, id uint) (*domain.StockRecord, error) {
	ctx, span := tracer.Start(ctx, "repository.Stock.FindByID",
		trace.WithAttributes(attribute.Int("stock.id", int(id))),
	)
	defer span.End()

	record, err := r.inner.FindByID(ctx, id)
	addDBErrorToSpan(span, err)
	return record, err
}

func (r *tracingStockRepository) FindByProductAndLocation(ctx context.Context, productID uint, location string) (*domain.StockRecord, error) {
	ctx, span := tracer.Start(ctx, "repository.Stock.FindByProductAndLocation",
		trace.WithAttributes(
			attribute.Int("stock.product_id", int(productID)),
			attribute.String("stock.location", location),
		),
	)
	defer span.End()

	record, err := r.inner.FindByProductAndLocation(ctx, productID, location)
	addDBErrorToSpan(span, err)
	return record, err
}

func (r *tracingStockRepository) FindByProductID(ctx context.Context, productID uint) ([]domain.StockRecord, error) {
	ctx, span := tracer.Start(ctx, "repository.Stock.FindByProductID",
		trace.WithAttributes(attribute.Int("stock.product_id", int(productID))),
	)
	defer span.End()

	records, err := r.inner.FindByProductID(ctx, productID)
	span.SetAttributes(attribute.Int("result.count", len(records)))
	addDBErrorToSpan(span, err)
	return records, err
}

func (r *tracingStockRepository) SumAvailable(ctx context.Context, productID uint) (int, error) {
	ctx, span := tracer.Start(ctx, "repository.Stock.SumAvailable",
		trace.WithAttributes(attribute.Int("stock.product_id", int(productID))),
	)
	defer span.End()

	total, err := r.inner.SumAvailable(ctx, productID)
	span.SetAttributes(attribute.Int("stock.available", total))
	addDBErrorToSpan(span, err)
	return total, err
}

func (r *tracingStockRepository) AdjustQuantity(ctx context.Context, id uint, delta int, at time.Time) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.Stock.AdjustQuantity",
		trace.WithAttributes(
			attribute.Int("stock.id", int(id)),
			attribute.Int("quantity.delta", delta),
		),
	)
	defer span.End()

	ok, err := r.inner.AdjustQuantity(ctx, id, delta, at)
	span.SetAttributes(attribute.Bool("update.applied", ok))
	addDBErrorToSpan(span, err)
	return ok, err
}

func (r *tracingStockRepository) IncrementReserved(ctx context.Context, productID, id uint, amount int, at time.Time) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.Stock.IncrementReserved",
		trace.WithAttributes(
			attribute.Int("stock.id", int(id)),
			attribute.Int("reserved.amount", amount),
		),
	)
	defer span.End()

	ok, err := r.inner.IncrementReserved(ctx, productID, id, amount, at)
	span.SetAttributes(attribute.Bool("update.applied", ok))
	addDBErrorToSpan(span, err)
	return ok, err
}

func (r *tracingStockRepository) DecrementReserved(ctx context.Context, productID, id uint, amount int, at time.Time) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.Stock.DecrementReserved",
		trace.WithAttributes(
			attribute.Int("stock.id", int(id)),
			attribute.Int("reserved.amount", amount),
		),
	)
	defer span.End()

	ok, err := r.inner.DecrementReserved(ctx, productID, id, amount, at)
	span.SetAttributes(attribute.Bool("update.applied", ok))
	addDBErrorToSpan(span, err)
	return ok, err
}

type tracingReservationRepository struct {
	inner domain.ReservationRepository
}

func (r *tracingReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	ctx, span := tracer.Start(ctx, "repository.Reservations.Create",
		trace.WithAttributes(
			attribute.String("reservation.id", reservation.ID),
			attribute.String("reservation.order_id", reservation.OrderID),
			attribute.Int("reservation.allocations", len(reservation.Allocations)),
		),
	)
	defer span.End()

	err := r.inner.Create(ctx, reservation)
	addDBErrorToSpan(span, err)
	return err
}

func (r *tracingReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	ctx, span := tracer.Start(ctx, "repository.Reservations.FindByID",
		trace.WithAttributes(attribute.String("reservation.id", id)),
	)
	defer span.End()

	reservation, err := r.inner.FindByID(ctx, id)
	addDBErrorToSpan(span, err)
	return reservation, err
}

func (r *tracingReservationRepository) FindActiveByOrderID(ctx context.Context, orderID string) ([]domain.Reservation, error) {
	ctx, span := tracer.Start(ctx, "repository.Reservations.FindActiveByOrderID",
		trace.WithAttributes(attribute.String("reservation.order_id", orderID)),
	)
	defer span.End()

	reservations, err := r.inner.FindActiveByOrderID(ctx, orderID)
	span.SetAttributes(attribute.Int("result.count", len(reservations)))
	addDBErrorToSpan(span, err)
	return reservations, err
}

func (r *tracingReservationRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	ctx, span := tracer.Start(ctx, "repository.Reservations.FindExpired",
		trace.WithAttributes(attribute.Int("query.limit", limit)),
	)
	defer span.End()

	reservations, err := r.inner.FindExpired(ctx, now, limit)
	span.SetAttributes(attribute.Int("result.count", len(reservations)))
	addDBErrorToSpan(span, err)
	return reservations, err
}

func (r *tracingReservationRepository) Deactivate(ctx context.Context, id string, status domain.ReservationStatus, at time.Time, requireExpired bool) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.Reservations.Deactivate",
		trace.WithAttributes(
			attribute.String("reservation.id", id),
			attribute.String("reservation.status", string(status)),
		),
	)
	defer span.End()

	ok, err := r.inner.Deactivate(ctx, id, status, at, requireExpired)
	span.SetAttributes(attribute.Bool("update.applied", ok))
	addDBErrorToSpan(span, err)
	return ok, err
}

// addDBErrorToSpan marks the span failed. NotFound is an expected outcome and
// stays unmarked.
func addDBErrorToSpan(span trace.Span, err error) {
	if err == nil || domain.KindOf(err) == "not_found" {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
