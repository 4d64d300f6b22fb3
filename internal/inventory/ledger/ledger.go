// Package ledger keeps per-location stock quantities. Every mutation is a
// single guarded UPDATE whose predicate encodes 0 <= reserved <= quantity, so
// concurrent writers can lose a race but never corrupt a record.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/pkg/database"
	"github.com/tair/stock-ledger/pkg/logger"
)

// upsertAttempts bounds retries of a stock-in that lost a first-create race
const upsertAttempts = 3

// Ledger is the stock ledger
type Ledger struct {
	repo domain.Repository
	now  func() time.Time
}

// Option configures a Ledger
type Option func(*Ledger)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func New(repo domain.Repository, opts ...Option) *Ledger {
	l := &Ledger{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithRepository returns a ledger bound to repo, typically a transaction
// handed out by domain.Repository.Transaction.
func (l *Ledger) WithRepository(repo domain.Repository) *Ledger {
	return &Ledger{repo: repo, now: l.now}
}

// UpsertStock adds delta to the (productID, location) record, creating it when
// absent. A blank location means domain.DefaultLocation.
func (l *Ledger) UpsertStock(ctx context.Context, productID uint, location string, delta int) (*domain.StockRecord, error) {
	if productID == 0 {
		return nil, domain.InvalidArgument("product id is required")
	}
	location = strings.TrimSpace(location)
	if location == "" {
		location = domain.DefaultLocation
	}

	var (
		record *domain.StockRecord
		err    error
	)
	for attempt := 1; attempt <= upsertAttempts; attempt++ {
		err = l.repo.Transaction(ctx, func(tx domain.Repository) error {
			record, err = upsert(ctx, tx, productID, location, delta, l.now())
			return err
		})
		if err == nil || !(database.IsDuplicateKey(err) || database.IsTransient(err)) {
			break
		}
		logger.Debug(ctx).
			Err(err).
			Uint("product_id", productID).
			Str("location", location).
			Int("attempt", attempt).
			Msg("Retrying stock upsert")
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func upsert(ctx context.Context, tx domain.Repository, productID uint, location string, delta int, at time.Time) (*domain.StockRecord, error) {
	existing, err := tx.Stock().FindByProductAndLocation(ctx, productID, location)
	if errors.Is(err, domain.ErrNotFound) {
		if delta < 0 {
			return nil, domain.InvalidArgument("stock-out of %d from empty location %s would make quantity negative", -delta, location)
		}
		record := &domain.StockRecord{
			ProductID: productID,
			Location:  location,
			Quantity:  delta,
			Version:   1,
			CreatedAt: at,
			UpdatedAt: at,
		}
		if err := tx.Stock().Create(ctx, record); err != nil {
			return nil, err
		}
		return record, nil
	}
	if err != nil {
		return nil, err
	}

	ok, err := tx.Stock().AdjustQuantity(ctx, existing.ID, delta, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := tx.Stock().FindByID(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if current.Quantity+delta < 0 {
			return nil, domain.InvalidArgument("delta %d would make quantity of record %d negative (quantity %d)",
				delta, current.ID, current.Quantity)
		}
		return nil, domain.InvalidArgument("delta %d would drop quantity of record %d below reserved %d",
			delta, current.ID, current.ReservedQuantity)
	}

	return tx.Stock().FindByID(ctx, existing.ID)
}

// GetStock returns a stock record by id
func (l *Ledger) GetStock(ctx context.Context, id uint) (*domain.StockRecord, error) {
	if id == 0 {
		return nil, domain.InvalidArgument("stock record id is required")
	}
	return l.repo.Stock().FindByID(ctx, id)
}

// ListStock returns a product's records in allocation order
func (l *Ledger) ListStock(ctx context.Context, productID uint) ([]domain.StockRecord, error) {
	if productID == 0 {
		return nil, domain.InvalidArgument("product id is required")
	}
	return l.repo.Stock().FindByProductID(ctx, productID)
}

// AvailableQuantity sums availability across a product's records; 0 when it
// has none.
func (l *Ledger) AvailableQuantity(ctx context.Context, productID uint) (int, error) {
	if productID == 0 {
		return 0, domain.InvalidArgument("product id is required")
	}
	return l.repo.Stock().SumAvailable(ctx, productID)
}

// ApplyReservationDelta moves each allocation's amount from available to
// reserved. It fails with ErrConflict, applying nothing, when any record no
// longer has the amount available.
func (l *Ledger) ApplyReservationDelta(ctx context.Context, productID uint, allocations []domain.Allocation) error {
	if err := validateAllocations(allocations); err != nil {
		return err
	}

	at := l.now()
	return l.repo.Transaction(ctx, func(tx domain.Repository) error {
		for _, a := range allocations {
			ok, err := tx.Stock().IncrementReserved(ctx, productID, a.StockRecordID, a.Amount, at)
			if err != nil {
				return err
			}
			if !ok {
				return domain.Conflict("record %d of product %d no longer has %d available",
					a.StockRecordID, productID, a.Amount)
			}
		}
		return nil
	})
}

// ReverseReservationDelta returns each allocation's amount from reserved to
// available. A record holding less reserved than the allocation means the
// ledger is corrupt; that is reported as ErrInvariantViolation and never
// clamped.
func (l *Ledger) ReverseReservationDelta(ctx context.Context, productID uint, allocations []domain.Allocation) error {
	if err := validateAllocations(allocations); err != nil {
		return err
	}

	at := l.now()
	return l.repo.Transaction(ctx, func(tx domain.Repository) error {
		for _, a := range allocations {
			ok, err := tx.Stock().DecrementReserved(ctx, productID, a.StockRecordID, a.Amount, at)
			if err != nil {
				return err
			}
			if ok {
				continue
			}

			record, err := tx.Stock().FindByID(ctx, a.StockRecordID)
			if err != nil {
				return err
			}
			logger.Error(ctx).
				Uint("stock_record_id", record.ID).
				Uint("product_id", productID).
				Int("reserved_quantity", record.ReservedQuantity).
				Int("amount", a.Amount).
				Msg("Reserved quantity lower than allocation being released")
			return domain.InvariantViolation("record %d has %d reserved, cannot release %d",
				record.ID, record.ReservedQuantity, a.Amount)
		}
		return nil
	})
}

func validateAllocations(allocations []domain.Allocation) error {
	for _, a := range allocations {
		if a.Amount <= 0 {
			return domain.InvalidArgument("allocation amount must be positive, got %d", a.Amount)
		}
	}
	return nil
}
