package domain

import (
	"context"
	"time"
)

// StockRepository defines the contract for stock record data access.
// The guarded mutations report false when their predicate did not hold;
// they never read-then-write.
type StockRepository interface {
	Create(ctx context.Context, record *StockRecord) error
	FindByID(ctx context.Context, id uint) (*StockRecord, error)
	FindByProductAndLocation(ctx context.Context, productID uint, location string) (*StockRecord, error)
	// FindByProductID returns records ordered by location, then id.
	FindByProductID(ctx context.Context, productID uint) ([]StockRecord, error)
	SumAvailable(ctx context.Context, productID uint) (int, error)

	// AdjustQuantity adds delta to quantity if the result stays >= reserved_quantity.
	AdjustQuantity(ctx context.Context, id uint, delta int, at time.Time) (bool, error)
	// IncrementReserved adds amount to reserved_quantity if available >= amount.
	IncrementReserved(ctx context.Context, productID, id uint, amount int, at time.Time) (bool, error)
	// DecrementReserved subtracts amount from reserved_quantity if reserved >= amount.
	DecrementReserved(ctx context.Context, productID, id uint, amount int, at time.Time) (bool, error)
}

// ReservationRepository defines the contract for reservation data access
type ReservationRepository interface {
	// Create inserts the reservation and its allocations.
	Create(ctx context.Context, reservation *Reservation) error
	FindByID(ctx context.Context, id string) (*Reservation, error)
	FindActiveByOrderID(ctx context.Context, orderID string) ([]Reservation, error)
	// FindExpired returns active reservations with expires_at <= now, oldest first.
	FindExpired(ctx context.Context, now time.Time, limit int) ([]Reservation, error)
	// Deactivate flips is_active from true to false. It returns false when the
	// reservation is absent, already inactive or, with requireExpired, not yet due.
	Deactivate(ctx context.Context, id string, status ReservationStatus, at time.Time, requireExpired bool) (bool, error)
}

// Repository is the transactional store the ledger and engine sit on
type Repository interface {
	Stock() StockRepository
	Reservations() ReservationRepository
	// Transaction runs fn against a repository bound to one transaction.
	// Returning an error from fn rolls back every write made through it.
	Transaction(ctx context.Context, fn func(tx Repository) error) error
	Ping(ctx context.Context) error
}
