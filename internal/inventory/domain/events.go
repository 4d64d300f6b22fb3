package domain

import (
	"context"
	"fmt"
	"time"
)

// EventType names a committed stock state change
type EventType string

const (
	EventStockUpdated  EventType = "STOCK_UPDATED"
	EventStockReserved EventType = "STOCK_RESERVED"
	EventStockReleased EventType = "STOCK_RELEASED"
	EventStockExpired  EventType = "STOCK_EXPIRED"
)

// StockEvent is the payload of every inventory domain event
type StockEvent struct {
	EventID       string    `json:"event_id"`
	EventType     EventType `json:"event_type"`
	ProductID     uint      `json:"product_id"`
	Quantity      int       `json:"quantity"`
	Location      string    `json:"location,omitempty"`
	StockRecordID uint      `json:"stock_record_id,omitempty"`
	ReservationID string    `json:"reservation_id,omitempty"`
	OrderID       string    `json:"order_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationEventID is stable per (reservation, type) so consumers can drop
// redelivered duplicates.
func ReservationEventID(reservationID string, eventType EventType) string {
	return fmt.Sprintf("%s:%s", reservationID, eventType)
}

// EventPublisher delivers domain events. Delivery is best-effort and
// at-least-once; the ledger state stays authoritative.
type EventPublisher interface {
	Publish(ctx context.Context, event StockEvent) error
}

// AvailabilityCache holds advisory per-product availability for CheckStock.
// Reservation decisions never read it. Every Invalidate starts a new
// generation; a Set carrying an older generation is dropped, so a value read
// from the ledger before a mutation cannot outlive that mutation's invalidation.
type AvailabilityCache interface {
	// Get returns the cached value, or on a miss the generation a following
	// Set must present.
	Get(ctx context.Context, productID uint) (available int, generation int64, ok bool)
	Set(ctx context.Context, productID uint, available int, generation int64)
	Invalidate(ctx context.Context, productID uint)
}
