package command

import (
	"context"
	"math"
	"time"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/reservation"
)

// maxTTLMinutes is the largest TTL that still fits in a time.Duration
const maxTTLMinutes = math.MaxInt64 / int64(time.Minute)

// ReserveStockCommand represents the command to reserve stock for an order.
// A nil TTLMinutes means the configured default.
type ReserveStockCommand struct {
	ProductID  uint
	Quantity   int
	OrderID    string
	TTLMinutes *int
}

// ReserveStockHandler handles reserve stock command
type ReserveStockHandler struct {
	engine     *reservation.Engine
	defaultTTL time.Duration
}

// NewReserveStockHandler creates a new reserve stock handler
func NewReserveStockHandler(engine *reservation.Engine, defaultTTL time.Duration) *ReserveStockHandler {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &ReserveStockHandler{engine: engine, defaultTTL: defaultTTL}
}

// Handle executes the reserve stock command
func (h *ReserveStockHandler) Handle(ctx context.Context, cmd ReserveStockCommand) (*reservation.ReservationResult, error) {
	ttl := h.defaultTTL
	if cmd.TTLMinutes != nil {
		if *cmd.TTLMinutes < 0 {
			return nil, domain.InvalidArgument("ttl_minutes must not be negative, got %d", *cmd.TTLMinutes)
		}
		if int64(*cmd.TTLMinutes) > maxTTLMinutes {
			return nil, domain.InvalidArgument("ttl_minutes must be at most %d, got %d", maxTTLMinutes, *cmd.TTLMinutes)
		}
		ttl = time.Duration(*cmd.TTLMinutes) * time.Minute
	}

	return h.engine.Reserve(ctx, reservation.ReserveRequest{
		ProductID: cmd.ProductID,
		Quantity:  cmd.Quantity,
		OrderID:   cmd.OrderID,
		TTL:       ttl,
	})
}
