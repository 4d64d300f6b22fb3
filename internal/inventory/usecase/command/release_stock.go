package command

import (
	"context"

	"github.com/tair/stock-ledger/internal/inventory/reservation"
)

// ReleaseStockCommand represents the command to release a reservation
type ReleaseStockCommand struct {
	ReservationID string
}

// ReleaseStockHandler handles release stock command
type ReleaseStockHandler struct {
	engine *reservation.Engine
}

// NewReleaseStockHandler creates a new release stock handler
func NewReleaseStockHandler(engine *reservation.Engine) *ReleaseStockHandler {
	return &ReleaseStockHandler{engine: engine}
}

// Handle executes the release stock command
func (h *ReleaseStockHandler) Handle(ctx context.Context, cmd ReleaseStockCommand) (*reservation.ReleaseResult, error) {
	return h.engine.Release(ctx, cmd.ReservationID)
}
