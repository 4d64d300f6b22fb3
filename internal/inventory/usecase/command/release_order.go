package command

import (
	"context"

	"github.com/tair/stock-ledger/internal/inventory/reservation"
	"github.com/tair/stock-ledger/pkg/logger"
)

// ReleaseOrderCommand releases everything an order still holds
type ReleaseOrderCommand struct {
	OrderID string
	Reason  string
}

// ReleaseOrderHandler handles release order command
type ReleaseOrderHandler struct {
	engine *reservation.Engine
}

// NewReleaseOrderHandler creates a new release order handler
func NewReleaseOrderHandler(engine *reservation.Engine) *ReleaseOrderHandler {
	return &ReleaseOrderHandler{engine: engine}
}

// Handle executes the release order command
func (h *ReleaseOrderHandler) Handle(ctx context.Context, cmd ReleaseOrderCommand) (int, error) {
	released, err := h.engine.ReleaseByOrder(ctx, cmd.OrderID)
	if err != nil {
		return released, err
	}

	logger.Info(ctx).
		Str("order_id", cmd.OrderID).
		Str("reason", cmd.Reason).
		Int("released", released).
		Msg("Order reservations released")
	return released, nil
}
