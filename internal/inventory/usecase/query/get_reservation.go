package query

import (
	"context"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/reservation"
)

// GetReservationQuery represents the query to get a reservation
type GetReservationQuery struct {
	ID string
}

// GetReservationHandler handles get reservation query
type GetReservationHandler struct {
	engine *reservation.Engine
}

// NewGetReservationHandler creates a new get reservation handler
func NewGetReservationHandler(engine *reservation.Engine) *GetReservationHandler {
	return &GetReservationHandler{engine: engine}
}

// Handle executes the get reservation query
func (h *GetReservationHandler) Handle(ctx context.Context, query GetReservationQuery) (*domain.Reservation, error) {
	return h.engine.GetReservation(ctx, query.ID)
}
