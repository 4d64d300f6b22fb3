package query

import (
	"context"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/ledger"
)

// GetStockQuery represents the query to get a stock record
type GetStockQuery struct {
	ID uint
}

// GetStockHandler handles get stock query
type GetStockHandler struct {
	ledger *ledger.Ledger
}

// NewGetStockHandler creates a new get stock handler
func NewGetStockHandler(l *ledger.Ledger) *GetStockHandler {
	return &GetStockHandler{ledger: l}
}

// Handle executes the get stock query
func (h *GetStockHandler) Handle(ctx context.Context, query GetStockQuery) (*domain.StockRecord, error) {
	return h.ledger.GetStock(ctx, query.ID)
}
