package query

import (
	"context"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/ledger"
)

// ListStockQuery represents the query to list a product's stock records
type ListStockQuery struct {
	ProductID uint
}

// ListStockResult is a product's per-location stock
type ListStockResult struct {
	ProductID         uint                 `json:"product_id"`
	Records           []domain.StockRecord `json:"records"`
	TotalQuantity     int                  `json:"total_quantity"`
	ReservedQuantity  int                  `json:"reserved_quantity"`
	AvailableQuantity int                  `json:"available_quantity"`
}

// ListStockHandler handles list stock query
type ListStockHandler struct {
	ledger *ledger.Ledger
}

// NewListStockHandler creates a new list stock handler
func NewListStockHandler(l *ledger.Ledger) *ListStockHandler {
	return &ListStockHandler{ledger: l}
}

// Handle executes the list stock query
func (h *ListStockHandler) Handle(ctx context.Context, query ListStockQuery) (*ListStockResult, error) {
	records, err := h.ledger.ListStock(ctx, query.ProductID)
	if err != nil {
		return nil, err
	}

	result := &ListStockResult{
		ProductID: query.ProductID,
		Records:   records,
	}
	if result.Records == nil {
		result.Records = []domain.StockRecord{}
	}
	for _, r := range records {
		result.TotalQuantity += r.Quantity
		result.ReservedQuantity += r.ReservedQuantity
	}
	result.AvailableQuantity = domain.TotalAvailable(records)
	return result, nil
}
