package query

import (
	"context"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/ledger"
	"github.com/tair/stock-ledger/internal/inventory/metrics"
)

// CheckStockQuery asks whether a product has RequiredQuantity available
type CheckStockQuery struct {
	ProductID        uint
	RequiredQuantity int
}

// CheckStockResult is advisory; Reserve makes the authoritative decision
type CheckStockResult struct {
	ProductID         uint `json:"product_id"`
	Available         bool `json:"available"`
	AvailableQuantity int  `json:"available_quantity"`
	RequiredQuantity  int  `json:"required_quantity"`
}

// CheckStockHandler handles check stock query
type CheckStockHandler struct {
	ledger  *ledger.Ledger
	cache   domain.AvailabilityCache
	metrics *metrics.Metrics
}

// NewCheckStockHandler creates a new check stock handler. cache may be nil.
func NewCheckStockHandler(l *ledger.Ledger, cache domain.AvailabilityCache, m *metrics.Metrics) *CheckStockHandler {
	return &CheckStockHandler{ledger: l, cache: cache, metrics: m}
}

// Handle executes the check stock query
func (h *CheckStockHandler) Handle(ctx context.Context, query CheckStockQuery) (*CheckStockResult, error) {
	if query.ProductID == 0 {
		return nil, domain.InvalidArgument("product id is required")
	}
	if query.RequiredQuantity < 0 {
		return nil, domain.InvalidArgument("required quantity must not be negative, got %d", query.RequiredQuantity)
	}

	available, err := h.availableQuantity(ctx, query.ProductID)
	if err != nil {
		return nil, err
	}

	return &CheckStockResult{
		ProductID:         query.ProductID,
		Available:         available >= query.RequiredQuantity,
		AvailableQuantity: available,
		RequiredQuantity:  query.RequiredQuantity,
	}, nil
}

func (h *CheckStockHandler) availableQuantity(ctx context.Context, productID uint) (int, error) {
	var generation int64
	if h.cache != nil {
		cached, gen, ok := h.cache.Get(ctx, productID)
		if ok {
			h.metrics.CacheLookup(true)
			return cached, nil
		}
		h.metrics.CacheLookup(false)
		generation = gen
	}

	available, err := h.ledger.AvailableQuantity(ctx, productID)
	if err != nil {
		return 0, err
	}

	if h.cache != nil {
		// dropped by the cache if a mutation invalidated the product since Get
		h.cache.Set(ctx, productID, available, generation)
	}
	return available, nil
}
