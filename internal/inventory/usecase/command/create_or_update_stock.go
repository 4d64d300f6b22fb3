package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/ledger"
	"github.com/tair/stock-ledger/internal/inventory/metrics"
	"github.com/tair/stock-ledger/pkg/logger"
)

// CreateOrUpdateStockCommand represents a stock-in (positive delta) or
// adjustment (negative delta) at one location
type CreateOrUpdateStockCommand struct {
	ProductID     uint
	Location      string
	DeltaQuantity int
}

// CreateOrUpdateStockHandler handles create or update stock command
type CreateOrUpdateStockHandler struct {
	ledger    *ledger.Ledger
	publisher domain.EventPublisher
	cache     domain.AvailabilityCache
	metrics   *metrics.Metrics
}

// NewCreateOrUpdateStockHandler creates a new create or update stock handler
func NewCreateOrUpdateStockHandler(
	l *ledger.Ledger,
	publisher domain.EventPublisher,
	cache domain.AvailabilityCache,
	m *metrics.Metrics,
) *CreateOrUpdateStockHandler {
	return &CreateOrUpdateStockHandler{
		ledger:    l,
		publisher: publisher,
		cache:     cache,
		metrics:   m,
	}
}

// Handle executes the create or update stock command
func (h *CreateOrUpdateStockHandler) Handle(ctx context.Context, cmd CreateOrUpdateStockCommand) (*domain.StockRecord, error) {
	record, err := h.ledger.UpsertStock(ctx, cmd.ProductID, cmd.Location, cmd.DeltaQuantity)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			h.metrics.StockUpdate("rejected")
			return nil, err
		}
		h.metrics.StockUpdate("error")
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	h.metrics.StockUpdate("ok")

	if h.cache != nil {
		h.cache.Invalidate(ctx, record.ProductID)
	}

	if h.publisher != nil {
		event := domain.StockEvent{
			EventID:       uuid.NewString(),
			EventType:     domain.EventStockUpdated,
			ProductID:     record.ProductID,
			Quantity:      cmd.DeltaQuantity,
			Location:      record.Location,
			StockRecordID: record.ID,
			Timestamp:     record.UpdatedAt,
		}
		if err := h.publisher.Publish(ctx, event); err != nil {
			h.metrics.PublishFailure(string(event.EventType))
			logger.Warn(ctx).
				Err(err).
				Str("event_id", event.EventID).
				Uint("product_id", record.ProductID).
				Msg("Failed to publish stock update")
		}
	}

	logger.Info(ctx).
		Uint("stock_record_id", record.ID).
		Uint("product_id", record.ProductID).
		Str("location", record.Location).
		Int("delta", cmd.DeltaQuantity).
		Int("quantity", record.Quantity).
		Msg("Stock updated")
	return record, nil
}
