// Package events reacts to order lifecycle events from the order service.
package events

import (
	"context"

	"github.com/tair/stock-ledger/internal/inventory/reservation"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/kafka"
	"github.com/tair/stock-ledger/pkg/logger"
)

// HandlerRegistry is satisfied by *kafka.Consumer
type HandlerRegistry interface {
	RegisterHandler(eventType string, handler kafka.EventHandler)
}

// OrderEventsHandler releases the reservations of cancelled orders
type OrderEventsHandler struct {
	releaseOrder *command.ReleaseOrderHandler
}

// NewOrderEventsHandler creates a new order events handler
func NewOrderEventsHandler(releaseOrder *command.ReleaseOrderHandler) *OrderEventsHandler {
	return &OrderEventsHandler{releaseOrder: releaseOrder}
}

// Register binds the handlers to their event types
func (h *OrderEventsHandler) Register(registry HandlerRegistry) {
	registry.RegisterHandler(kafka.EventTypeOrderCancelled, h.HandleOrderCancelled)
	registry.RegisterHandler(kafka.EventTypeOrderCreated, h.HandleOrderLifecycle)
	registry.RegisterHandler(kafka.EventTypeOrderConfirmed, h.HandleOrderLifecycle)
}

// HandleOrderCancelled releases every active reservation of the order.
// Redelivery is harmless: already released reservations are skipped.
func (h *OrderEventsHandler) HandleOrderCancelled(ctx context.Context, event kafka.OrderEvent) error {
	if event.OrderID == "" {
		logger.Warn(ctx).
			Str("event_id", event.EventID).
			Msg("ORDER_CANCELLED without order_id, skipping")
		return nil
	}

	reason := event.Reason
	if reason == "" {
		reason = reservation.ReasonOrderCancelled
	}

	_, err := h.releaseOrder.Handle(ctx, command.ReleaseOrderCommand{
		OrderID: event.OrderID,
		Reason:  reason,
	})
	return err
}

// HandleOrderLifecycle only records the event. Reservations are made
// synchronously by the order service and released on cancel or expiry.
func (h *OrderEventsHandler) HandleOrderLifecycle(ctx context.Context, event kafka.OrderEvent) error {
	logger.Info(ctx).
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("order_id", event.OrderID).
		Msg("Order event received")
	return nil
}
