package kafka

import "time"

// Default topics
const (
	TopicInventoryEvents = "inventory-events"
	TopicOrderEvents     = "order-events"
)

// Order event types consumed by the inventory service
const (
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeOrderConfirmed = "ORDER_CONFIRMED"
	EventTypeOrderCancelled = "ORDER_CANCELLED"
)

// Header names carried on every message
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)

// OrderEvent represents an order lifecycle event from the order service
type OrderEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	OrderID   string    `json:"order_id"`
	UserID    uint      `json:"user_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
