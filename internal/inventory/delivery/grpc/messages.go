package grpc

import (
	"time"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

type CreateOrUpdateStockRequest struct {
	ProductID     uint   `json:"product_id"`
	Location      string `json:"location"`
	DeltaQuantity int    `json:"delta_quantity"`
}

type GetStockRequest struct {
	ID uint `json:"id"`
}

type StockResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Stock   *domain.StockRecord `json:"stock,omitempty"`
}

type ListStockRequest struct {
	ProductID uint `json:"product_id"`
}

type ListStockResponse struct {
	ProductID         uint                 `json:"product_id"`
	Records           []domain.StockRecord `json:"records"`
	TotalQuantity     int                  `json:"total_quantity"`
	ReservedQuantity  int                  `json:"reserved_quantity"`
	AvailableQuantity int                  `json:"available_quantity"`
}

type CheckStockRequest struct {
	ProductID        uint `json:"product_id"`
	RequiredQuantity int  `json:"required_quantity"`
}

type CheckStockResponse struct {
	ProductID         uint `json:"product_id"`
	Available         bool `json:"available"`
	AvailableQuantity int  `json:"available_quantity"`
	RequiredQuantity  int  `json:"required_quantity"`
}

// ReserveStockRequest reserves stock for an order. TTLMinutes nil means the
// service default.
type ReserveStockRequest struct {
	ProductID  uint   `json:"product_id"`
	Quantity   int    `json:"quantity"`
	OrderID    string `json:"order_id"`
	TTLMinutes *int   `json:"ttl_minutes,omitempty"`
}

// ReserveStockResponse reports the decision. Success=false is the declined
// outcome and carries no reservation.
type ReserveStockResponse struct {
	Success           bool                `json:"success"`
	Message           string              `json:"message,omitempty"`
	ReservationID     string              `json:"reservation_id,omitempty"`
	ExpiresAt         *time.Time          `json:"expires_at,omitempty"`
	Allocations       []domain.Allocation `json:"allocations,omitempty"`
	AvailableQuantity int                 `json:"available_quantity"`
	RequestedQuantity int                 `json:"requested_quantity"`
}

type ReleaseStockRequest struct {
	ReservationID string `json:"reservation_id"`
}

type ReleaseStockResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	ReservationID string `json:"reservation_id"`
}

type GetReservationRequest struct {
	ID string `json:"id"`
}

type ReservationResponse struct {
	Reservation *domain.Reservation `json:"reservation"`
}
