package domain

import (
	"time"
)

// ReservationStatus is the terminal-or-active state of a reservation
type ReservationStatus string

const (
	ReservationActive   ReservationStatus = "ACTIVE"
	ReservationReleased ReservationStatus = "RELEASED"
	ReservationExpired  ReservationStatus = "EXPIRED"
)

// Reservation is a time-bounded claim on stock correlated to an order.
// Allocations records exactly which stock records were incremented, so release
// replays the same split instead of re-deriving it.
type Reservation struct {
	ID            string            `json:"id" gorm:"primaryKey;size:36"`
	ProductID     uint              `json:"product_id" gorm:"not null;index"`
	TotalQuantity int               `json:"total_quantity" gorm:"not null"`
	OrderID       string            `json:"order_id" gorm:"not null;size:128;index"`
	IsActive      bool              `json:"is_active" gorm:"not null;index:idx_reservation_expiry,priority:1"`
	Status        ReservationStatus `json:"status" gorm:"not null;size:16"`
	CreatedAt     time.Time         `json:"created_at"`
	ExpiresAt     time.Time         `json:"expires_at" gorm:"not null;index:idx_reservation_expiry,priority:2"`
	ReleasedAt    *time.Time        `json:"released_at,omitempty"`
	Allocations   []Allocation      `json:"allocations" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (Reservation) TableName() string {
	return "stock_reservations"
}

// AllocatedQuantity sums the allocation amounts
func (r Reservation) AllocatedQuantity() int {
	total := 0
	for _, a := range r.Allocations {
		total += a.Amount
	}
	return total
}

// Expired reports whether the reservation is past its expiry at now
func (r Reservation) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// Allocation is the amount one reservation drew from one stock record
type Allocation struct {
	ID            uint   `json:"-" gorm:"primaryKey"`
	ReservationID string `json:"-" gorm:"not null;size:36;index"`
	StockRecordID uint   `json:"stock_record_id" gorm:"not null"`
	Location      string `json:"location" gorm:"size:128"`
	Amount        int    `json:"amount" gorm:"not null"`
}

// TableName specifies the table name
func (Allocation) TableName() string {
	return "reservation_allocations"
}
