package domain

import (
	"time"
)

// DefaultLocation is used when a stock-in does not name a location
const DefaultLocation = "WAREHOUSE_A"

// StockRecord is the quantity bookkeeping unit for one product at one location
type StockRecord struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ProductID        uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_stock_product_location,priority:1"`
	Location         string    `json:"location" gorm:"not null;size:128;uniqueIndex:idx_stock_product_location,priority:2"`
	Quantity         int       `json:"quantity" gorm:"not null;default:0"`
	ReservedQuantity int       `json:"reserved_quantity" gorm:"not null;default:0"`
	Version          int64     `json:"version" gorm:"not null;default:1"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (StockRecord) TableName() string {
	return "stock_records"
}

// AvailableQuantity returns the portion a new reservation may claim
func (s StockRecord) AvailableQuantity() int {
	return s.Quantity - s.ReservedQuantity
}

// TotalAvailable sums AvailableQuantity over records.
func TotalAvailable(records []StockRecord) int {
	total := 0
	for _, r := range records {
		total += r.AvailableQuantity()
	}
	return total
}
