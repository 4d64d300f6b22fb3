package reservation

import "github.com/tair/stock-ledger/internal/inventory/domain"

// Allocate splits quantity across records greedily, in the order given,
// skipping records with nothing available and never taking more than a
// record has. It returns nil when the records cannot cover quantity.
func Allocate(records []domain.StockRecord, quantity int) []domain.Allocation {
	if quantity <= 0 {
		return nil
	}

	remaining := quantity
	allocations := make([]domain.Allocation, 0, len(records))
	for _, record := range records {
		if remaining == 0 {
			break
		}
		available := record.AvailableQuantity()
		if available <= 0 {
			continue
		}

		take := min(available, remaining)
		allocations = append(allocations, domain.Allocation{
			StockRecordID: record.ID,
			Location:      record.Location,
			Amount:        take,
		})
		remaining -= take
	}

	if remaining > 0 {
		return nil
	}
	return allocations
}
