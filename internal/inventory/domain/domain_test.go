package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStockRecord_AvailableQuantity(t *testing.T) {
	record := StockRecord{Quantity: 100, ReservedQuantity: 30}

	assert.Equal(t, 70, record.AvailableQuantity())
}

func TestTotalAvailable(t *testing.T) {
	records := []StockRecord{
		{Quantity: 10, ReservedQuantity: 0},
		{Quantity: 20, ReservedQuantity: 5},
		{Quantity: 5, ReservedQuantity: 5},
	}

	assert.Equal(t, 25, TotalAvailable(records))
	assert.Equal(t, 0, TotalAvailable(nil))
}

func TestReservation_AllocatedQuantity(t *testing.T) {
	r := Reservation{
		TotalQuantity: 25,
		Allocations: []Allocation{
			{StockRecordID: 1, Amount: 10},
			{StockRecordID: 2, Amount: 15},
		},
	}

	assert.Equal(t, r.TotalQuantity, r.AllocatedQuantity())
}

func TestReservation_Expired(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.True(t, Reservation{ExpiresAt: now}.Expired(now))
	assert.True(t, Reservation{ExpiresAt: now.Add(-time.Second)}.Expired(now))
	assert.False(t, Reservation{ExpiresAt: now.Add(time.Second)}.Expired(now))
}

func TestErrorKinds(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		sentinel error
		kind     string
	}{
		{"InvalidArgument", InvalidArgument("delta %d", -5), ErrInvalidArgument, "invalid_argument"},
		{"NotFound", NotFound("stock record %d", 9), ErrNotFound, "not_found"},
		{"Conflict", Conflict("record %d", 1), ErrConflict, "conflict"},
		{"InvariantViolation", InvariantViolation("record %d", 1), ErrInvariantViolation, "invariant_violation"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("ledger: %w", tc.err)

			assert.True(t, errors.Is(wrapped, tc.sentinel))
			assert.Equal(t, tc.kind, KindOf(wrapped))
		})
	}

	assert.Equal(t, "", KindOf(errors.New("connection reset")))
	assert.False(t, errors.Is(NotFound("x"), ErrConflict))
}

func TestReservationEventID(t *testing.T) {
	assert.Equal(t, "abc:STOCK_RELEASED", ReservationEventID("abc", EventStockReleased))
}
