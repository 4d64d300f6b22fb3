package reservation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

func TestReaper_SweepReleasesExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, 1, "WAREHOUSE_A", 10)

	short, err := f.engine.Reserve(ctx, ReserveRequest{ProductID: 1, Quantity: 4, OrderID: "order-1", TTL: time.Minute})
	require.NoError(t, err)
	long, err := f.engine.Reserve(ctx, ReserveRequest{ProductID: 1, Quantity: 3, OrderID: "order-2", TTL: time.Hour})
	require.NoError(t, err)

	reaper := NewReaper(f.engine, f.metrics, ReaperConfig{BatchSize: 10})

	n, err := reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing due yet")

	f.now = f.now.Add(2 * time.Minute)
	n, err = reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 7, f.available(t, 1))

	got, err := f.engine.GetReservation(ctx, short.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationExpired, got.Status)

	stillActive, err := f.engine.GetReservation(ctx, long.ReservationID)
	require.NoError(t, err)
	assert.True(t, stillActive.IsActive)

	assert.Equal(t, 1.0, counterValue(t, f.registry, "inventory_reaper_released_total", nil))
}

func TestReaper_ClientReleaseWinsOverExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, 1, "WAREHOUSE_A", 10)

	res, err := f.engine.Reserve(ctx, ReserveRequest{ProductID: 1, Quantity: 5, OrderID: "order-1", TTL: 0})
	require.NoError(t, err)

	_, err = f.engine.Release(ctx, res.ReservationID)
	require.NoError(t, err)

	n, err := NewReaper(f.engine, f.metrics, ReaperConfig{}).Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 10, f.available(t, 1), "stock returned exactly once")

	got, err := f.engine.GetReservation(ctx, res.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationReleased, got.Status)
}

type mockReleaser struct {
	mock.Mock
}

func (m *mockReleaser) ExpiredReservations(ctx context.Context, limit int) ([]domain.Reservation, error) {
	args := m.Called(ctx, limit)
	if v := args.Get(0); v != nil {
		return v.([]domain.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReleaser) ReleaseExpired(ctx context.Context, id string) (*ReleaseResult, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*ReleaseResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReaper_SweepContinuesPastFailures(t *testing.T) {
	releaser := &mockReleaser{}
	releaser.On("ExpiredReservations", mock.Anything, 2).
		Return([]domain.Reservation{{ID: "a"}, {ID: "b"}}, nil)
	releaser.On("ReleaseExpired", mock.Anything, "a").Return(nil, errors.New("db gone"))
	releaser.On("ReleaseExpired", mock.Anything, "b").Return(&ReleaseResult{Released: true, ReservationID: "b"}, nil)

	n, err := NewReaper(releaser, nil, ReaperConfig{BatchSize: 2}).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	releaser.AssertExpectations(t)
}

func TestReaper_SweepListError(t *testing.T) {
	releaser := &mockReleaser{}
	releaser.On("ExpiredReservations", mock.Anything, 100).Return(nil, errors.New("db gone"))

	_, err := NewReaper(releaser, nil, ReaperConfig{}).Sweep(context.Background())
	assert.Error(t, err)
}

func TestReaper_RunStopsOnCancel(t *testing.T) {
	var sweeps atomic.Int32
	releaser := &mockReleaser{}
	releaser.On("ExpiredReservations", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { sweeps.Add(1) }).
		Return([]domain.Reservation{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewReaper(releaser, nil, ReaperConfig{Interval: 5 * time.Millisecond}).Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return sweeps.Load() > 0
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}
