package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/inventory/ledger"
	"github.com/tair/stock-ledger/internal/inventory/metrics"
	"github.com/tair/stock-ledger/internal/inventory/repository"
	"github.com/tair/stock-ledger/internal/inventory/reservation"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/kafka"
	"github.com/tair/stock-ledger/pkg/database"
)

type fakeRegistry struct {
	handlers map[string]kafka.EventHandler
}

func (r *fakeRegistry) RegisterHandler(eventType string, handler kafka.EventHandler) {
	r.handlers[eventType] = handler
}

func newEngine(t *testing.T) (*reservation.Engine, *ledger.Ledger) {
	t.Helper()

	db, err := database.NewSQLiteConnection(database.MemoryDSN(uuid.NewString()))
	require.NoError(t, err)
	repo := repository.NewGormRepository(db)
	require.NoError(t, repo.AutoMigrate())

	l := ledger.New(repo)
	return reservation.NewEngine(repo, l, nil, nil, metrics.New(prometheus.NewRegistry()), reservation.Config{}), l
}

func TestRegister(t *testing.T) {
	engine, _ := newEngine(t)
	registry := &fakeRegistry{handlers: map[string]kafka.EventHandler{}}

	NewOrderEventsHandler(command.NewReleaseOrderHandler(engine)).Register(registry)

	assert.Len(t, registry.handlers, 3)
	assert.Contains(t, registry.handlers, kafka.EventTypeOrderCancelled)
	assert.Contains(t, registry.handlers, kafka.EventTypeOrderCreated)
	assert.Contains(t, registry.handlers, kafka.EventTypeOrderConfirmed)
}

func TestHandleOrderCancelled_ReleasesOrderReservations(t *testing.T) {
	ctx := context.Background()
	engine, l := newEngine(t)
	h := NewOrderEventsHandler(command.NewReleaseOrderHandler(engine))

	_, err := l.UpsertStock(ctx, 1, "", 50)
	require.NoError(t, err)
	for _, qty := range []int{10, 15} {
		res, err := engine.Reserve(ctx, reservation.ReserveRequest{ProductID: 1, Quantity: qty, OrderID: "order-9", TTL: time.Hour})
		require.NoError(t, err)
		require.True(t, res.Success)
	}
	other, err := engine.Reserve(ctx, reservation.ReserveRequest{ProductID: 1, Quantity: 5, OrderID: "order-10", TTL: time.Hour})
	require.NoError(t, err)

	available, err := l.AvailableQuantity(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 20, available)

	event := kafka.OrderEvent{EventID: "e1", EventType: kafka.EventTypeOrderCancelled, OrderID: "order-9", Reason: "payment failed"}
	require.NoError(t, h.HandleOrderCancelled(ctx, event))

	available, err = l.AvailableQuantity(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 45, available)

	// redelivery changes nothing
	require.NoError(t, h.HandleOrderCancelled(ctx, event))
	available, err = l.AvailableQuantity(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 45, available)

	kept, err := engine.GetReservation(ctx, other.ReservationID)
	require.NoError(t, err)
	assert.True(t, kept.IsActive)
}

func TestHandleOrderCancelled_WithoutOrderID(t *testing.T) {
	engine, _ := newEngine(t)
	h := NewOrderEventsHandler(command.NewReleaseOrderHandler(engine))

	assert.NoError(t, h.HandleOrderCancelled(context.Background(), kafka.OrderEvent{EventType: kafka.EventTypeOrderCancelled}))
}

func TestHandleOrderLifecycle(t *testing.T) {
	engine, _ := newEngine(t)
	h := NewOrderEventsHandler(command.NewReleaseOrderHandler(engine))

	assert.NoError(t, h.HandleOrderLifecycle(context.Background(), kafka.OrderEvent{EventType: kafka.EventTypeOrderCreated, OrderID: "o"}))
}
