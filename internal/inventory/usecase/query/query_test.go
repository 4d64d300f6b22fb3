package query

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/ledger"
	"github.com/tair/stock-ledger/internal/inventory/metrics"
	"github.com/tair/stock-ledger/internal/inventory/repository"
	"github.com/tair/stock-ledger/internal/inventory/reservation"
	"github.com/tair/stock-ledger/pkg/database"
)

func newTestLedger(t *testing.T) (*ledger.Ledger, *repository.GormRepository) {
	t.Helper()

	db, err := database.NewSQLiteConnection(database.MemoryDSN(uuid.NewString()))
	require.NoError(t, err)
	repo := repository.NewGormRepository(db)
	require.NoError(t, repo.AutoMigrate())
	return ledger.New(repo), repo
}

func TestCheckStock(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	_, err := l.UpsertStock(ctx, 7, "A", 100)
	require.NoError(t, err)

	h := NewCheckStockHandler(l, nil, nil)

	enough, err := h.Handle(ctx, CheckStockQuery{ProductID: 7, RequiredQuantity: 50})
	require.NoError(t, err)
	assert.True(t, enough.Available)
	assert.Equal(t, 100, enough.AvailableQuantity)

	short, err := h.Handle(ctx, CheckStockQuery{ProductID: 7, RequiredQuantity: 101})
	require.NoError(t, err)
	assert.False(t, short.Available)

	unknown, err := h.Handle(ctx, CheckStockQuery{ProductID: 8, RequiredQuantity: 1})
	require.NoError(t, err)
	assert.False(t, unknown.Available)
	assert.Zero(t, unknown.AvailableQuantity)

	_, err = h.Handle(ctx, CheckStockQuery{ProductID: 7, RequiredQuantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = h.Handle(ctx, CheckStockQuery{RequiredQuantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCheckStock_ReadThroughCache(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	_, err := l.UpsertStock(ctx, 7, "A", 10)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := repository.NewRedisAvailabilityCache(client, time.Minute)

	h := NewCheckStockHandler(l, cache, metrics.New(prometheus.NewRegistry()))

	first, err := h.Handle(ctx, CheckStockQuery{ProductID: 7, RequiredQuantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 10, first.AvailableQuantity)
	assert.True(t, mr.Exists("stock:available:7"))

	// the cached value is served until invalidated
	_, err = l.UpsertStock(ctx, 7, "A", 5)
	require.NoError(t, err)
	cached, err := h.Handle(ctx, CheckStockQuery{ProductID: 7, RequiredQuantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 10, cached.AvailableQuantity)

	cache.Invalidate(ctx, 7)
	fresh, err := h.Handle(ctx, CheckStockQuery{ProductID: 7, RequiredQuantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 15, fresh.AvailableQuantity)
}

// invalidatingCache commits a stock change and invalidates the product between
// the handler's ledger read and its cache write.
type invalidatingCache struct {
	*repository.RedisAvailabilityCache
	ledger *ledger.Ledger
	t      *testing.T
	done   bool
}

func (c *invalidatingCache) Set(ctx context.Context, productID uint, available int, generation int64) {
	if !c.done {
		c.done = true
		_, err := c.ledger.UpsertStock(ctx, productID, "A", 5)
		require.NoError(c.t, err)
		c.RedisAvailabilityCache.Invalidate(ctx, productID)
	}
	c.RedisAvailabilityCache.Set(ctx, productID, available, generation)
}

func TestCheckStock_StaleReadIsNotCached(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	_, err := l.UpsertStock(ctx, 7, "A", 10)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := &invalidatingCache{
		RedisAvailabilityCache: repository.NewRedisAvailabilityCache(client, time.Minute),
		ledger:                 l,
		t:                      t,
	}

	h := NewCheckStockHandler(l, cache, metrics.New(prometheus.NewRegistry()))

	// the read raced the upsert, so it reports the old figure once
	first, err := h.Handle(ctx, CheckStockQuery{ProductID: 7, RequiredQuantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 10, first.AvailableQuantity)
	assert.False(t, mr.Exists("stock:available:7"))

	next, err := h.Handle(ctx, CheckStockQuery{ProductID: 7, RequiredQuantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 15, next.AvailableQuantity)
	assert.True(t, mr.Exists("stock:available:7"))
}

func TestListAndGetStock(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	a, err := l.UpsertStock(ctx, 3, "B", 4)
	require.NoError(t, err)
	_, err = l.UpsertStock(ctx, 3, "A", 6)
	require.NoError(t, err)
	require.NoError(t, l.ApplyReservationDelta(ctx, 3, []domain.Allocation{{StockRecordID: a.ID, Amount: 1}}))

	list, err := NewListStockHandler(l).Handle(ctx, ListStockQuery{ProductID: 3})
	require.NoError(t, err)
	require.Len(t, list.Records, 2)
	assert.Equal(t, "A", list.Records[0].Location)
	assert.Equal(t, 10, list.TotalQuantity)
	assert.Equal(t, 1, list.ReservedQuantity)
	assert.Equal(t, 9, list.AvailableQuantity)

	empty, err := NewListStockHandler(l).Handle(ctx, ListStockQuery{ProductID: 99})
	require.NoError(t, err)
	assert.NotNil(t, empty.Records)
	assert.Empty(t, empty.Records)

	got, err := NewGetStockHandler(l).Handle(ctx, GetStockQuery{ID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReservedQuantity)

	_, err = NewGetStockHandler(l).Handle(ctx, GetStockQuery{ID: 12345})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetReservation(t *testing.T) {
	l, repo := newTestLedger(t)
	ctx := context.Background()
	_, err := l.UpsertStock(ctx, 1, "A", 5)
	require.NoError(t, err)

	engine := reservation.NewEngine(repo, l, nil, nil, nil, reservation.Config{})
	res, err := engine.Reserve(ctx, reservation.ReserveRequest{ProductID: 1, Quantity: 2, OrderID: "o", TTL: time.Minute})
	require.NoError(t, err)

	h := NewGetReservationHandler(engine)
	got, err := h.Handle(ctx, GetReservationQuery{ID: res.ReservationID})
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalQuantity)

	_, err = h.Handle(ctx, GetReservationQuery{ID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
