package inventory

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/config"
	"github.com/tair/stock-ledger/internal/inventory/metrics"
	"github.com/tair/stock-ledger/internal/inventory/repository"
	"github.com/tair/stock-ledger/pkg/database"
)

func TestInitializeApp_WithoutIntegrations(t *testing.T) {
	db, err := database.NewSQLiteConnection(database.MemoryDSN(uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, repository.NewGormRepository(db).AutoMigrate())

	cfg := config.Load()
	app, err := InitializeApp(cfg, db, nil, nil, nil, metrics.New(prometheus.NewRegistry()))
	require.NoError(t, err)

	assert.NotNil(t, app.HTTPHandler)
	assert.NotNil(t, app.GRPCServer)
	assert.NotNil(t, app.Reaper)
	assert.NotNil(t, app.OrderEvents)
	assert.Nil(t, app.ReserveLimit)

	released, err := app.Reaper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, released)
}

func TestProvideAvailabilityCache(t *testing.T) {
	cfg := &config.Config{}

	// untyped nil, so callers' nil checks hold
	assert.Nil(t, ProvideAvailabilityCache(nil, cfg))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	assert.NotNil(t, ProvideAvailabilityCache(client, cfg))
}

func TestProvideReserveRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	assert.Nil(t, ProvideReserveRateLimiter(client, &config.Config{}))
	assert.NotNil(t, ProvideReserveRateLimiter(client, &config.Config{ReserveRateLimit: 10}))
}
