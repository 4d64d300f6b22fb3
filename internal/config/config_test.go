package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "inventory-service", cfg.ServiceName)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.ReservationTTL)
	assert.Equal(t, 3, cfg.ReserveMaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.ReaperInterval)
	assert.Equal(t, 100, cfg.ReaperBatchSize)
	assert.Equal(t, "inventory-events", cfg.KafkaEventsTopic)
	assert.Equal(t, "order-events", cfg.KafkaOrderEventsTopic)
	assert.Equal(t, 0, cfg.ReserveRateLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("KAFKA_BROKERS", " k1:9092, k2:9092 ,")
	t.Setenv("RESERVATION_TTL", "15m")
	t.Setenv("REAPER_BATCH_SIZE", "250")
	t.Setenv("TRACE_SAMPLE_RATIO", "0.25")
	t.Setenv("KAFKA_CONSUMER_ENABLED", "false")
	t.Setenv("RESERVE_RATE_LIMIT", "60")

	cfg := Load()

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Minute, cfg.ReservationTTL)
	assert.Equal(t, 250, cfg.ReaperBatchSize)
	assert.Equal(t, 0.25, cfg.TraceSampleRatio)
	assert.False(t, cfg.KafkaConsumerEnabled)
	assert.Equal(t, 60, cfg.ReserveRateLimit)
}

func TestLoad_EmptyValuesDisableIntegrations(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()

	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("REAPER_INTERVAL", "soon")
	t.Setenv("RESERVE_MAX_ATTEMPTS", "many")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.ReaperInterval)
	assert.Equal(t, 3, cfg.ReserveMaxAttempts)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GRPC_PORT=19092\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(wd)
		os.Unsetenv("GRPC_PORT")
	})

	cfg := Load()

	assert.Equal(t, "19092", cfg.GRPCPort)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.DBDriver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.ReservationTTL = 0
	assert.Error(t, cfg.Validate())
}

func TestSQLiteDSN(t *testing.T) {
	cfg := &Config{SQLitePath: "/var/lib/inventory.db"}

	assert.Equal(t, "file:/var/lib/inventory.db?_busy_timeout=5000", cfg.SQLiteDSN())
}
