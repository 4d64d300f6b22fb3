package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tair/stock-ledger/pkg/database"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	LogLevel       string

	HTTPPort        string
	GRPCPort        string
	HTTPTimeout     time.Duration
	ShutdownTimeout time.Duration

	DBDriver   string
	SQLitePath string
	Postgres   database.Config

	// Kafka Configuration. Empty KafkaBrokers disables publishing and consuming.
	KafkaBrokers          []string
	KafkaEventsTopic      string
	KafkaOrderEventsTopic string
	KafkaConsumerGroup    string
	KafkaConsumerEnabled  bool

	// Redis Configuration. Empty RedisAddr disables the cache and rate limit.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	ReservationTTL     time.Duration
	ReserveMaxAttempts int
	ReserveBackoff     time.Duration

	ReaperInterval  time.Duration
	ReaperBatchSize int

	JaegerEndpoint    string
	TraceSampleRatio  float64
	BreakerFailures   int
	BreakerOpen       time.Duration
	BreakerHalfOpenOK int

	// ReserveRateLimit is requests per RateLimitWindow per client; 0 disables.
	ReserveRateLimit int
	RateLimitWindow  time.Duration
}

// Load reads an optional .env file, then the environment
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "inventory-service"),
		ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		HTTPPort:        getEnv("HTTP_PORT", "8082"),
		GRPCPort:        getEnv("GRPC_PORT", "9092"),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		SQLitePath: getEnv("SQLITE_PATH", "inventory.db"),
		Postgres: database.Config{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "inventorydb"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		KafkaBrokers:          getEnvAsList("KAFKA_BROKERS", "localhost:9092"),
		KafkaEventsTopic:      getEnv("KAFKA_EVENTS_TOPIC", "inventory-events"),
		KafkaOrderEventsTopic: getEnv("KAFKA_ORDER_EVENTS_TOPIC", "order-events"),
		KafkaConsumerGroup:    getEnv("KAFKA_CONSUMER_GROUP", "inventory-service"),
		KafkaConsumerEnabled:  getEnvAsBool("KAFKA_CONSUMER_ENABLED", true),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      getEnvAsDuration("AVAILABILITY_CACHE_TTL", 5*time.Second),

		ReservationTTL:     getEnvAsDuration("RESERVATION_TTL", 30*time.Minute),
		ReserveMaxAttempts: getEnvAsInt("RESERVE_MAX_ATTEMPTS", 3),
		ReserveBackoff:     getEnvAsDuration("RESERVE_RETRY_BACKOFF", 10*time.Millisecond),

		ReaperInterval:  getEnvAsDuration("REAPER_INTERVAL", 30*time.Second),
		ReaperBatchSize: getEnvAsInt("REAPER_BATCH_SIZE", 100),

		JaegerEndpoint:    getEnv("JAEGER_ENDPOINT", ""),
		TraceSampleRatio:  getEnvAsFloat("TRACE_SAMPLE_RATIO", 1),
		BreakerFailures:   getEnvAsInt("KAFKA_BREAKER_MAX_FAILURES", 5),
		BreakerOpen:       getEnvAsDuration("KAFKA_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		BreakerHalfOpenOK: getEnvAsInt("KAFKA_BREAKER_HALF_OPEN_SUCCESSES", 3),

		ReserveRateLimit: getEnvAsInt("RESERVE_RATE_LIMIT", 0),
		RateLimitWindow:  getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", c.DBDriver, DriverPostgres, DriverSQLite)
	}
	if c.ReservationTTL <= 0 {
		return fmt.Errorf("RESERVATION_TTL must be positive, got %s", c.ReservationTTL)
	}
	if c.ReaperInterval <= 0 {
		return fmt.Errorf("REAPER_INTERVAL must be positive, got %s", c.ReaperInterval)
	}
	return nil
}

// IsDevelopment reports whether console logging should be used
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// SQLiteDSN is the file DSN for DB_DRIVER=sqlite
func (c *Config) SQLiteDSN() string {
	return fmt.Sprintf("file:%s?_busy_timeout=5000", c.SQLitePath)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return result
}

// getEnvAsList splits a comma-separated value, dropping blanks
func getEnvAsList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
