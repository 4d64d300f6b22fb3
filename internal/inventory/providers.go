package inventory

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/stock-ledger/internal/config"
	"github.com/tair/stock-ledger/internal/inventory/delivery/events"
	grpcDelivery "github.com/tair/stock-ledger/internal/inventory/delivery/grpc"
	httpDelivery "github.com/tair/stock-ledger/internal/inventory/delivery/http"
	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/ledger"
	"github.com/tair/stock-ledger/internal/inventory/metrics"
	"github.com/tair/stock-ledger/internal/inventory/repository"
	"github.com/tair/stock-ledger/internal/inventory/reservation"
	"github.com/tair/stock-ledger/internal/inventory/usecase"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/internal/inventory/usecase/query"
)

// App holds the long-running parts of the service
type App struct {
	HTTPHandler  *httpDelivery.InventoryHandler
	GRPCServer   *grpcDelivery.InventoryGRPCServer
	Reaper       *reservation.Reaper
	OrderEvents  *events.OrderEventsHandler
	ReserveLimit *httpDelivery.RateLimiter
}

// NewApp bundles the service parts
func NewApp(
	httpHandler *httpDelivery.InventoryHandler,
	grpcServer *grpcDelivery.InventoryGRPCServer,
	reaper *reservation.Reaper,
	orderEvents *events.OrderEventsHandler,
	reserveLimit *httpDelivery.RateLimiter,
) *App {
	return &App{
		HTTPHandler:  httpHandler,
		GRPCServer:   grpcServer,
		Reaper:       reaper,
		OrderEvents:  orderEvents,
		ReserveLimit: reserveLimit,
	}
}

// ProvideRepository provides the traced gorm repository
func ProvideRepository(db *gorm.DB) domain.Repository {
	return repository.NewTracingRepository(repository.NewGormRepository(db))
}

// ProvideAvailabilityCache returns nil when Redis is not configured
func ProvideAvailabilityCache(client *redis.Client, cfg *config.Config) domain.AvailabilityCache {
	if client == nil {
		return nil
	}
	return repository.NewRedisAvailabilityCache(client, cfg.CacheTTL)
}

func ProvideLedger(repo domain.Repository) *ledger.Ledger {
	return ledger.New(repo)
}

func ProvideEngine(
	repo domain.Repository,
	l *ledger.Ledger,
	publisher domain.EventPublisher,
	cache domain.AvailabilityCache,
	m *metrics.Metrics,
	cfg *config.Config,
) *reservation.Engine {
	return reservation.NewEngine(repo, l, publisher, cache, m, reservation.Config{
		MaxAttempts:  cfg.ReserveMaxAttempts,
		RetryBackoff: cfg.ReserveBackoff,
	})
}

func ProvideReaper(engine *reservation.Engine, m *metrics.Metrics, cfg *config.Config) *reservation.Reaper {
	return reservation.NewReaper(engine, m, reservation.ReaperConfig{
		Interval:  cfg.ReaperInterval,
		BatchSize: cfg.ReaperBatchSize,
	})
}

// ProvideReserveRateLimiter returns nil when the limit is disabled
func ProvideReserveRateLimiter(client *redis.Client, cfg *config.Config) *httpDelivery.RateLimiter {
	return httpDelivery.NewRateLimiter(client, "reserve", cfg.ReserveRateLimit, cfg.RateLimitWindow)
}

// Command Handlers Providers
func ProvideCreateOrUpdateStockHandler(
	l *ledger.Ledger,
	publisher domain.EventPublisher,
	cache domain.AvailabilityCache,
	m *metrics.Metrics,
) *command.CreateOrUpdateStockHandler {
	return command.NewCreateOrUpdateStockHandler(l, publisher, cache, m)
}

func ProvideReserveStockHandler(engine *reservation.Engine, cfg *config.Config) *command.ReserveStockHandler {
	return command.NewReserveStockHandler(engine, cfg.ReservationTTL)
}

// Query Handlers Providers
func ProvideCheckStockHandler(l *ledger.Ledger, cache domain.AvailabilityCache, m *metrics.Metrics) *query.CheckStockHandler {
	return query.NewCheckStockHandler(l, cache, m)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideRepository,
	ProvideAvailabilityCache,
)

var CoreSet = wire.NewSet(
	ProvideLedger,
	ProvideEngine,
	ProvideReaper,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreateOrUpdateStockHandler,
	ProvideReserveStockHandler,
	command.NewReleaseStockHandler,
	command.NewReleaseOrderHandler,
	usecase.NewCommandHandlers,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetStockHandler,
	query.NewListStockHandler,
	ProvideCheckStockHandler,
	query.NewGetReservationHandler,
	usecase.NewQueryHandlers,
)

var DeliverySet = wire.NewSet(
	httpDelivery.NewInventoryHandler,
	grpcDelivery.NewInventoryGRPCServer,
	events.NewOrderEventsHandler,
	ProvideReserveRateLimiter,
)

var AllSet = wire.NewSet(
	RepositorySet,
	CoreSet,
	CommandHandlerSet,
	QueryHandlerSet,
	DeliverySet,
	NewApp,
)
