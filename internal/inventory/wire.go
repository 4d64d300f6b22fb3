//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/stock-ledger/internal/config"
	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/metrics"
	"github.com/tair/stock-ledger/pkg/breaker"
)

// InitializeApp initializes the service with all dependencies. redisClient,
// publisher and br may be nil when those integrations are disabled.
func InitializeApp(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	publisher domain.EventPublisher,
	br *breaker.Breaker,
	m *metrics.Metrics,
) (*App, error) {
	wire.Build(AllSet)
	return nil, nil
}
