package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	_ "github.com/tair/stock-ledger/docs"
	"github.com/tair/stock-ledger/internal/config"
	"github.com/tair/stock-ledger/internal/inventory"
	grpcDelivery "github.com/tair/stock-ledger/internal/inventory/delivery/grpc"
	httpDelivery "github.com/tair/stock-ledger/internal/inventory/delivery/http"
	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/metrics"
	"github.com/tair/stock-ledger/internal/inventory/repository"
	"github.com/tair/stock-ledger/kafka"
	"github.com/tair/stock-ledger/pkg/breaker"
	"github.com/tair/stock-ledger/pkg/database"
	"github.com/tair/stock-ledger/pkg/logger"
	"github.com/tair/stock-ledger/pkg/tracing"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Options{
		ServiceName: cfg.ServiceName,
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})

	if err := run(cfg); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Inventory service stopped with error")
	}
	logger.Logger.Info().Msg("Inventory service stopped")
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Logger.Info().
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Str("db_driver", cfg.DBDriver).
		Msg("Starting inventory service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		JaegerEndpoint: cfg.JaegerEndpoint,
		SampleRatio:    cfg.TraceSampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
		}
	}()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := repository.NewGormRepository(db).AutoMigrate(); err != nil {
		return err
	}
	logger.Logger.Info().Msg("Database initialized successfully")

	redisClient := connectRedis(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	var (
		publisher domain.EventPublisher
		br        *breaker.Breaker
	)
	if len(cfg.KafkaBrokers) > 0 {
		br = breaker.New(breaker.Config{
			Name:              "kafka-publisher",
			MaxFailures:       cfg.BreakerFailures,
			OpenTimeout:       cfg.BreakerOpen,
			HalfOpenSuccesses: cfg.BreakerHalfOpenOK,
		})
		p, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaEventsTopic, br)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka unavailable, events will not be published")
			br = nil
		} else {
			defer p.Close()
			publisher = p
		}
	}

	app, err := inventory.InitializeApp(cfg, db, redisClient, publisher, br, m)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if err := startGRPCServer(gctx, g, cfg, app); err != nil {
		return err
	}
	startHTTPServer(gctx, g, cfg, app)

	g.Go(func() error {
		return app.Reaper.Run(gctx)
	})

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaConsumerEnabled {
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, []string{cfg.KafkaOrderEventsTopic})
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka unavailable, order events will not be consumed")
		} else {
			app.OrderEvents.Register(consumer)
			g.Go(func() error {
				defer consumer.Close()
				return consumer.Run(gctx)
			})
		}
	}

	return g.Wait()
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == config.DriverPostgres {
		return database.NewGormConnection(cfg.Postgres)
	}
	return database.NewSQLiteConnection(cfg.SQLiteDSN())
}

// connectRedis returns nil when Redis is not configured or not reachable
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("addr", cfg.RedisAddr).
			Msg("Redis unavailable, availability cache and rate limit disabled")
		client.Close()
		return nil
	}

	logger.Logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
	return client
}

func startHTTPServer(ctx context.Context, g *errgroup.Group, cfg *config.Config, app *inventory.App) {
	router := mux.NewRouter()

	middlewareConfig := httpDelivery.DefaultMiddlewareConfig()
	middlewareConfig.TimeoutDuration = cfg.HTTPTimeout
	httpDelivery.RegisterMiddlewares(router, middlewareConfig)

	app.HTTPHandler.RegisterRoutes(router, app.ReserveLimit)
	app.HTTPHandler.RegisterHealthCheck(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpDelivery.SetupCORS(middlewareConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/").
			Msg("HTTP server started")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Logger.Info().Msg("Shutting down HTTP server...")
		return srv.Shutdown(shutdownCtx)
	})
}

func startGRPCServer(ctx context.Context, g *errgroup.Group, cfg *config.Config, app *inventory.App) error {
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}

	grpcServer, healthServer := grpcDelivery.NewServer(app.GRPCServer)

	g.Go(func() error {
		logger.Logger.Info().
			Str("port", cfg.GRPCPort).
			Str("service", grpcDelivery.ServiceName).
			Msg("gRPC server started")
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Logger.Info().Msg("Shutting down gRPC server...")
		healthServer.Shutdown()

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(cfg.ShutdownTimeout):
			grpcServer.Stop()
		}
		return nil
	})

	return nil
}
