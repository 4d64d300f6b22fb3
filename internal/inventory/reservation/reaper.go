package reservation

import (
	"context"
	"time"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/metrics"
	"github.com/tair/stock-ledger/pkg/logger"
)

// ExpiryReleaser is the part of the engine the reaper drives
type ExpiryReleaser interface {
	ExpiredReservations(ctx context.Context, limit int) ([]domain.Reservation, error)
	ReleaseExpired(ctx context.Context, reservationID string) (*ReleaseResult, error)
}

// ReaperConfig tunes the expiry reaper
type ReaperConfig struct {
	Interval  time.Duration
	BatchSize int
}

// Reaper periodically releases reservations past their expiry
type Reaper struct {
	engine    ExpiryReleaser
	metrics   *metrics.Metrics
	interval  time.Duration
	batchSize int
}

func NewReaper(engine ExpiryReleaser, m *metrics.Metrics, cfg ReaperConfig) *Reaper {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	return &Reaper{
		engine:    engine,
		metrics:   m,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
	}
}

// Run sweeps every interval until ctx is done
func (r *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Info(ctx).
		Dur("interval", r.interval).
		Int("batch_size", r.batchSize).
		Msg("Expiry reaper started")

	for {
		select {
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
				logger.Error(ctx).Err(err).Msg("Expiry sweep failed")
			}
		case <-ctx.Done():
			logger.Info(ctx).Msg("Expiry reaper stopped")
			return nil
		}
	}
}

// Sweep releases one batch of expired reservations and returns how many it
// released. A reservation released concurrently by a client is skipped; a
// failure on one reservation does not stop the batch.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	start := time.Now()

	expired, err := r.engine.ExpiredReservations(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	released, failed := 0, 0
	for _, res := range expired {
		if ctx.Err() != nil {
			break
		}

		result, err := r.engine.ReleaseExpired(ctx, res.ID)
		if err != nil {
			failed++
			logger.Error(ctx).
				Err(err).
				Str("reservation_id", res.ID).
				Msg("Failed to release expired reservation")
			continue
		}
		if result.Released {
			released++
		}
	}

	r.metrics.ObserveSweep(time.Since(start), released, failed)
	if released > 0 || failed > 0 {
		logger.Info(ctx).
			Int("candidates", len(expired)).
			Int("released", released).
			Int("failed", failed).
			Msg("Expiry sweep finished")
	}
	return released, nil
}
