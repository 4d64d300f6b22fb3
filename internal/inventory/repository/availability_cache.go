package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/stock-ledger/pkg/logger"
)

var errStaleGeneration = errors.New("availability cache generation moved")

// RedisAvailabilityCache caches per-product availability for CheckStock.
// Entries are advisory: a short TTL bounds staleness and every committed
// mutation invalidates the product's key. A nil cache is a no-op.
//
// Each product has a generation counter next to its value. Invalidate bumps
// it and deletes the value in one MULTI; Set writes under WATCH only while the
// counter still holds the generation the reader saw on its miss.
type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	if client == nil {
		return nil
	}
	return &RedisAvailabilityCache{client: client, ttl: ttl}
}

func availabilityKey(productID uint) string {
	return fmt.Sprintf("stock:available:%d", productID)
}

func generationKey(productID uint) string {
	return fmt.Sprintf("stock:available:%d:gen", productID)
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, productID uint) (int, int64, bool) {
	if c == nil {
		return 0, 0, false
	}

	vals, err := c.client.MGet(ctx, availabilityKey(productID), generationKey(productID)).Result()
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("product_id", productID).Msg("Availability cache read failed")
		return 0, 0, false
	}

	var generation int64
	if raw, ok := vals[1].(string); ok {
		generation, _ = strconv.ParseInt(raw, 10, 64)
	}

	raw, ok := vals[0].(string)
	if !ok {
		return 0, generation, false
	}
	available, err := strconv.Atoi(raw)
	if err != nil {
		return 0, generation, false
	}
	return available, generation, true
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, productID uint, available int, generation int64) {
	if c == nil {
		return
	}

	genKey := generationKey(productID)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, availabilityKey(productID), available, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		logger.Debug(ctx).Uint("product_id", productID).Msg("Skipped caching availability read before an invalidation")
	default:
		logger.Warn(ctx).Err(err).Uint("product_id", productID).Msg("Availability cache write failed")
	}
}

func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, productID uint) {
	if c == nil {
		return
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(productID))
		pipe.Del(ctx, availabilityKey(productID))
		return nil
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("product_id", productID).Msg("Availability cache invalidation failed")
	}
}
