package pricing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/catalystlab/catalyst/internal/core"
)

const missMarker = "none"

// RedisSource is a read-through price layer shared across runs. Hits
// and misses are stored under price:<ticker>:<date> so repeated
// backtests over the same window avoid hammering the upstream source.
// Redis failures degrade to direct upstream lookups.
type RedisSource struct {
	client   *redis.Client
	upstream Source
	ttl      time.Duration
	logger   *zap.Logger
}

// NewRedisSource wraps an upstream source with a Redis cache.
func NewRedisSource(client *redis.Client, upstream Source, ttl time.Duration, logger *zap.Logger) *RedisSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSource{client: client, upstream: upstream, ttl: ttl, logger: logger}
}

func priceKey(ticker string, onOrAfter time.Time) string {
	return fmt.Sprintf("price:%s:%s", ticker, onOrAfter.Format("2006-01-02"))
}

// GetClose implements Source.
func (r *RedisSource) GetClose(ctx context.Context, ticker string, onOrAfter time.Time) (float64, error) {
	key := priceKey(ticker, onOrAfter)

	val, err := r.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if val == missMarker {
			return 0, core.ErrNoData
		}
		price, parseErr := strconv.ParseFloat(val, 64)
		if parseErr == nil {
			return price, nil
		}
		// Corrupt entry: fall through to upstream and overwrite.
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("price cache read failed, falling back to source",
			zap.String("ticker", ticker),
			zap.Error(err),
		)
	}

	price, err := r.upstream.GetClose(ctx, ticker, onOrAfter)
	if err != nil {
		if errors.Is(err, core.ErrNoData) {
			r.store(ctx, key, missMarker)
		}
		return 0, err
	}

	r.store(ctx, key, strconv.FormatFloat(price, 'f', -1, 64))
	return price, nil
}

func (r *RedisSource) store(ctx context.Context, key, val string) {
	if err := r.client.Set(ctx, key, val, r.ttl).Err(); err != nil {
		r.logger.Warn("price cache write failed", zap.String("key", key), zap.Error(err))
	}
}
