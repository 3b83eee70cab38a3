package vincache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/auto-strada/site/config"
	siteredis "github.com/auto-strada/site/redis"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "vin_valuation:"

// RedisBackend is the secondary backend: one JSON-encoded entry per VIN,
// holding only the most recent valuation. It exists so a SQLite outage
// degrades the cache instead of disabling it.
type RedisBackend struct{}

func (RedisBackend) Name() string {
	return "redis"
}

func (RedisBackend) Get(ctx context.Context, vin string, minMileage, maxMileage int) (*Entry, error) {
	blob, err := siteredis.Client.Get(ctx, redisKeyPrefix+vin).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read valuation cache: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(blob, &e); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for %s: %w", vin, err)
	}
	if e.Mileage < minMileage || e.Mileage > maxMileage {
		return nil, nil
	}
	return &e, nil
}

func (RedisBackend) Put(ctx context.Context, e Entry) error {
	blob, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := siteredis.Client.Set(ctx, redisKeyPrefix+e.VIN, blob, config.ValuationCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to write valuation cache: %w", err)
	}
	return nil
}
