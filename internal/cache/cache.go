// Package cache memoizes prediction results keyed by model version and
// feature vector. A miss or a cache failure never blocks a prediction.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"elevatr.app/predictor/internal/model"
)

const keyPrefix = "prediction:"

var (
	ErrCacheMiss          = errors.New("cache: key not found")
	ErrCacheSerialization = errors.New("cache: serialization failed")
)

type PredictionCache interface {
	Get(ctx context.Context, key string) (*model.PredictionResult, error)
	Set(ctx context.Context, key string, result *model.PredictionResult) error
	Close() error
}

// Key derives the cache key for a vector scored by the given model version.
// Results depend only on the vector and the model, so the record itself is
// not part of the key.
func Key(modelVersion string, v model.FeatureVector) string {
	h := sha256.New()
	var buf [8]byte
	for _, f := range v {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	return keyPrefix + modelVersion + ":" + hex.EncodeToString(h.Sum(nil))
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) PredictionCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *redisCache) Get(ctx context.Context, key string) (*model.PredictionResult, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var result model.PredictionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	return &result, nil
}

func (c *redisCache) Set(ctx context.Context, key string, result *model.PredictionResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	c.logger.DebugContext(ctx, "cached prediction", "key", key, "ttl", c.ttl)
	return nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}

type nopCache struct{}

// NewNop returns a cache that never hits. Used when REDIS_URL is unset.
func NewNop() PredictionCache {
	return nopCache{}
}

func (nopCache) Get(context.Context, string) (*model.PredictionResult, error) {
	return nil, ErrCacheMiss
}

func (nopCache) Set(context.Context, string, *model.PredictionResult) error { return nil }

func (nopCache) Close() error { return nil }
