package geocode

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache stores encoded lookup results by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

type memoryCache struct {
	store *cache.Cache
}

// NewMemoryCache keeps results in process for ttl.
func NewMemoryCache(ttl time.Duration) Cache {
	return &memoryCache{store: cache.New(ttl, ttl*2)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.store.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte) {
	m.store.Set(key, value, cache.DefaultExpiration)
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache shares results across instances through the redis server at
// url. Redis errors degrade to cache misses.
func NewRedisCache(url string, ttl time.Duration) (Cache, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	return &redisCache{client: client, ttl: ttl, prefix: "geocode:"}, client, nil
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("geocode cache read failed")
		}
		return nil, false
	}
	return b, true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte) {
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("geocode cache write failed")
	}
}
