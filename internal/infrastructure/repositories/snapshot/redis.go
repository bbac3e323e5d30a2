package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"crypto-watcher/internal/domain/entities"
	"crypto-watcher/internal/domain/interfaces"
	"crypto-watcher/internal/infrastructure/logging"
	"crypto-watcher/internal/infrastructure/metrics"
)

// RedisClient is the subset of *redis.Client the store needs
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisStore keeps the snapshot as one JSON value under a single key, so
// several instances can share the last refresh. A SET replaces it whole.
type RedisStore struct {
	client RedisClient
	key    string
}

// NewRedisStoreWithClient creates a store over an existing client
func NewRedisStoreWithClient(client RedisClient, key string) interfaces.SnapshotStore {
	return &RedisStore{
		client: client,
		key:    key,
	}
}

// Get lee y decodifica el snapshot
func (r *RedisStore) Get(ctx context.Context) (*entities.Snapshot, error) {
	val, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordSnapshotOperation(string(BackendRedis), "get", "miss")
		return nil, entities.ErrSnapshotNotFound
	}
	if err != nil {
		metrics.RecordSnapshotOperation(string(BackendRedis), "get", "error")
		logging.Cache().CacheError(ctx, logging.CacheOpGet, r.key, err)
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}

	var snap entities.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		metrics.RecordSnapshotOperation(string(BackendRedis), "get", "error")
		return nil, fmt.Errorf("decode snapshot %s: %w", r.key, err)
	}

	metrics.RecordSnapshotOperation(string(BackendRedis), "get", "hit")
	return &snap, nil
}

// Set codifica y guarda el snapshot sin expiración
func (r *RedisStore) Set(ctx context.Context, snapshot *entities.Snapshot) error {
	if snapshot == nil {
		return ErrNilSnapshot
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		metrics.RecordSnapshotOperation(string(BackendRedis), "set", "error")
		logging.Cache().CacheError(ctx, logging.CacheOpSet, r.key, err)
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}

	metrics.RecordSnapshotOperation(string(BackendRedis), "set", "success")
	logging.Cache().Set(ctx, r.key, string(BackendRedis))
	return nil
}

// Ping checks if Redis connection is alive
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
