package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"

	"crypto-watcher/internal/domain/interfaces"
	"crypto-watcher/internal/infrastructure/config"
	"crypto-watcher/internal/infrastructure/logging"
)

// Backend represents the type of snapshot store implementation
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)

const (
	pingTimeout = 5 * time.Second
	pingBackoff = 500 * time.Millisecond
	pingMaxWait = 5 * time.Second
)

// ErrNilSnapshot is returned when Set receives nil
var ErrNilSnapshot = errors.New("snapshot cannot be nil")

// Factory provides methods to create snapshot store instances
type Factory struct {
	newRedisClient func(cfg config.RedisConfig) RedisClient
}

// NewFactory creates a new snapshot store factory
func NewFactory() *Factory {
	return &Factory{
		newRedisClient: func(cfg config.RedisConfig) RedisClient {
			return redis.NewClient(&redis.Options{
				Addr:     cfg.Addr,
				Password: cfg.Password,
				DB:       cfg.DB,
			})
		},
	}
}

// CreateStore creates a snapshot store based on configuration
func (f *Factory) CreateStore(ctx context.Context, cfg config.SnapshotConfig) (interfaces.SnapshotStore, error) {
	switch Backend(cfg.Backend) {
	case BackendMemory:
		logging.Info(ctx, "Creating memory snapshot store", logging.Fields{
			logging.FieldCacheBackend: string(BackendMemory),
		})
		return NewMemoryStore(), nil

	case BackendRedis:
		logging.Info(ctx, "Creating Redis snapshot store", logging.Fields{
			logging.FieldCacheBackend: string(BackendRedis),
			"addr":                    cfg.Redis.Addr,
			"database":                cfg.Redis.DB,
			"key":                     cfg.Redis.Key,
		})
		return f.createRedisStore(ctx, cfg.Redis)

	default:
		return nil, fmt.Errorf("unsupported snapshot backend: %s", cfg.Backend)
	}
}

// createRedisStore connects and checks the connection, retrying the ping only.
// Snapshot reads and writes are never retried.
func (f *Factory) createRedisStore(ctx context.Context, cfg config.RedisConfig) (interfaces.SnapshotStore, error) {
	client := f.newRedisClient(cfg)

	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}

	err := retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()
			return client.Ping(pingCtx).Err()
		},
		retry.Attempts(attempts),
		retry.Delay(pingBackoff),
		retry.MaxDelay(pingMaxWait),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logging.Warn(ctx, "Redis ping failed, retrying", logging.Fields{
				"addr":         cfg.Addr,
				"attempt":      n + 1,
				"max_attempts": attempts,
				"error":        err.Error(),
			})
		}),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	logging.Info(ctx, "Redis connection established successfully", logging.Fields{
		"addr":     cfg.Addr,
		"database": cfg.DB,
	})
	return NewRedisStoreWithClient(client, cfg.Key), nil
}
