// Package cache wraps Redis for the per-token cache key contracts named
// in spec.md §6: walletCache, walletProfile, walletFirstSeen,
// orderbookState, scoreCache, featureCache, tradeWindow, hawkesState,
// cpdState. Grounded on the teacher's src/infrastructure/data.Cache
// Manager (JSON-wrapped entries, TTL-on-write, redis.Nil as the miss
// signal) and CRun0.9's smaller RedisCache (thin redis.Client wrapper),
// generalized to a single JSON-valued Get/Set/Delete plus namespaced
// key builders instead of one bespoke method per data shape.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key does not exist or has expired.
var ErrMiss = errors.New("cache: miss")

// Manager is the cache boundary the rest of the core depends on, so a
// disabled/unreachable cache can be swapped for a no-op without
// touching callers (§7 StorageUnavailable: research/monitor reads
// degrade, they never panic on a cache miss).
type Manager interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) bool
	Close() error
}

// RedisManager implements Manager against go-redis v9.
type RedisManager struct {
	client *redis.Client
}

// NewRedisManager dials addr. db selects the Redis logical database.
func NewRedisManager(addr string, db int) *RedisManager {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})
	return &RedisManager{client: client}
}

// Get unmarshals the cached JSON value for key into dest. Returns
// ErrMiss if the key is absent or expired.
func (m *RedisManager) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := m.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("cache unmarshal %s: %w", key, err)
	}
	return nil
}

// Set JSON-marshals value and stores it under key with ttl. A zero ttl
// means no expiration, matching go-redis's own convention.
func (m *RedisManager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if err := m.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (m *RedisManager) Delete(ctx context.Context, key string) error {
	return m.client.Del(ctx, key).Err()
}

func (m *RedisManager) Health(ctx context.Context) bool {
	pong, err := m.client.Ping(ctx).Result()
	return err == nil && pong == "PONG"
}

func (m *RedisManager) Close() error { return m.client.Close() }

// NoopManager is used when no cache address is configured; every read
// misses and every write is dropped, matching the "degrade to empty"
// policy for StorageUnavailable (§7).
type NoopManager struct{}

func (NoopManager) Get(ctx context.Context, key string, dest interface{}) error { return ErrMiss }
func (NoopManager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (NoopManager) Delete(ctx context.Context, key string) error { return nil }
func (NoopManager) Health(ctx context.Context) bool               { return false }
func (NoopManager) Close() error                                  { return nil }
