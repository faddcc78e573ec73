// Package cache keeps compressed Huffman containers in Redis, keyed by a
// digest of the uncompressed input. Concurrent requests for the same input
// share one compression.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/codec/huffman"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/resilience"
)

const keyPrefix = "huff:"

// Store is the subset of the Redis client the cache uses. A missing key is
// reported with an error for which pkgredis.IsNilError is true.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

var _ Store = (*pkgredis.Client)(nil)

type ContainerCache struct {
	store   Store
	breaker *resilience.CircuitBreaker
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a cache over store. m may be nil. After repeated store
// failures the cache stops calling the store for a while and every lookup
// is a miss.
func New(store Store, ttl time.Duration, m *metrics.Metrics) *ContainerCache {
	c := &ContainerCache{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "codec-cache"),
	}
	c.breaker = resilience.NewCircuitBreaker("codec-cache", resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		Ignore:           pkgredis.IsNilError,
		OnStateChange: func(_ string, _, to resilience.State) {
			if m != nil {
				m.CodecCacheBreaker.Set(float64(to))
			}
		},
	})
	return c
}

// Get returns the cached container bytes for data. Entries that no longer
// parse as a container count as misses.
func (c *ContainerCache) Get(ctx context.Context, data []byte) ([]byte, bool) {
	key := Key(data)
	var value []byte
	err := c.breaker.Execute(func() error {
		var err error
		value, err = c.store.Get(ctx, key)
		return err
	})
	if err != nil {
		switch {
		case pkgredis.IsNilError(err):
		case errors.Is(err, resilience.ErrCircuitOpen):
			c.logger.Debug("cache bypassed", "key", key, "error", err)
		default:
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	if _, err := huffman.UnmarshalContainer(value); err != nil {
		c.logger.Warn("discarding corrupt cache entry", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hit()
	c.logger.Debug("cache hit", "key", key, "bytes", len(value))
	return value, true
}

// Set stores a compressed container for data. Failures are logged only.
func (c *ContainerCache) Set(ctx context.Context, data, container []byte) {
	key := Key(data)
	err := c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, container, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// Compress returns the container for data, from the cache when present.
// The boolean reports a cache hit.
func (c *ContainerCache) Compress(ctx context.Context, data []byte) ([]byte, bool, error) {
	if out, ok := c.Get(ctx, data); ok {
		return out, true, nil
	}
	key := Key(data)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		out, err := huffman.Compress(data)
		if err != nil {
			return nil, err
		}
		c.Set(ctx, data, out)
		return out, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]byte), false, nil
}

// Invalidate drops every cached container.
func (c *ContainerCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating codec cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

func (c *ContainerCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Key is the cache key for an uncompressed input.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (c *ContainerCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CodecCacheHitsTotal.Inc()
	}
}

func (c *ContainerCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CodecCacheMisses.Inc()
	}
}
