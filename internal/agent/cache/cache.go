// Package cache memoizes parse results in Redis, keyed by a stable content
// fingerprint of the command text and context.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"ai-command-agent/internal/common/logger"
	"ai-command-agent/internal/common/metrics"
	"ai-command-agent/internal/models"
)

// Store wraps the Redis-backed parse-result cache. A nil Redis client puts
// the store in disabled mode: Get always misses and Set reports false.
// Backend errors degrade the same way and are logged, never propagated.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewStore creates a cache store. client may be nil for cache-disabled mode.
func NewStore(client *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "cache"}),
	}
}

// Enabled reports whether a backend is configured.
func (s *Store) Enabled() bool {
	return s.client != nil
}

// TTL returns the configured entry lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Fingerprint derives the cache key from the command text and, when
// present, the request context. xxhash is stable across process restarts;
// accidental collisions of textually distinct commands are an accepted risk.
func Fingerprint(command string, context map[string]interface{}) string {
	key := fmt.Sprintf("command:%x", xxhash.Sum64String(command))
	if len(context) > 0 {
		// encoding/json writes map keys in sorted order, so the context
		// hash is deterministic for equal contents.
		raw, err := json.Marshal(context)
		if err == nil {
			key += fmt.Sprintf(":%x", xxhash.Sum64(raw))
		}
	}
	return key
}

// Get returns the cached response payload for key, or ok=false on a miss,
// a disabled cache, or any backend error.
func (s *Store) Get(ctx context.Context, key string) (*models.CommandResponse, bool) {
	if s.client == nil {
		return nil, false
	}

	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Error("cache get error", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		metrics.CacheMisses.Inc()
		return nil, false
	}

	var cached models.CommandResponse
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.logger.Error("cache entry corrupt", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		metrics.CacheMisses.Inc()
		return nil, false
	}

	metrics.CacheHits.Inc()
	return &cached, true
}

// Set writes the response payload under key with the configured TTL.
// Returns false when the cache is disabled or the backend write fails.
func (s *Store) Set(ctx context.Context, key string, value models.CommandResponse) bool {
	if s.client == nil {
		return false
	}

	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("cache marshal error", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}

	if err := s.client.SetEx(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Error("cache set error", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	return true
}

// Ping reports backend reachability for health checks.
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("cache disabled")
	}
	return s.client.Ping(ctx).Err()
}
