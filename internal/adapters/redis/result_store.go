package redis

// Package redis provides Redis-based adapters for publishing leader results.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces result keys.
const DefaultPrefix = "matrix-leader:build:"

// ResultStore keeps the exported variables of a build in a Redis hash.
// Entries expire after the configured TTL.
type ResultStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewResultStore creates a Redis-based result store. An empty prefix uses DefaultPrefix.
func NewResultStore(client redis.UniversalClient, prefix string, ttl time.Duration) *ResultStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &ResultStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Key returns the hash key for a build.
func (s *ResultStore) Key(buildID string) string {
	return s.prefix + buildID
}

// Save replaces the hash for buildID with vars and refreshes its TTL.
func (s *ResultStore) Save(ctx context.Context, buildID string, vars map[string]string) error {
	if buildID == "" {
		return errors.New("build ID cannot be empty")
	}
	if len(vars) == 0 {
		return nil
	}

	values := make(map[string]any, len(vars))
	for k, v := range vars {
		values[k] = v
	}

	key := s.Key(buildID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save %s: %w", key, err)
	}
	return nil
}
