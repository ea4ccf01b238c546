// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// template.go provides the Valkey-backed store for the resolved template
// list. The repository serializes its template records and keeps them here
// so every process behind the load balancer shares one warm copy.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// templateKeyPrefix namespaces Theme Builder keys inside Valkey.
	templateKeyPrefix = "themebuilder:"

	// DefaultTemplateTTL is how long a cached template list stays valid.
	DefaultTemplateTTL = time.Hour
)

// TemplateCache stores opaque values in Valkey under a fixed prefix.
type TemplateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTemplateCache creates a template cache backed by the given Valkey client.
func NewTemplateCache(client *redis.Client, ttl time.Duration) *TemplateCache {
	if ttl <= 0 {
		ttl = DefaultTemplateTTL
	}
	return &TemplateCache{client: client, ttl: ttl}
}

// Get returns the cached value for key. Errors count as misses.
func (tc *TemplateCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := tc.client.Get(ctx, templateKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("template cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("template cache hit", "key", key)
	return val, true
}

// Set stores value under key with the configured TTL.
func (tc *TemplateCache) Set(ctx context.Context, key string, value []byte) {
	if err := tc.client.Set(ctx, templateKeyPrefix+key, value, tc.ttl).Err(); err != nil {
		slog.Warn("template cache set error", "key", key, "error", err)
	}
}

// Delete removes key from the cache.
func (tc *TemplateCache) Delete(ctx context.Context, key string) {
	if err := tc.client.Del(ctx, templateKeyPrefix+key).Err(); err != nil {
		slog.Warn("template cache delete error", "key", key, "error", err)
		return
	}
	slog.Debug("template cache invalidated", "key", key)
}

// Flush removes every Theme Builder key by scanning for the prefix.
func (tc *TemplateCache) Flush(ctx context.Context) int {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := tc.client.Scan(ctx, cursor, templateKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("template cache scan error", "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := tc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("template cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("template cache fully cleared", "deleted", deleted)
	}
	return deleted
}
