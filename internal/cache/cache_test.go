// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func testValkeyOptions() ValkeyOptions {
	return ValkeyOptions{
		Host:     envOr("VALKEY_HOST", "localhost"),
		Port:     envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	}
}

// testValkeyClient connects to the test database (DB 15) and removes the
// template keys afterwards. Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client, err := ConnectValkey(context.Background(), testValkeyOptions())
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}

	t.Cleanup(func() {
		NewTemplateCache(client, time.Minute).Flush(context.Background())
		client.Close()
	})
	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestValkeyOptionsAddr(t *testing.T) {
	tests := []struct {
		opts ValkeyOptions
		want string
	}{
		{ValkeyOptions{Host: "localhost", Port: "6379"}, "localhost:6379"},
		{ValkeyOptions{Host: "::1", Port: "6380"}, "[::1]:6380"},
	}
	for _, tt := range tests {
		if got := tt.opts.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestConnectValkey_Unreachable(t *testing.T) {
	_, err := ConnectValkey(context.Background(), ValkeyOptions{Host: "127.0.0.1", Port: "1"})
	if err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestTemplateCacheSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	tc := NewTemplateCache(client, time.Minute)

	ctx := context.Background()

	// Miss.
	data, ok := tc.Get(ctx, "tb:test")
	if ok {
		t.Error("expected cache miss")
	}
	if data != nil {
		t.Error("expected nil data on miss")
	}

	payload := []byte(`[{"id":1,"location":"single"}]`)
	tc.Set(ctx, "tb:test", payload)

	data, ok = tc.Get(ctx, "tb:test")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != string(payload) {
		t.Errorf("data mismatch: got %q, want %q", data, payload)
	}
}

func TestTemplateCacheDelete(t *testing.T) {
	client := testValkeyClient(t)
	tc := NewTemplateCache(client, time.Minute)

	ctx := context.Background()
	tc.Set(ctx, "tb:delete-me", []byte("cached"))

	if _, ok := tc.Get(ctx, "tb:delete-me"); !ok {
		t.Fatal("expected cache hit before delete")
	}

	tc.Delete(ctx, "tb:delete-me")

	if _, ok := tc.Get(ctx, "tb:delete-me"); ok {
		t.Error("expected cache miss after delete")
	}
}

func TestTemplateCacheFlush(t *testing.T) {
	client := testValkeyClient(t)
	tc := NewTemplateCache(client, time.Minute)

	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		tc.Set(ctx, key, []byte(key))
	}

	if n := tc.Flush(ctx); n < 3 {
		t.Errorf("Flush deleted %d keys, want at least 3", n)
	}

	for _, key := range []string{"a", "b", "c"} {
		if _, ok := tc.Get(ctx, key); ok {
			t.Errorf("expected miss for %q after Flush", key)
		}
	}
}

func TestTemplateCacheExpiry(t *testing.T) {
	client := testValkeyClient(t)
	tc := NewTemplateCache(client, time.Minute)

	ctx := context.Background()
	tc.Set(ctx, "tb:ttl", []byte("x"))

	ttl, err := client.TTL(ctx, templateKeyPrefix+"tb:ttl").Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL: got %v, want within (0, 1m]", ttl)
	}
}

func TestNewTemplateCacheDefaultTTL(t *testing.T) {
	tc := NewTemplateCache(nil, 0)
	if tc.ttl != DefaultTemplateTTL {
		t.Errorf("expected DefaultTemplateTTL (%v), got %v", DefaultTemplateTTL, tc.ttl)
	}
}
