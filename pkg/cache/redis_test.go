package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRedisCache(t)

	// Miss before Set
	_, hit, err := c.Get(ctx, "artifact:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Get before Set should miss")
	}

	// Set then Get
	payload := []byte("<svg/>")
	if err := c.Set(ctx, "artifact:abc", payload, time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "artifact:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("Get after Set should hit")
	}
	if string(data) != string(payload) {
		t.Errorf("Get = %q, want %q", data, payload)
	}

	// Delete then miss
	if err := c.Delete(ctx, "artifact:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "artifact:abc")
	if hit {
		t.Error("Get after Delete should miss")
	}
}

func TestRedisCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Advance past the TTL
	mr.FastForward(2 * time.Minute)

	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Expired entry should miss")
	}
}

func TestNewRedisCachePingFailure(t *testing.T) {
	ctx := context.Background()

	// Nothing listens on this address
	_, err := NewRedisCache(ctx, "127.0.0.1:1", WithDB(1), WithPassword(""))
	if err == nil {
		t.Fatal("NewRedisCache should fail when the server is unreachable")
	}
}
