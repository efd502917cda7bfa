package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mini.Addr()}), DefaultRedisPrefix)
	t.Cleanup(func() { _ = c.Close() })
	return c, mini
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mini := newTestRedis(t)

	if _, hit, err := c.Get(ctx, "layout:abc"); hit || err != nil {
		t.Fatalf("Get() on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "layout:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:abc")
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get() = %q, %v, %v, want payload hit", data, hit, err)
	}

	// Keys are namespaced in Redis.
	if !mini.Exists("strata:layout:abc") {
		t.Error("expected key strata:layout:abc in redis")
	}
	if ttl := mini.TTL("strata:layout:abc"); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}

	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:abc"); hit {
		t.Error("Get() after Delete() should miss")
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mini := newTestRedis(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	mini.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
}

func TestNewRedisCache(t *testing.T) {
	mini := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), "redis://"+mini.Addr()+"/0")
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	defer c.Close()

	if err := c.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "http://not-redis"); err == nil {
		t.Error("NewRedisCache() with bad URL should fail")
	}
}
