//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func redisAddr() string {
	if addr := os.Getenv("DUNGEONBUILDER_REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: redisAddr(), Prefix: "dungeonbuilder-test:"})
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer c.Close()
	defer c.Clear(ctx)

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key should miss")
	}
}
