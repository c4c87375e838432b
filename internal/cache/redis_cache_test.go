package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisCache_Basic(t *testing.T) {
	// 注意：此测试需要运行Redis实例
	if testing.Short() {
		t.Skip("Skipping Redis test in short mode")
	}

	cache, err := NewRedisCache("localhost:6379", "", 1) // 使用DB 1避免冲突
	if err != nil {
		t.Skipf("Skipping Redis test, cannot connect: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	cache.FlushDB(ctx)

	t.Run("Set and Get", func(t *testing.T) {
		key := "report:test:1"
		value := map[string]interface{}{
			"text":  "=== INVENTORY REPORT ===",
			"total": 3,
		}

		if err := cache.Set(ctx, key, value, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		var result map[string]interface{}
		if err := cache.Get(ctx, key, &result); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if result["text"] != "=== INVENTORY REPORT ===" {
			t.Errorf("Expected report text, got %v", result["text"])
		}
	})

	t.Run("Miss", func(t *testing.T) {
		var s string
		if err := cache.Get(ctx, "report:missing", &s); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Expected ErrCacheMiss, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		key := "report:test:2"
		cache.Set(ctx, key, "value", time.Minute)

		if err := cache.Del(ctx, key); err != nil {
			t.Fatalf("Del failed: %v", err)
		}
		exists, _ := cache.Exists(ctx, key)
		if exists {
			t.Error("Key should be deleted")
		}
	})

	t.Run("TTL", func(t *testing.T) {
		key := "report:test:3"
		cache.Set(ctx, key, "value", 10*time.Second)

		ttl, err := cache.TTL(ctx, key)
		if err != nil {
			t.Fatalf("TTL failed: %v", err)
		}
		if ttl <= 0 || ttl > 10*time.Second {
			t.Errorf("Expected TTL between 0 and 10s, got %v", ttl)
		}
	})

	cache.FlushDB(ctx)
}

func TestRedisCache_FromClientUnreachable(t *testing.T) {
	// nothing listens on port 1, every command fails fast
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	cache := NewRedisCacheFromClient(client)
	defer cache.Close()

	ctx := context.Background()
	if err := cache.Ping(ctx); err == nil {
		t.Fatal("Ping should fail without a server")
	}

	var s string
	err := cache.Get(ctx, "report:unreachable", &s)
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get error = %v, connection failures must not look like a miss", err)
	}
	if err := cache.Set(ctx, "report:unreachable", "text", time.Minute); err == nil {
		t.Error("Set should fail without a server")
	}
}

func TestRedisCache_FromClient(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis test in short mode")
	}

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 3})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Skipping Redis test, cannot connect: %v", err)
	}
	cache := NewRedisCacheFromClient(client)
	defer cache.Close()

	key := "report:from-client"
	if err := cache.Set(ctx, key, "shared client", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	// the cache writes through the caller's client
	if raw, err := client.Get(ctx, key).Result(); err != nil || raw != `"shared client"` {
		t.Errorf("raw value = %q, %v", raw, err)
	}
	cache.Del(ctx, key)
}

func TestCache_Compatibility(t *testing.T) {
	caches := map[string]Cache{
		"Memory": NewMemoryCache(),
		"Null":   NewNullCache(),
	}

	if !testing.Short() {
		if redisCache, err := NewRedisCache("localhost:6379", "", 2); err == nil {
			caches["Redis"] = redisCache
			defer redisCache.Close()
		}
	}

	ctx := context.Background()

	for name, cache := range caches {
		t.Run(name, func(t *testing.T) {
			if err := cache.Ping(ctx); err != nil {
				t.Errorf("Ping failed: %v", err)
			}

			key := "report:compat"
			if err := cache.Set(ctx, key, "snapshot", time.Minute); err != nil {
				t.Errorf("Set failed: %v", err)
			}

			var got string
			err := cache.Get(ctx, key, &got)
			if name == "Null" {
				if !errors.Is(err, ErrCacheMiss) {
					t.Errorf("NullCache should always miss, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got != "snapshot" {
				t.Errorf("Expected snapshot, got %q", got)
			}
			cache.Del(ctx, key)
		})
	}
}
