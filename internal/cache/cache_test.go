package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_Expiration(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "short", 1, time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var v int
	if err := c.Get(ctx, "short", &v); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after expiry, got %v", err)
	}
	if ok, _ := c.Exists(ctx, "short"); ok {
		t.Error("expired key should not exist")
	}
}

func TestMemoryCache_DelAndClose(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "a", "x", time.Minute)
	c.Set(ctx, "b", "y", time.Minute)
	c.Set(ctx, "c", "z", time.Minute)

	if err := c.Del(ctx, "a", "b"); err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if ok, _ := c.Exists(ctx, "a"); ok {
		t.Error("a should be deleted")
	}
	if ok, _ := c.Exists(ctx, "c"); !ok {
		t.Error("c should still exist")
	}

	c.Close()
	if ok, _ := c.Exists(ctx, "c"); ok {
		t.Error("Close should drop all entries")
	}
}

func TestMemoryCache_UnmarshalableValue(t *testing.T) {
	c := NewMemoryCache()
	if err := c.Set(context.Background(), "ch", make(chan int), time.Minute); err == nil {
		t.Error("expected marshal error for channel value")
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(ctx, "k", n, time.Minute)
				var v int
				_ = c.Get(ctx, "k", &v)
			}
		}(i)
	}
	wg.Wait()

	var v int
	if err := c.Get(ctx, "k", &v); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v < 0 || v >= 8 {
		t.Errorf("unexpected value %d", v)
	}
}
