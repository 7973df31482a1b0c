package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestTTL(t *testing.T, ttl, cleanup time.Duration) Cache[string] {
	t.Helper()
	c, err := NewTTL[string](context.Background(), ttl, cleanup)
	if err != nil {
		t.Fatalf("failed to create TTL cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestTTLBasicOperations(t *testing.T) {
	c := newTestTTL(t, time.Minute, time.Minute)

	if value, exists := c.Get("key1"); exists {
		t.Errorf("expected cache miss, got value: %s", value)
	}

	isNew, err := c.Set("key1", "value1")
	if err != nil {
		t.Fatalf("unexpected error setting key: %v", err)
	}
	if !isNew {
		t.Error("expected new entry creation")
	}

	if value, exists := c.Get("key1"); !exists || value != "value1" {
		t.Errorf("expected 'value1', got value: %s, exists: %t", value, exists)
	}

	isNew, err = c.Set("key1", "value1_updated")
	if err != nil {
		t.Fatalf("unexpected error updating key: %v", err)
	}
	if isNew {
		t.Error("expected existing entry update")
	}

	deleted, err := c.Delete("key1")
	if err != nil {
		t.Fatalf("unexpected error deleting key: %v", err)
	}
	if !deleted {
		t.Error("expected successful deletion")
	}

	deleted, _ = c.Delete("key1")
	if deleted {
		t.Error("expected deletion failure for non-existent key")
	}
}

func TestTTLRejectsEmptyKey(t *testing.T) {
	c := newTestTTL(t, time.Minute, time.Minute)

	if _, err := c.Set("", "value"); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := c.Delete(""); err == nil {
		t.Error("expected error for empty key delete")
	}
}

func TestTTLExpiration(t *testing.T) {
	c := newTestTTL(t, 20*time.Millisecond, time.Hour)

	if _, err := c.Set("ephemeral", "value"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, exists := c.Get("ephemeral"); !exists {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(40 * time.Millisecond)

	if _, exists := c.Get("ephemeral"); exists {
		t.Error("expected miss after expiry")
	}
	if c.Stats().Evictions() == 0 {
		t.Error("expected lazy eviction to be recorded")
	}
}

func TestTTLBackgroundCleanup(t *testing.T) {
	c := newTestTTL(t, 10*time.Millisecond, 20*time.Millisecond)

	for i := 0; i < 5; i++ {
		if _, err := c.Set(fmt.Sprintf("key%d", i), "value"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.Size() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("expected background cleanup to empty the cache, size=%d", c.Size())
}

func TestTTLClearAndKeys(t *testing.T) {
	c := newTestTTL(t, time.Minute, time.Minute)

	_, _ = c.Set("a", "1")
	_, _ = c.Set("b", "2")

	if got := len(c.Keys()); got != 2 {
		t.Errorf("expected 2 keys, got %d", got)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("unexpected error clearing: %v", err)
	}
	if c.Size() != 0 {
		t.Errorf("expected empty cache after clear, size=%d", c.Size())
	}
}

func TestTTLEvictionCallback(t *testing.T) {
	var mu sync.Mutex
	evicted := make(map[string]string)

	c, err := NewTTL[string](context.Background(), 10*time.Millisecond, time.Hour,
		WithEvictionCallback[string](func(key, value string) {
			mu.Lock()
			evicted[key] = value
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer func() { _ = c.Close() }()

	_, _ = c.Set("key1", "value1")
	time.Sleep(30 * time.Millisecond)
	_, _ = c.Get("key1") // trigger lazy eviction

	mu.Lock()
	defer mu.Unlock()
	if evicted["key1"] != "value1" {
		t.Errorf("expected eviction callback for key1, got %v", evicted)
	}
}

func TestTTLStats(t *testing.T) {
	c := newTestTTL(t, time.Minute, time.Minute)

	_, _ = c.Set("key", "value")
	_, _ = c.Get("key")
	_, _ = c.Get("missing")

	stats := c.Stats()
	if stats.Hits() != 1 {
		t.Errorf("expected 1 hit, got %d", stats.Hits())
	}
	if stats.Misses() != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses())
	}
	if stats.HitRatio() != 0.5 {
		t.Errorf("expected 0.5 hit ratio, got %f", stats.HitRatio())
	}
}

func TestTTLConcurrentAccess(t *testing.T) {
	c := newTestTTL(t, time.Minute, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key%d", j%10)
				_, _ = c.Set(key, fmt.Sprintf("value%d-%d", n, j))
				_, _ = c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Size() != 10 {
		t.Errorf("expected 10 entries, got %d", c.Size())
	}
}

func TestNoopCache(t *testing.T) {
	c := NewNoop[string]()

	isNew, err := c.Set("key", "value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isNew {
		t.Error("noop cache should never report new entries")
	}
	if _, exists := c.Get("key"); exists {
		t.Error("noop cache should always miss")
	}
	if c.Size() != 0 {
		t.Error("noop cache should always be empty")
	}
	if err := c.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}
