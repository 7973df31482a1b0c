package alerting

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/vitalstream/errors"
	"github.com/c360/vitalstream/pkg/cache"
	"github.com/c360/vitalstream/types/vital"
)

// countingStore is a RuleStore stub that counts queries.
type countingStore struct {
	queries int64
	rules   []vital.RuleDefinition
	err     error
}

func (s *countingStore) Query(_ context.Context, _ string) ([]vital.RuleDefinition, error) {
	atomic.AddInt64(&s.queries, 1)
	if s.err != nil {
		return nil, s.err
	}
	return s.rules, nil
}

func (s *countingStore) queryCount() int64 {
	return atomic.LoadInt64(&s.queries)
}

// mapDistCache is an in-memory DistributedCache stub.
type mapDistCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
	sets    int64
}

func newMapDistCache() *mapDistCache {
	return &mapDistCache{entries: make(map[string][]byte)}
}

func (m *mapDistCache) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	if !ok {
		return nil, errors.ErrKeyNotFound
	}
	return data, nil
}

func (m *mapDistCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	atomic.AddInt64(&m.sets, 1)
	return nil
}

func (m *mapDistCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *mapDistCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func newTestTieredCache(t *testing.T, store RuleStore, dist DistributedCache, localTTL time.Duration) *tieredRuleCache {
	t.Helper()
	cfg := DefaultConfig()
	if localTTL > 0 {
		cfg.LocalTTL = localTTL
	}
	local, err := cache.NewTTL[[]vital.RuleDefinition](context.Background(), cfg.LocalTTL, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })

	return newTieredRuleCache(local, dist, store, syncSubmit, &cfg, slog.Default(), nil)
}

func TestCacheLocalTierServesRepeatLookups(t *testing.T) {
	store := &countingStore{rules: []vital.RuleDefinition{singleRuleDef(1)}}
	c := newTestTieredCache(t, store, nil, 0)

	for i := 0; i < 5; i++ {
		defs := c.Get(context.Background(), "cust-1")
		require.Len(t, defs, 1)
	}
	assert.Equal(t, int64(1), store.queryCount())

	stats := c.TierStats()
	assert.Equal(t, int64(4), stats.LocalHits)
	assert.Equal(t, int64(1), stats.StoreQueries)
}

func TestCacheLocalExpiryTriggersSingleRefresh(t *testing.T) {
	store := &countingStore{rules: []vital.RuleDefinition{singleRuleDef(1)}}
	c := newTestTieredCache(t, store, nil, 30*time.Millisecond)

	c.Get(context.Background(), "cust-1")
	assert.Equal(t, int64(1), store.queryCount())

	time.Sleep(50 * time.Millisecond)
	c.Get(context.Background(), "cust-1")
	c.Get(context.Background(), "cust-1")
	assert.Equal(t, int64(2), store.queryCount())
}

func TestCacheDistributedHitBackfillsLocal(t *testing.T) {
	store := &countingStore{rules: []vital.RuleDefinition{singleRuleDef(1)}}
	dist := newMapDistCache()

	rules := []vital.RuleDefinition{singleRuleDef(42)}
	data, err := json.Marshal(rules)
	require.NoError(t, err)
	dist.entries["alert_rules:cust-1"] = data

	c := newTestTieredCache(t, store, dist, 0)

	defs := c.Get(context.Background(), "cust-1")
	require.Len(t, defs, 1)
	assert.Equal(t, int64(42), defs[0].ID)
	assert.Equal(t, int64(0), store.queryCount())

	// Second lookup is served locally.
	c.Get(context.Background(), "cust-1")
	stats := c.TierStats()
	assert.Equal(t, int64(1), stats.DistributedHits)
	assert.Equal(t, int64(1), stats.LocalHits)
}

func TestCacheStoreReadRefreshesDistributedTier(t *testing.T) {
	store := &countingStore{rules: []vital.RuleDefinition{singleRuleDef(1)}}
	dist := newMapDistCache()
	c := newTestTieredCache(t, store, dist, 0)

	c.Get(context.Background(), "cust-1")
	// syncSubmit runs the refresh task inline.
	assert.True(t, dist.has("alert_rules:cust-1"))
}

func TestCacheDistributedFailureFallsThroughToStore(t *testing.T) {
	store := &countingStore{rules: []vital.RuleDefinition{singleRuleDef(1)}}
	dist := newMapDistCache()
	dist.getErr = errors.ErrCacheUnavailable
	c := newTestTieredCache(t, store, dist, 0)

	defs := c.Get(context.Background(), "cust-1")
	assert.Len(t, defs, 1)
	assert.Equal(t, int64(1), store.queryCount())
}

func TestCacheCorruptDistributedEntryFallsThrough(t *testing.T) {
	store := &countingStore{rules: []vital.RuleDefinition{singleRuleDef(1)}}
	dist := newMapDistCache()
	dist.entries["alert_rules:cust-1"] = []byte("{not json")
	c := newTestTieredCache(t, store, dist, 0)

	defs := c.Get(context.Background(), "cust-1")
	assert.Len(t, defs, 1)
	assert.Equal(t, int64(1), store.queryCount())
}

func TestCacheStoreFailureDegradesToEmpty(t *testing.T) {
	store := &countingStore{err: errors.ErrStoreUnavailable}
	c := newTestTieredCache(t, store, nil, 0)

	defs := c.Get(context.Background(), "cust-1")
	assert.NotNil(t, defs)
	assert.Empty(t, defs)
	assert.Equal(t, int64(1), c.TierStats().StoreFailures)
}

func TestCacheRefreshFailureInvisibleToCaller(t *testing.T) {
	store := &countingStore{rules: []vital.RuleDefinition{singleRuleDef(1)}}
	dist := newMapDistCache()
	dist.getErr = errors.ErrKeyNotFound
	dist.setErr = errors.ErrCacheUnavailable
	c := newTestTieredCache(t, store, dist, 0)

	defs := c.Get(context.Background(), "cust-1")
	assert.Len(t, defs, 1)
	assert.Equal(t, int64(1), c.TierStats().RefreshFailures)
}

func TestCacheClearIsPerCustomer(t *testing.T) {
	store := &countingStore{rules: []vital.RuleDefinition{singleRuleDef(1)}}
	dist := newMapDistCache()
	c := newTestTieredCache(t, store, dist, 0)

	c.Get(context.Background(), "cust-a")
	c.Get(context.Background(), "cust-b")
	assert.Equal(t, int64(2), store.queryCount())

	c.Clear(context.Background(), "cust-a")
	assert.False(t, dist.has("alert_rules:cust-a"))
	assert.True(t, dist.has("alert_rules:cust-b"))

	// Customer B is still served locally; customer A requeries.
	c.Get(context.Background(), "cust-b")
	assert.Equal(t, int64(2), store.queryCount())
	c.Get(context.Background(), "cust-a")
	assert.Equal(t, int64(3), store.queryCount())
}

func TestCacheClearAllDropsLocalTierOnly(t *testing.T) {
	store := &countingStore{rules: []vital.RuleDefinition{singleRuleDef(1)}}
	dist := newMapDistCache()
	c := newTestTieredCache(t, store, dist, 0)

	c.Get(context.Background(), "cust-a")
	c.Get(context.Background(), "cust-b")
	assert.Equal(t, 2, c.Size())

	c.ClearAll()
	assert.Equal(t, 0, c.Size())
	// Distributed entries survive a local reset.
	assert.True(t, dist.has("alert_rules:cust-a"))
	assert.True(t, dist.has("alert_rules:cust-b"))
}
