package alerting

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/c360/vitalstream/errors"
	"github.com/c360/vitalstream/pkg/cache"
	"github.com/c360/vitalstream/types/vital"
)

// refreshTimeout bounds each fire-and-forget distributed cache write.
const refreshTimeout = 10 * time.Second

// TierStats counts lookups served per tier plus refresh outcomes.
type TierStats struct {
	LocalHits        int64 `json:"local_hits"`
	DistributedHits  int64 `json:"distributed_hits"`
	StoreQueries     int64 `json:"store_queries"`
	StoreFailures    int64 `json:"store_failures"`
	RefreshFailures  int64 `json:"refresh_failures"`
	RefreshesDropped int64 `json:"refreshes_dropped"`
}

// tieredRuleCache resolves a tenant's rule definitions through three
// tiers: process-local TTL cache, distributed cache, authoritative
// store. Failures at any tier degrade to the next; if all tiers fail
// the lookup returns an empty list so the measurement pipeline keeps
// flowing without alerts.
type tieredRuleCache struct {
	local       cache.Cache[[]vital.RuleDefinition]
	distributed DistributedCache
	store       RuleStore
	submit      func(task) error

	keyPrefix      string
	distributedTTL time.Duration

	localHits        int64
	distributedHits  int64
	storeQueries     int64
	storeFailures    int64
	refreshFailures  int64
	refreshesDropped int64

	logger  *slog.Logger
	metrics *EngineMetrics
}

func newTieredRuleCache(
	local cache.Cache[[]vital.RuleDefinition],
	distributed DistributedCache,
	store RuleStore,
	submit func(task) error,
	config *Config,
	logger *slog.Logger,
	metrics *EngineMetrics,
) *tieredRuleCache {
	return &tieredRuleCache{
		local:          local,
		distributed:    distributed,
		store:          store,
		submit:         submit,
		keyPrefix:      config.CacheKeyPrefix,
		distributedTTL: config.DistributedTTL,
		logger:         logger.With("component", "rule-cache"),
		metrics:        metrics,
	}
}

func (c *tieredRuleCache) key(customerID string) string {
	return c.keyPrefix + customerID
}

// Get resolves the rule definitions for one tenant. It never returns an
// error; an unreachable store degrades to an empty list.
func (c *tieredRuleCache) Get(ctx context.Context, customerID string) []vital.RuleDefinition {
	key := c.key(customerID)

	if defs, ok := c.local.Get(key); ok {
		atomic.AddInt64(&c.localHits, 1)
		c.tierHit("local")
		return defs
	}

	if defs, ok := c.fromDistributed(ctx, key); ok {
		atomic.AddInt64(&c.distributedHits, 1)
		c.tierHit("distributed")
		// Synchronous backfill of the local tier.
		if _, err := c.local.Set(key, defs); err != nil {
			c.logger.Warn("local cache backfill failed", "customer_id", customerID, "error", err)
		}
		return defs
	}

	return c.fromStore(ctx, customerID, key)
}

func (c *tieredRuleCache) fromDistributed(ctx context.Context, key string) ([]vital.RuleDefinition, bool) {
	if c.distributed == nil {
		return nil, false
	}
	data, err := c.distributed.Get(ctx, key)
	if err != nil {
		if !stderrors.Is(err, errors.ErrKeyNotFound) {
			c.logger.Warn("distributed cache read failed, falling through to store",
				"key", key, "error", err)
		}
		return nil, false
	}
	var defs []vital.RuleDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		c.logger.Warn("distributed cache entry is corrupt, falling through to store",
			"key", key, "error", err)
		return nil, false
	}
	return defs, true
}

func (c *tieredRuleCache) fromStore(ctx context.Context, customerID, key string) []vital.RuleDefinition {
	atomic.AddInt64(&c.storeQueries, 1)
	defs, err := c.store.Query(ctx, customerID)
	if err != nil {
		atomic.AddInt64(&c.storeFailures, 1)
		if c.metrics != nil {
			c.metrics.storeQueries.WithLabelValues("error").Inc()
		}
		c.logger.Error("rule store query failed, degrading to no rules",
			"customer_id", customerID, "error", err)
		return []vital.RuleDefinition{}
	}
	if c.metrics != nil {
		c.metrics.storeQueries.WithLabelValues("success").Inc()
	}
	c.tierHit("store")

	if _, err := c.local.Set(key, defs); err != nil {
		c.logger.Warn("local cache populate failed", "customer_id", customerID, "error", err)
	}
	c.refreshDistributed(customerID, key, defs)
	return defs
}

// refreshDistributed schedules a fire-and-forget write of the fresh
// definitions into the distributed tier. Scheduling or write failures
// are logged and counted but never surface to the triggering call.
func (c *tieredRuleCache) refreshDistributed(customerID, key string, defs []vital.RuleDefinition) {
	if c.distributed == nil || c.submit == nil {
		return
	}
	err := c.submit(func(context.Context) error {
		data, err := json.Marshal(defs)
		if err != nil {
			atomic.AddInt64(&c.refreshFailures, 1)
			return errors.WrapInvalid(err, "tieredRuleCache", "refreshDistributed",
				"failed to encode rule definitions")
		}
		refreshCtx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := c.distributed.Set(refreshCtx, key, data, c.distributedTTL); err != nil {
			atomic.AddInt64(&c.refreshFailures, 1)
			if c.metrics != nil {
				c.metrics.refreshFailures.Inc()
			}
			c.logger.Warn("distributed cache refresh failed",
				"customer_id", customerID, "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		atomic.AddInt64(&c.refreshesDropped, 1)
		c.logger.Warn("distributed cache refresh not scheduled",
			"customer_id", customerID, "error", err)
	}
}

// Clear drops one tenant's local entry immediately and best-effort
// removes the distributed entry.
func (c *tieredRuleCache) Clear(ctx context.Context, customerID string) {
	key := c.key(customerID)
	if _, err := c.local.Delete(key); err != nil {
		c.logger.Warn("local cache delete failed", "customer_id", customerID, "error", err)
	}
	if c.distributed == nil {
		return
	}
	if err := c.distributed.Delete(ctx, key); err != nil {
		c.logger.Warn("distributed cache invalidation failed",
			"customer_id", customerID, "error", err)
	}
}

// ClearAll drops the entire process-local tier. The distributed tier is
// untouched; entries there age out on their own TTL.
func (c *tieredRuleCache) ClearAll() {
	if err := c.local.Clear(); err != nil {
		c.logger.Warn("local cache clear failed", "error", err)
	}
}

// Size returns the number of tenants in the local tier.
func (c *tieredRuleCache) Size() int {
	return c.local.Size()
}

// TierStats returns a snapshot of per-tier lookup counters.
func (c *tieredRuleCache) TierStats() TierStats {
	return TierStats{
		LocalHits:        atomic.LoadInt64(&c.localHits),
		DistributedHits:  atomic.LoadInt64(&c.distributedHits),
		StoreQueries:     atomic.LoadInt64(&c.storeQueries),
		StoreFailures:    atomic.LoadInt64(&c.storeFailures),
		RefreshFailures:  atomic.LoadInt64(&c.refreshFailures),
		RefreshesDropped: atomic.LoadInt64(&c.refreshesDropped),
	}
}

func (c *tieredRuleCache) tierHit(tier string) {
	if c.metrics != nil {
		c.metrics.cacheTierHits.WithLabelValues(tier).Inc()
	}
}
