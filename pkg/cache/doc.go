// Package cache provides generic, thread-safe caching with TTL expiration,
// always-on statistics, and optional Prometheus metrics.
//
// # Cache Types
//
//   - TTL: items expire after a time-to-live; a background goroutine removes
//     expired entries, and reads also evict lazily.
//   - Noop: stores nothing; used as a safe fallback when cache construction
//     fails so callers avoid nil checks.
//
// # Quick Start
//
//	c, err := cache.NewTTL[[]vital.RuleDefinition](ctx, 5*time.Minute, time.Minute)
//	if err != nil {
//		c = cache.NewNoop[[]vital.RuleDefinition]()
//	}
//	c.Set("customer-42", rules)
//	rules, ok := c.Get("customer-42")
//
// # Observability
//
// Statistics (hits, misses, sets, deletes, evictions, size, hit ratio) are
// always tracked with atomic counters and available via Stats(). Prometheus
// export is opt-in:
//
//	c, err := cache.NewTTL[V](ctx, ttl, interval,
//		cache.WithMetrics[V](registry, "rule_cache"),
//	)
//
// Statistics and metrics are tracked independently so stats remain available
// without a Prometheus registry, which keeps tests and local runs simple.
//
// # Thread Safety
//
// All operations are safe for concurrent use. Eviction callbacks run outside
// internal locks.
package cache
