// Package alerting implements the per-tenant health-measurement rule
// engine: tiered rule caching, rule compilation, and parallel bounded
// evaluation.
//
// # Architecture
//
// One Engine serves all tenants. For each incoming measurement event it
// resolves the tenant's rule definitions through a three-tier cache,
// compiles them into typed rule variants, and fans evaluation out across
// rule categories on a shared bounded worker pool:
//
//	event -> tieredRuleCache.Get -> Compiler.Compile -> evaluator.EvaluateAll -> []AlertResult
//
// # Cache tiers
//
// Rule lookups walk three tiers in order:
//
//  1. Process-local TTL cache (5 minutes by default). Cheapest, per
//     instance.
//  2. Distributed cache (24 hours by default), shared across engine
//     instances. A hit backfills the local tier synchronously.
//  3. Authoritative rule store. A successful query populates the local
//     tier synchronously and schedules a fire-and-forget refresh of the
//     distributed tier on the worker pool.
//
// Failures at any tier fall through to the next. If the store itself is
// unreachable the lookup degrades to an empty rule list: an outage must
// mean "no alerts", never a blocked or crashed measurement pipeline.
// Two concurrent lookups for the same tenant may both miss the local
// tier and query downstream; there is no single-flight guarantee.
//
// # Rule categories
//
// SINGLE rules compare one physical sign against min/max thresholds.
// COMPOSITE rules combine multiple sign comparisons under AND/OR.
// COMPLEX is reserved; compilation always skips it.
//
// Compilation filters out disabled rules and rules outside their
// effective daily time window or weekday list, evaluated against the
// current wall clock. Compilation is redone on every call from the
// cached raw definitions; the compiled form is deliberately not cached.
//
// # Evaluation
//
// Each non-empty category becomes one task on the worker pool. Tasks
// are joined under a single deadline (5 seconds by default); a task
// that misses it is abandoned, not cancelled, and its category
// contributes nothing to that call. EvaluateRules never returns an
// error.
//
// # Usage
//
//	engine, err := alerting.NewEngine(store, distCache, alerting.DefaultConfig(),
//		alerting.WithMetricsRegistry(registry))
//	if err != nil {
//		return err
//	}
//	if err := engine.Start(ctx); err != nil {
//		return err
//	}
//	defer engine.Stop(5 * time.Second)
//
//	alerts := engine.EvaluateRules(ctx, event)
package alerting
