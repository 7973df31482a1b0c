package alerting

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/c360/vitalstream/errors"
	"github.com/c360/vitalstream/metric"
	"github.com/c360/vitalstream/pkg/cache"
	"github.com/c360/vitalstream/pkg/worker"
	"github.com/c360/vitalstream/types/vital"
)

// task is a unit of background work. One bounded pool serves both
// category evaluation tasks and asynchronous cache refreshes.
type task func(ctx context.Context) error

// CacheStats is the observability snapshot returned by CacheStats.
type CacheStats struct {
	LocalSize    int                `json:"local_size"`
	LocalSummary cache.StatsSummary `json:"local_summary"`
	Tiers        TierStats          `json:"tiers"`
	Pool         worker.PoolStats   `json:"pool"`
}

// Engine is the per-tenant rule evaluation engine. It is stateless per
// call; the only state carried across calls is the tiered rule cache
// and usage counters.
type Engine struct {
	config Config

	store       RuleStore
	distributed DistributedCache

	pool      *worker.Pool[task]
	ruleCache *tieredRuleCache
	compiler  *Compiler
	evaluator *evaluator

	registry *metric.MetricsRegistry
	metrics  *EngineMetrics
	logger   *slog.Logger

	// Injectable for tests.
	now   func() time.Time
	newID func() string

	started bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetricsRegistry enables Prometheus metrics.
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithClock overrides the wall clock used for effective-window checks
// and alert timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides alert id generation.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// NewEngine creates an engine over the given rule store. The
// distributed cache may be nil, in which case lookups go local tier to
// store directly.
func NewEngine(store RuleStore, distributed DistributedCache, config Config, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Engine", "NewEngine",
			"rule store is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.normalize()

	e := &Engine{
		config:      config,
		store:       store,
		distributed: distributed,
		logger:      slog.Default(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "alerting-engine")
	e.metrics = newEngineMetrics(e.registry)

	e.pool = worker.NewPool(config.PoolWorkers, config.PoolQueueSize,
		func(ctx context.Context, t task) error { return t(ctx) })

	return e, nil
}

// Start brings up the worker pool and the process-local cache. The
// context governs background goroutine lifetimes.
func (e *Engine) Start(ctx context.Context) error {
	if e.started {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Engine", "Start", "start")
	}

	local, err := cache.NewTTL[[]vital.RuleDefinition](ctx, e.config.LocalTTL, e.config.LocalCleanupInterval)
	if err != nil {
		return errors.WrapFatal(err, "Engine", "Start", "local cache creation")
	}

	if err := e.pool.Start(ctx); err != nil {
		return errors.WrapFatal(err, "Engine", "Start", "worker pool start")
	}

	e.ruleCache = newTieredRuleCache(local, e.distributed, e.store,
		e.pool.Submit, &e.config, e.logger, e.metrics)
	e.compiler = newCompiler(e.logger, e.metrics, e.now)
	e.evaluator = newEvaluator(e.pool.Submit, &e.config, e.now, e.newID, e.logger, e.metrics)

	e.started = true
	e.logger.Info("alerting engine started",
		"local_ttl", e.config.LocalTTL,
		"distributed_ttl", e.config.DistributedTTL,
		"pool_workers", e.config.PoolWorkers)
	return nil
}

// Stop drains the worker pool, waiting up to timeout for in-flight
// tasks.
func (e *Engine) Stop(timeout time.Duration) error {
	if !e.started {
		return nil
	}
	e.started = false
	if err := e.pool.Stop(timeout); err != nil {
		return errors.WrapTransient(err, "Engine", "Stop", "worker pool drain")
	}
	e.logger.Info("alerting engine stopped")
	return nil
}

// EvaluateRules evaluates one measurement event against the tenant's
// active rules. It never returns an error: infrastructure failures
// degrade to an empty result list, leaving downstream notification
// untouched.
func (e *Engine) EvaluateRules(ctx context.Context, event vital.MeasurementEvent) []vital.AlertResult {
	if !e.started {
		e.logger.Warn("evaluate called before start", "customer_id", event.CustomerID)
		return []vital.AlertResult{}
	}

	start := time.Now()
	if e.metrics != nil {
		e.metrics.evaluationsTotal.Inc()
		defer func() {
			e.metrics.evaluationDuration.Observe(time.Since(start).Seconds())
			e.metrics.localCacheSize.Set(float64(e.ruleCache.Size()))
		}()
	}

	defs := e.ruleCache.Get(ctx, event.CustomerID)
	if len(defs) == 0 {
		return []vital.AlertResult{}
	}

	set := e.compiler.Compile(defs)
	if set.Empty() {
		return []vital.AlertResult{}
	}

	results := e.evaluator.EvaluateAll(event, set)
	if len(results) > 0 {
		e.logger.Info("alerts triggered",
			"customer_id", event.CustomerID,
			"device_sn", event.DeviceSN,
			"count", len(results))
	}
	return results
}

// ClearCustomerCache invalidates one tenant's cached rules in the local
// tier and, best effort, in the distributed tier.
func (e *Engine) ClearCustomerCache(ctx context.Context, customerID string) {
	if !e.started {
		return
	}
	e.ruleCache.Clear(ctx, customerID)
	e.logger.Info("customer rule cache cleared", "customer_id", customerID)
}

// ClearLocalCache drops every tenant from the process-local tier.
func (e *Engine) ClearLocalCache() {
	if !e.started {
		return
	}
	e.ruleCache.ClearAll()
	e.logger.Info("local rule cache cleared")
}

// CacheStats returns a point-in-time observability snapshot.
func (e *Engine) CacheStats() CacheStats {
	if !e.started {
		return CacheStats{}
	}
	return CacheStats{
		LocalSize:    e.ruleCache.Size(),
		LocalSummary: e.ruleCache.local.Stats().Summary(),
		Tiers:        e.ruleCache.TierStats(),
		Pool:         e.pool.Stats(),
	}
}
