package alerting

import (
	"time"

	"github.com/c360/vitalstream/errors"
)

// Config holds tuning knobs for the alerting engine. All durations and
// sizes have working defaults; a zero Config is usable after
// DefaultConfig-style normalization in NewEngine.
type Config struct {
	// LocalTTL bounds the age of process-local rule cache entries.
	LocalTTL time.Duration `json:"local_ttl"`

	// LocalCleanupInterval controls how often expired local entries are
	// swept in the background.
	LocalCleanupInterval time.Duration `json:"local_cleanup_interval"`

	// DistributedTTL bounds the age of distributed cache entries.
	DistributedTTL time.Duration `json:"distributed_ttl"`

	// CacheKeyPrefix namespaces rule entries in the distributed cache.
	CacheKeyPrefix string `json:"cache_key_prefix"`

	// EvaluationTimeout bounds the fan-out join for one evaluation call.
	// A category task that misses the deadline contributes nothing.
	EvaluationTimeout time.Duration `json:"evaluation_timeout"`

	// Worker pool sizing. The pool is shared between category evaluation
	// tasks and asynchronous distributed-cache refreshes.
	PoolWorkers   int `json:"pool_workers"`
	PoolQueueSize int `json:"pool_queue_size"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		LocalTTL:             5 * time.Minute,
		LocalCleanupInterval: time.Minute,
		DistributedTTL:       24 * time.Hour,
		CacheKeyPrefix:       "alert_rules:",
		EvaluationTimeout:    5 * time.Second,
		PoolWorkers:          8,
		PoolQueueSize:        256,
	}
}

// Validate checks the configuration for values that would break the
// engine outright. Zero values are filled from defaults instead.
func (c *Config) Validate() error {
	if c.LocalTTL < 0 || c.DistributedTTL < 0 || c.EvaluationTimeout < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"durations cannot be negative")
	}
	if c.PoolWorkers < 0 || c.PoolQueueSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"pool sizing cannot be negative")
	}
	return nil
}

// normalize fills unset fields from defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.LocalTTL == 0 {
		c.LocalTTL = def.LocalTTL
	}
	if c.LocalCleanupInterval == 0 {
		c.LocalCleanupInterval = def.LocalCleanupInterval
	}
	if c.DistributedTTL == 0 {
		c.DistributedTTL = def.DistributedTTL
	}
	if c.CacheKeyPrefix == "" {
		c.CacheKeyPrefix = def.CacheKeyPrefix
	}
	if c.EvaluationTimeout == 0 {
		c.EvaluationTimeout = def.EvaluationTimeout
	}
	if c.PoolWorkers == 0 {
		c.PoolWorkers = def.PoolWorkers
	}
	if c.PoolQueueSize == 0 {
		c.PoolQueueSize = def.PoolQueueSize
	}
}
