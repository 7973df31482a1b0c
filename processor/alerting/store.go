package alerting

import (
	"context"
	"time"

	"github.com/c360/vitalstream/types/vital"
)

// RuleStore is the authoritative source of rule definitions. Query must
// return only enabled, not-deleted rules, ordered by priority ascending.
type RuleStore interface {
	Query(ctx context.Context, customerID string) ([]vital.RuleDefinition, error)
}

// DistributedCache is an opaque blob store shared across engine
// instances, keyed by the configured prefix plus customer id. Get
// returns errors.ErrKeyNotFound when the key is absent. The tier is
// eventually consistent; the engine never read-after-write verifies it.
type DistributedCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
