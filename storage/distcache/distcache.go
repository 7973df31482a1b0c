// Package distcache adapts a NATS JetStream key-value bucket into the
// distributed rule cache tier.
package distcache

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/c360/vitalstream/errors"
	"github.com/c360/vitalstream/natsclient"
)

// KVCache backs the distributed cache tier with a JetStream KV bucket.
// Entry TTL is a bucket-level property configured at bucket creation,
// so the per-call ttl argument is ignored here.
type KVCache struct {
	kv *natsclient.KVStore
}

// New wraps a KV store.
func New(kv *natsclient.KVStore) *KVCache {
	return &KVCache{kv: kv}
}

// sanitizeKey rewrites cache keys into the character set JetStream KV
// accepts. The engine's "alert_rules:cust-1" becomes "alert_rules.cust-1".
func sanitizeKey(key string) string {
	return strings.ReplaceAll(key, ":", ".")
}

// Get returns the blob stored under key, or errors.ErrKeyNotFound.
func (c *KVCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.kv.Get(ctx, sanitizeKey(key))
	if err != nil {
		if stderrors.Is(err, natsclient.ErrKVKeyNotFound) {
			return nil, errors.ErrKeyNotFound
		}
		return nil, errors.WrapTransient(err, "KVCache", "Get", "kv read")
	}
	return data, nil
}

// Set stores a blob. The ttl argument is accepted for interface
// compatibility; expiry follows the bucket TTL.
func (c *KVCache) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if err := c.kv.Put(ctx, sanitizeKey(key), value); err != nil {
		return errors.WrapTransient(err, "KVCache", "Set", "kv write")
	}
	return nil
}

// Delete removes a blob. Absent keys are not an error.
func (c *KVCache) Delete(ctx context.Context, key string) error {
	if err := c.kv.Delete(ctx, sanitizeKey(key)); err != nil {
		return errors.WrapTransient(err, "KVCache", "Delete", "kv delete")
	}
	return nil
}
