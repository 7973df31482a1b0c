package natsclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/vitalstream/pkg/retry"
)

// KV error variables
var (
	ErrKVKeyNotFound = stderrors.New("kv key not found")
)

// KVOptions configures KV operations behavior
type KVOptions struct {
	MaxRetries   int           // Maximum retry attempts for writes
	RetryDelay   time.Duration // Initial delay between retries
	Timeout      time.Duration // Per-operation timeout
	MaxValueSize int           // Maximum size for values
}

// DefaultKVOptions returns sensible defaults for cache-tier usage
func DefaultKVOptions() KVOptions {
	return KVOptions{
		MaxRetries:   3,
		RetryDelay:   50 * time.Millisecond,
		Timeout:      5 * time.Second,
		MaxValueSize: 1024 * 1024, // 1MB
	}
}

// KVStore provides high-level KV operations over a JetStream bucket. Writes
// are last-writer-wins; the distributed cache tier never needs CAS.
type KVStore struct {
	bucket  jetstream.KeyValue
	options KVOptions
}

// NewKVStore creates a new KV store with the given bucket
func (c *Client) NewKVStore(bucket jetstream.KeyValue, opts ...func(*KVOptions)) *KVStore {
	options := DefaultKVOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &KVStore{
		bucket:  bucket,
		options: options,
	}
}

// applyTimeout applies the configured timeout to the context if set
func (kv *KVStore) applyTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if kv.options.Timeout > 0 {
		return context.WithTimeout(ctx, kv.options.Timeout)
	}
	return ctx, func() {}
}

// Get retrieves the value stored under key. Returns ErrKVKeyNotFound when
// the key is absent.
func (kv *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := kv.applyTimeout(ctx)
	defer cancel()

	entry, err := kv.bucket.Get(ctx, key)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrKVKeyNotFound
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}

	return entry.Value(), nil
}

// Put creates or updates a key (last writer wins), retrying transient
// failures with backoff.
func (kv *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if kv.options.MaxValueSize > 0 && len(value) > kv.options.MaxValueSize {
		return retry.NonRetryable(fmt.Errorf(
			"kv put %s: value size %d exceeds maximum %d", key, len(value), kv.options.MaxValueSize))
	}

	ctx, cancel := kv.applyTimeout(ctx)
	defer cancel()

	cfg := retry.Config{
		MaxAttempts:  kv.options.MaxRetries + 1,
		InitialDelay: kv.options.RetryDelay,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}

	return retry.Do(ctx, cfg, func() error {
		if _, err := kv.bucket.Put(ctx, key, value); err != nil {
			return fmt.Errorf("kv put %s: %w", key, err)
		}
		return nil
	})
}

// Delete removes a key. Deleting an absent key is not an error.
func (kv *KVStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := kv.applyTimeout(ctx)
	defer cancel()

	if err := kv.bucket.Delete(ctx, key); err != nil {
		if stderrors.Is(err, jetstream.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// Bucket exposes the underlying JetStream bucket
func (kv *KVStore) Bucket() jetstream.KeyValue {
	return kv.bucket
}
