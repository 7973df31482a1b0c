// Package natsclient manages the NATS connection and JetStream key-value
// access used by VitalStream.
//
// The Client wraps a single nats.Conn with reconnection handling, plain
// pub/sub for administrative subjects, and JetStream bucket management. The
// KVStore wraps a JetStream KeyValue bucket with per-operation timeouts and
// retry-with-backoff on writes; it is the backing store for the distributed
// rule cache tier, where entries expire via the bucket-level TTL.
//
//	client, _ := natsclient.NewClient(url, natsclient.WithClientName("vitalstream"))
//	if err := client.Connect(ctx); err != nil { ... }
//
//	bucket, _ := client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{
//		Bucket: "alert-rules",
//		TTL:    24 * time.Hour,
//	})
//	kv := client.NewKVStore(bucket)
//
// All KV operations treat the distributed tier as eventually consistent:
// reads after writes are never verified, and callers degrade gracefully when
// the tier is unreachable.
package natsclient
