// Package kafka publishes alert results to a Kafka topic for downstream
// notification dispatch.
package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/c360/vitalstream/errors"
	"github.com/c360/vitalstream/types/vital"
)

// Config holds publisher settings.
type Config struct {
	Brokers      []string      `json:"brokers"`
	Topic        string        `json:"topic"`
	BatchTimeout time.Duration `json:"batch_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	RequiredAcks int           `json:"required_acks"`
	MaxAttempts  int           `json:"max_attempts"`
}

// DefaultConfig returns publisher defaults. Brokers and topic must come
// from configuration.
func DefaultConfig() Config {
	return Config{
		Topic:        "vitalstream.alerts",
		BatchTimeout: 100 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		RequiredAcks: int(kafka.RequireOne),
		MaxAttempts:  3,
	}
}

// Publisher writes alert results to Kafka, one message per alert,
// partitioned by customer id so one tenant's alerts stay ordered.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger

	published int64
	failed    int64
	closed    atomic.Bool
}

// NewPublisher creates a publisher over the given brokers.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Publisher", "NewPublisher",
			"at least one broker is required")
	}
	def := DefaultConfig()
	if cfg.Topic == "" {
		cfg.Topic = def.Topic
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = def.BatchTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		MaxAttempts:  cfg.MaxAttempts,
	}

	return &Publisher{
		writer: writer,
		logger: slog.Default().With("component", "alert-publisher"),
	}, nil
}

// Publish writes a batch of alerts in one produce call.
func (p *Publisher) Publish(ctx context.Context, alerts []vital.AlertResult) error {
	if p.closed.Load() {
		return errors.WrapInvalid(errors.ErrShuttingDown, "Publisher", "Publish", "publish")
	}
	if len(alerts) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(alerts))
	for _, alert := range alerts {
		data, err := json.Marshal(alert)
		if err != nil {
			// Should not happen for our own types; drop and keep the batch.
			atomic.AddInt64(&p.failed, 1)
			p.logger.Error("alert serialization failed", "alert_id", alert.ID, "error", err)
			continue
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(alert.CustomerID),
			Value: data,
			Headers: []kafka.Header{
				{Key: "customer_id", Value: []byte(alert.CustomerID)},
				{Key: "rule_type", Value: []byte(alert.RuleType)},
				{Key: "severity", Value: []byte(alert.Severity)},
			},
			Time: alert.Timestamp,
		})
	}
	if len(messages) == 0 {
		return nil
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		atomic.AddInt64(&p.failed, int64(len(messages)))
		return errors.WrapTransient(err, "Publisher", "Publish", "kafka write")
	}
	atomic.AddInt64(&p.published, int64(len(messages)))
	return nil
}

// Stats returns publish counters.
func (p *Publisher) Stats() (published, failed int64) {
	return atomic.LoadInt64(&p.published), atomic.LoadInt64(&p.failed)
}

// Close shuts the writer down.
func (p *Publisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
