// Package kafka consumes measurement events from a Kafka topic and
// feeds them through the alerting engine.
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

// Evaluator is the slice of the alerting engine the consumer needs.
type Evaluator interface {
	EvaluateRules(ctx context.Context, event vital.MeasurementEvent) []vital.AlertResult
}

// AlertSink receives triggered alerts for downstream delivery.
type AlertSink interface {
	Publish(ctx context.Context, alerts []vital.AlertResult) error
}

// Config holds consumer settings.
type Config struct {
	Brokers        []string      `json:"brokers"`
	Topic          string        `json:"topic"`
	GroupID        string        `json:"group_id"`
	MinBytes       int           `json:"min_bytes"`
	MaxBytes       int           `json:"max_bytes"`
	CommitInterval time.Duration `json:"commit_interval"`
}

// DefaultConfig returns consumer defaults. Brokers must come from
// configuration.
func DefaultConfig() Config {
	return Config{
		Topic:          "vitalstream.measurements",
		GroupID:        "vitalstream-alerting",
		MinBytes:       1,
		MaxBytes:       1 << 20,
		CommitInterval: time.Second,
	}
}

// Consumer reads measurement events and runs them through the engine.
// Malformed messages are logged and skipped; evaluation itself never
// fails, and a sink failure is logged without stalling consumption.
type Consumer struct {
	reader *kafka.Reader
	engine Evaluator
	sink   AlertSink
	logger *slog.Logger

	eventsProcessed int64
	eventsMalformed int64
	sinkFailures    int64

	shutdown chan struct{}
	done     chan struct{}
	started  atomic.Bool
}

// NewConsumer creates a consumer. The sink may be nil when alerts have
// no downstream yet; results are then logged only.
func NewConsumer(cfg Config, engine Evaluator, sink AlertSink) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Consumer", "NewConsumer",
			"at least one broker is required")
	}
	if engine == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Consumer", "NewConsumer",
			"evaluator is required")
	}
	def := DefaultConfig()
	if cfg.Topic == "" {
		cfg.Topic = def.Topic
	}
	if cfg.GroupID == "" {
		cfg.GroupID = def.GroupID
	}
	if cfg.MinBytes == 0 {
		cfg.MinBytes = def.MinBytes
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.CommitInterval == 0 {
		cfg.CommitInterval = def.CommitInterval
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		CommitInterval: cfg.CommitInterval,
	})

	return &Consumer{
		reader:   reader,
		engine:   engine,
		sink:     sink,
		logger:   slog.Default().With("component", "measurement-consumer"),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the consume loop. It returns immediately; the loop
// runs until Stop or context cancellation.
func (c *Consumer) Start(ctx context.Context) error {
	if c.started.Swap(true) {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Consumer", "Start", "start")
	}
	go c.run(ctx)
	c.logger.Info("measurement consumer started", "topic", c.reader.Config().Topic)
	return nil
}

func (c *Consumer) run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdown:
			return
		default:
		}

		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-c.shutdown:
				// Reader was closed by Stop.
				return
			default:
			}
			c.logger.Warn("kafka read failed", "error", err)
			continue
		}
		c.handle(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	var event vital.MeasurementEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		atomic.AddInt64(&c.eventsMalformed, 1)
		c.logger.Warn("dropping malformed measurement event",
			"partition", msg.Partition, "offset", msg.Offset, "error", err)
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = msg.Time
	}

	atomic.AddInt64(&c.eventsProcessed, 1)
	alerts := c.engine.EvaluateRules(ctx, event)
	if len(alerts) == 0 {
		return
	}

	if c.sink == nil {
		c.logger.Info("alerts triggered with no sink configured",
			"customer_id", event.CustomerID, "count", len(alerts))
		return
	}
	if err := c.sink.Publish(ctx, alerts); err != nil {
		atomic.AddInt64(&c.sinkFailures, 1)
		c.logger.Error("alert delivery failed",
			"customer_id", event.CustomerID, "count", len(alerts), "error", err)
	}
}

// Stop ends the consume loop. Closing the reader unblocks a pending
// ReadMessage.
func (c *Consumer) Stop(timeout time.Duration) error {
	if !c.started.Load() {
		return nil
	}
	close(c.shutdown)
	err := c.reader.Close()
	select {
	case <-c.done:
	case <-time.After(timeout):
		c.logger.Warn("consumer did not drain before deadline")
	}
	return err
}

// Stats returns consumption counters.
func (c *Consumer) Stats() (processed, malformed, sinkFailures int64) {
	return atomic.LoadInt64(&c.eventsProcessed),
		atomic.LoadInt64(&c.eventsMalformed),
		atomic.LoadInt64(&c.sinkFailures)
}
