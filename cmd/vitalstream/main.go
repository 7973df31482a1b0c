// Package main implements the entry point for the vitalstream alerting
// service: it consumes health measurement events from Kafka, evaluates
// them against per-tenant rules, and publishes triggered alerts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/vitalstream/config"
	"github.com/c360/vitalstream/health"
	inputkafka "github.com/c360/vitalstream/input/kafka"
	"github.com/c360/vitalstream/metric"
	"github.com/c360/vitalstream/natsclient"
	outputkafka "github.com/c360/vitalstream/output/kafka"
	"github.com/c360/vitalstream/processor/alerting"
	"github.com/c360/vitalstream/storage/distcache"
	"github.com/c360/vitalstream/storage/rulestore"
)

const (
	Version = "0.1.0"
	appName = "vitalstream"

	shutdownTimeout = 10 * time.Second
)

type cliConfig struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
	validate    bool
}

func parseFlags() *cliConfig {
	cfg := &cliConfig{}
	flag.StringVar(&cfg.configPath, "config", "config.json", "path to configuration file")
	flag.StringVar(&cfg.logLevel, "log-level", "", "log level override (debug|info|warn|error)")
	flag.StringVar(&cfg.logFormat, "log-format", "json", "log format (json|text)")
	flag.BoolVar(&cfg.showVersion, "version", false, "print version and exit")
	flag.BoolVar(&cfg.validate, "validate", false, "validate configuration and exit")
	flag.Parse()
	return cfg
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if cliCfg.showVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}

	cfg, err := config.Load(cliCfg.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cliCfg.validate {
		fmt.Println("Configuration is valid")
		return nil
	}

	logLevel := cfg.LogLevel
	if cliCfg.logLevel != "" {
		logLevel = cliCfg.logLevel
	}
	logger := setupLogger(logLevel, cliCfg.logFormat)
	slog.SetDefault(logger)
	slog.Info("Starting vitalstream alerting service",
		"version", Version, "config_path", cliCfg.configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := metric.NewMetricsRegistry()

	natsClient, err := connectNATS(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		_ = natsClient.Close(closeCtx)
	}()

	distributed, err := setupDistributedCache(ctx, cfg, natsClient)
	if err != nil {
		// The distributed tier is optional; the engine degrades to
		// local cache + store.
		slog.Warn("distributed cache unavailable, continuing without it", "error", err)
		distributed = nil
	}

	store, err := rulestore.New(ctx, cfg.MySQL)
	if err != nil {
		return fmt.Errorf("connect rule store: %w", err)
	}
	defer func() { _ = store.Close() }()

	engine, err := alerting.NewEngine(store, distributed, cfg.Engine,
		alerting.WithLogger(logger),
		alerting.WithMetricsRegistry(registry))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	defer func() { _ = engine.Stop(shutdownTimeout) }()

	if err := engine.RegisterAdminSubjects(ctx, natsClient); err != nil {
		return fmt.Errorf("register admin subjects: %w", err)
	}

	publisher, err := outputkafka.NewPublisher(cfg.Kafka.Output)
	if err != nil {
		return fmt.Errorf("create alert publisher: %w", err)
	}
	defer func() { _ = publisher.Close() }()

	consumer, err := inputkafka.NewConsumer(cfg.Kafka.Input, engine, publisher)
	if err != nil {
		return fmt.Errorf("create measurement consumer: %w", err)
	}
	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer func() { _ = consumer.Stop(shutdownTimeout) }()

	monitor := health.NewMonitor(appName)
	go watchHealth(ctx, monitor, natsClient, engine, distributed != nil)

	var metricsServer *metric.Server
	if cfg.Metrics.Enabled {
		metricsServer = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		metricsServer.SetHealthHandler(monitor)
		go func() {
			if err := metricsServer.Start(); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
		defer func() { _ = metricsServer.Stop() }()
		slog.Info("metrics server listening", "address", metricsServer.Address())
	}

	return waitForShutdown(ctx, cancel)
}

func connectNATS(ctx context.Context, cfg *config.Config) (*natsclient.Client, error) {
	client, err := natsclient.NewClient(cfg.NATS.URL,
		natsclient.WithClientName(cfg.NATS.ClientName))
	if err != nil {
		return nil, fmt.Errorf("create nats client: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return client, nil
}

// setupDistributedCache creates (or binds) the KV bucket backing the
// distributed rule cache tier. The bucket TTL enforces distributed
// entry expiry.
func setupDistributedCache(ctx context.Context, cfg *config.Config, client *natsclient.Client) (*distcache.KVCache, error) {
	bucket, err := client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.NATS.Bucket,
		Description: "per-tenant alert rule cache",
		TTL:         cfg.Engine.DistributedTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("create kv bucket: %w", err)
	}
	return distcache.New(client.NewKVStore(bucket)), nil
}

// watchHealth refreshes subsystem statuses on a fixed cadence.
func watchHealth(ctx context.Context, monitor *health.Monitor, nc *natsclient.Client, engine *alerting.Engine, distTier bool) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	update := func() {
		if nc.IsHealthy() {
			monitor.UpdateHealthy("nats", "connected")
		} else {
			monitor.UpdateUnhealthy("nats", "connection down")
		}

		if distTier {
			monitor.UpdateHealthy("distcache", "kv bucket bound")
		} else {
			monitor.UpdateDegraded("distcache", "distributed tier disabled")
		}

		stats := engine.CacheStats()
		if stats.Pool.Workers > 0 {
			monitor.UpdateHealthy("engine", "evaluating")
		} else {
			monitor.UpdateUnhealthy("engine", "worker pool not running")
		}
	}

	update()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}
	cancel()
	return nil
}
