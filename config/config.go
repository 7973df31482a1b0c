// Package config loads and validates the application configuration from
// a JSON file with environment variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/vitalstream/errors"
	inputkafka "github.com/c360/vitalstream/input/kafka"
	outputkafka "github.com/c360/vitalstream/output/kafka"
	"github.com/c360/vitalstream/processor/alerting"
	"github.com/c360/vitalstream/storage/rulestore"
)

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL        string `json:"url"`
	Bucket     string `json:"bucket"`      // JetStream KV bucket for the distributed rule cache
	ClientName string `json:"client_name"`
}

// KafkaConfig groups the measurement input and alert output topics.
type KafkaConfig struct {
	Input  inputkafka.Config  `json:"input"`
	Output outputkafka.Config `json:"output"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

// Config is the complete application configuration.
type Config struct {
	Version  string           `json:"version"`
	LogLevel string           `json:"log_level"`
	NATS     NATSConfig       `json:"nats"`
	MySQL    rulestore.Config `json:"mysql"`
	Kafka    KafkaConfig      `json:"kafka"`
	Engine   alerting.Config  `json:"engine"`
	Metrics  MetricsConfig    `json:"metrics"`
}

// DefaultConfig returns a configuration with every component's defaults
// filled in. DSN, NATS URL and Kafka brokers have no defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		NATS: NATSConfig{
			Bucket:     "alert-rules",
			ClientName: "vitalstream",
		},
		MySQL: rulestore.DefaultConfig(),
		Kafka: KafkaConfig{
			Input:  inputkafka.DefaultConfig(),
			Output: outputkafka.DefaultConfig(),
		},
		Engine: alerting.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9100,
			Path:    "/metrics",
		},
	}
}

// Load reads, schema-validates and unmarshals a configuration file,
// then applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "Config", "Load", "read config file")
	}
	return Parse(data)
}

// Parse validates and unmarshals raw configuration JSON.
func Parse(data []byte) (*Config, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Parse", "unmarshal config")
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return errors.WrapInvalid(err, "Config", "validateSchema", "schema validation")
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "validateSchema",
			strings.Join(details, "; "))
	}
	return nil
}

// Environment overrides, applied after file parsing. Only connection
// endpoints and the log level are overridable; everything else belongs
// in the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VITALSTREAM_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("VITALSTREAM_MYSQL_DSN"); v != "" {
		cfg.MySQL.DSN = v
	}
	if v := os.Getenv("VITALSTREAM_KAFKA_BROKERS"); v != "" {
		brokers := strings.Split(v, ",")
		cfg.Kafka.Input.Brokers = brokers
		cfg.Kafka.Output.Brokers = brokers
	}
	if v := os.Getenv("VITALSTREAM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("VITALSTREAM_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}

// Validate checks cross-field requirements the schema cannot express.
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate",
			"nats url is required")
	}
	if c.MySQL.DSN == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate",
			"mysql dsn is required")
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	return nil
}

// Clone deep-copies the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}
	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// SafeConfig provides thread-safe access to configuration.
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig wraps a config for concurrent access.
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = &Config{}
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validation.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "SafeConfig", "Update",
			"config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}
