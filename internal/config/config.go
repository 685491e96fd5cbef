// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :4444).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty until DB is wired.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// HeartbeatWindow is how long after the last heartbeat a user still counts as online (e.g. "10s").
	HeartbeatWindow string `mapstructure:"HEARTBEAT_WINDOW"`
	// OTLPEndpoint is the OTLP collector endpoint (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints (standard OTEL_EXPORTER_OTLP_INSECURE behavior).
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Delivery telemetry (optional). When Kafka brokers are set, the server emits delivery and request events to Kafka.
	// DeliveryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	DeliveryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// DeliveryKafkaTopic is the Kafka topic for delivery events (default dmrelay-delivery).
	DeliveryKafkaTopic string `mapstructure:"DELIVERY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the delivery worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the delivery worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":4444")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("HEARTBEAT_WINDOW", "10s")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("DELIVERY_KAFKA_TOPIC", "dmrelay-delivery")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "dmrelay-delivery-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if d, err := time.ParseDuration(cfg.HeartbeatWindow); err == nil && d <= 0 {
		return nil, errors.New("config: HEARTBEAT_WINDOW must be positive")
	}

	return &cfg, nil
}

// Window parses HeartbeatWindow as a time.Duration. Returns 10s if unset or invalid.
func (c *Config) Window() time.Duration {
	d, err := time.ParseDuration(c.HeartbeatWindow)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// DeliveryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if delivery telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) DeliveryKafkaBrokersList() []string {
	if c == nil || c.DeliveryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.DeliveryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
