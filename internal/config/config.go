// Package config centralises configuration parsing for the exercise tracker.
//
// Values come from environment variables prefixed with EXERCISETRACKER_,
// layered over built-in defaults. Nested keys use "." or "__" as separator,
// so EXERCISETRACKER_STORE__DRIVER and EXERCISETRACKER_STORE.DRIVER both set
// store.driver. A .env file in the working directory is loaded first.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from every environment variable read by Load.
const EnvPrefix = "EXERCISETRACKER_"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config captures runtime configuration values for the exercise tracker.
type Config struct {
	Primary       Primary             `koanf:"primary"`
	Server        ServerConfig        `koanf:"server"`
	Store         StoreConfig         `koanf:"store"`
	HTTP          HTTPConfig          `koanf:"http"`
	Events        EventsConfig        `koanf:"events"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// Primary holds settings that apply to the whole process.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// IsLocal reports whether the process runs on a developer machine.
func (p Primary) IsLocal() bool {
	return p.Env == "local"
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Address            string        `koanf:"address" validate:"required"`
	ReadTimeout        time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout       time.Duration `koanf:"write_timeout" validate:"min=1s"`
	IdleTimeout        time.Duration `koanf:"idle_timeout" validate:"min=1s"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins" validate:"required,min=1"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver        string        `koanf:"driver" validate:"required,oneof=memory postgres mongo"`
	PostgresDSN   string        `koanf:"postgres_dsn" validate:"required_if=Driver postgres"`
	MongoURI      string        `koanf:"mongo_uri" validate:"required_if=Driver mongo"`
	MongoDatabase string        `koanf:"mongo_database" validate:"required_if=Driver mongo"`
	Timeout       time.Duration `koanf:"timeout" validate:"min=1s"`
}

// HTTPConfig tunes response behaviour of the API.
type HTTPConfig struct {
	// ErrorStatusCodes switches failures from 200 responses to 400/404/500.
	ErrorStatusCodes bool `koanf:"error_status_codes"`
}

// EventsConfig configures exercise event publishing. No brokers disables it.
type EventsConfig struct {
	KafkaBrokers []string `koanf:"kafka_brokers"`
	Topic        string   `koanf:"topic" validate:"required"`
}

// Enabled reports whether any broker is configured.
func (e EventsConfig) Enabled() bool {
	return len(e.KafkaBrokers) > 0
}

// ObservabilityConfig groups logging and metrics settings.
type ObservabilityConfig struct {
	ServiceName string        `koanf:"service_name" validate:"required"`
	Logging     LoggingConfig `koanf:"logging"`
	MetricsPath string        `koanf:"metrics_path" validate:"required,startswith=/"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=json console"`
}

// listKeys are split on commas when read from the environment.
var listKeys = map[string]bool{
	"server.cors_allowed_origins": true,
	"events.kafka_brokers":        true,
}

func defaults() map[string]any {
	return map[string]any{
		"primary.env":                  "development",
		"server.address":               ":8080",
		"server.read_timeout":          "10s",
		"server.write_timeout":         "10s",
		"server.idle_timeout":          "60s",
		"server.shutdown_timeout":      "10s",
		"server.cors_allowed_origins":  []string{"*"},
		"store.driver":                 DriverMemory,
		"store.mongo_database":         "exercisetracker",
		"store.timeout":                "5s",
		"http.error_status_codes":      false,
		"events.topic":                 "exercise.recorded",
		"observability.service_name":   "exercise-tracker",
		"observability.logging.level":  "info",
		"observability.logging.format": "json",
		"observability.metrics_path":   "/metrics",
	}
}

// Load reads environment variables into Config over the built-in defaults
// and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load config from environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func envValue(name, value string) (string, any) {
	key := strings.TrimPrefix(name, EnvPrefix)
	key = strings.ToLower(strings.ReplaceAll(key, "__", "."))
	if listKeys[key] {
		return key, splitAndTrim(value)
	}
	return key, value
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
