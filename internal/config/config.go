// Package config loads all service settings from the environment. A .env
// file in the working directory is honored for local runs (never overriding
// real environment variables); every endpoint and credential comes from here
// so no connection string is ever hardcoded.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all pipeline settings, populated from environment variables.
// Each command validates only the subset it actually needs via the Require*
// helpers, so a reconciliation run does not demand raw-bucket settings.
type Config struct {
	AWSRegion string `envconfig:"AWS_REGION"`

	// Three distinct buckets: raw spreadsheet uploads, staged NDJSON, and
	// load-ready canonical output.
	RawBucket     string `envconfig:"S3_BUCKET_RAW"`
	StagingBucket string `envconfig:"S3_BUCKET_STAGING"`
	ReadyBucket   string `envconfig:"S3_BUCKET_RDY"`
	OutKey        string `envconfig:"OUT_KEY"`

	TelemetryPrefix string `envconfig:"TELEMETRY_PREFIX" default:"greenandcoop-staging/infoclimat/"`
	TabularPrefix   string `envconfig:"TABULAR_PREFIX" default:"greenandcoop-staging/greenandcoop-csvfiles/"`
	StagingSuffix   string `envconfig:"STAGING_SUFFIX" default:".jsonl.gz"`

	// ReferenceTimezone is the zone observation timestamps are normalized to.
	ReferenceTimezone string `envconfig:"REFERENCE_TZ" default:"Europe/Paris"`

	MongoURI        string `envconfig:"MONGO_URI"`
	MongoDatabase   string `envconfig:"MONGO_DB"`
	MongoCollection string `envconfig:"MONGO_COL"`

	// Optional downstream publish of canonical records.
	KafkaEnabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_SINK_TOPIC" default:"canonical-observations"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file is loaded first if present (non-fatal if absent).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	if _, err := time.LoadLocation(cfg.ReferenceTimezone); err != nil {
		return nil, fmt.Errorf("invalid REFERENCE_TZ %q: %w", cfg.ReferenceTimezone, err)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return &cfg, nil
}

// Location resolves the reference timezone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReferenceTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RequireS3 validates the settings every object-store-touching command needs.
func (c *Config) RequireS3(buckets ...string) error {
	if c.AWSRegion == "" {
		return errors.New("AWS_REGION is required")
	}
	for _, b := range buckets {
		if b == "" {
			return errors.New("object store bucket is not configured")
		}
	}
	return nil
}

// RequireMongo validates document-store settings.
func (c *Config) RequireMongo() error {
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.MongoDatabase == "" {
		return errors.New("MONGO_DB is required")
	}
	if c.MongoCollection == "" {
		return errors.New("MONGO_COL is required")
	}
	return nil
}
