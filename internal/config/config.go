package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all processing settings, populated from environment variables.
// Command-line flags override individual fields after Load.
type Config struct {
	LogLevel  string
	LogFormat string

	OutputDir       string
	MetadataFile    string
	QCRangesFile    string
	IntermediateCSV string

	// Kafka sink; disabled when no brokers are configured.
	KafkaBrokers []string
	KafkaTopic   string
	BatchSize    int

	PushgatewayURL string

	RunTimeout      time.Duration
	ShutdownTimeout time.Duration
}

// KafkaEnabled reports whether observations should be published.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	runTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("RUN_TIMEOUT", "5m"))
	if err != nil || runTimeout <= 0 {
		return nil, errors.New("invalid RUN_TIMEOUT: must be a positive duration")
	}

	cfg := &Config{
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		OutputDir:       sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),
		MetadataFile:    os.Getenv("METADATA_FILE"),
		QCRangesFile:    os.Getenv("QC_RANGES_FILE"),
		IntermediateCSV: os.Getenv("INTERMEDIATE_CSV"),
		KafkaBrokers:    sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "aws-surface-met"),
		BatchSize:       batchSize,
		PushgatewayURL:  os.Getenv("PUSHGATEWAY_URL"),
		RunTimeout:      runTimeout,
		ShutdownTimeout: shutdownTimeout,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that flags may have changed since Load.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR is required")
	}
	if c.KafkaEnabled() && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if info, err := os.Stat(c.OutputDir); err == nil && !info.IsDir() {
		return fmt.Errorf("OUTPUT_DIR %q is not a directory", c.OutputDir)
	}
	return nil
}
