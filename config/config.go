package config

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kbukum/openbatch/batch"
	"github.com/kbukum/openbatch/logger"
	"github.com/kbukum/openbatch/request"
	"github.com/kbukum/openbatch/validation"
	"github.com/kbukum/openbatch/verify"
)

// AppName is the name used for config file discovery and log tagging.
const AppName = "openbatch"

// Config is the complete openbatch configuration.
type Config struct {
	Name        string          `json:"name" yaml:"name" mapstructure:"name"`
	Environment string          `json:"environment" yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Logging     logger.Config   `json:"logging" yaml:"logging" mapstructure:"logging"`
	Limits      request.Limits  `json:"limits" yaml:"limits" mapstructure:"limits"`
	Writer      WriterConfig    `json:"writer" yaml:"writer" mapstructure:"writer"`
	Validator   ValidatorConfig `json:"validator" yaml:"validator" mapstructure:"validator"`
	Telemetry   TelemetryConfig `json:"telemetry" yaml:"telemetry" mapstructure:"telemetry"`
}

// WriterConfig configures batch writer sessions.
type WriterConfig struct {
	Strict              bool   `json:"strict" yaml:"strict" mapstructure:"strict"`
	ScanExisting        bool   `json:"scan_existing" yaml:"scan_existing" mapstructure:"scan_existing"`
	AllowMixedEndpoints bool   `json:"allow_mixed_endpoints" yaml:"allow_mixed_endpoints" mapstructure:"allow_mixed_endpoints"`
	EnsureASCII         bool   `json:"ensure_ascii" yaml:"ensure_ascii" mapstructure:"ensure_ascii"`
	CustomIDPrefix      string `json:"custom_id_prefix" yaml:"custom_id_prefix" mapstructure:"custom_id_prefix"`
	// CustomIDNamespace switches custom ids to name-based UUIDs in this
	// namespace when set.
	CustomIDNamespace string `json:"custom_id_namespace" yaml:"custom_id_namespace" mapstructure:"custom_id_namespace" validate:"omitempty,uuid"`
}

// ValidatorConfig selects the checks of the batch file validator.
type ValidatorConfig struct {
	CheckCustomIDUniqueness bool `json:"check_custom_id_uniqueness" yaml:"check_custom_id_uniqueness" mapstructure:"check_custom_id_uniqueness"`
	CheckFileSize           bool `json:"check_file_size" yaml:"check_file_size" mapstructure:"check_file_size"`
	CheckRequestCount       bool `json:"check_request_count" yaml:"check_request_count" mapstructure:"check_request_count"`
	AllowMixedEndpoints     bool `json:"allow_mixed_endpoints" yaml:"allow_mixed_endpoints" mapstructure:"allow_mixed_endpoints"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	c := Config{
		Writer: WriterConfig{
			Strict:      true,
			EnsureASCII: true,
		},
		Validator: ValidatorConfig{
			CheckCustomIDUniqueness: true,
			CheckFileSize:           true,
			CheckRequestCount:       true,
		},
		Telemetry: TelemetryConfig{SampleRate: 1.0},
	}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued names, logging and limits. Booleans are
// left alone; Load seeds their defaults before reading any source.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = AppName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logging.ApplyDefaults()
	if c.Limits.MaxFileBytes == 0 {
		c.Limits.MaxFileBytes = request.DefaultMaxFileBytes
	}
	if c.Limits.MaxRequests == 0 {
		c.Limits.MaxRequests = request.DefaultMaxRequests
	}
	if c.Writer.CustomIDPrefix == "" && c.Writer.CustomIDNamespace == "" {
		c.Writer.CustomIDPrefix = "request"
	}
	c.Telemetry.applyDefaults()
}

// Validate checks struct constraints and the logging section.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// WriterOptions converts the writer and limits sections into batch options.
func (c *Config) WriterOptions() ([]batch.Option, error) {
	ids := batch.PrefixedIDs(c.Writer.CustomIDPrefix)
	if c.Writer.CustomIDNamespace != "" {
		ns, err := uuid.Parse(c.Writer.CustomIDNamespace)
		if err != nil {
			return nil, fmt.Errorf("config.writer.custom_id_namespace: %w", err)
		}
		ids = batch.UUIDIDs(ns)
	}
	return []batch.Option{
		batch.WithLimits(c.Limits),
		batch.WithStrict(c.Writer.Strict),
		batch.WithScanExisting(c.Writer.ScanExisting),
		batch.WithAllowMixedEndpoints(c.Writer.AllowMixedEndpoints),
		batch.WithEnsureASCII(c.Writer.EnsureASCII),
		batch.WithCustomIDFunc(ids),
	}, nil
}

// VerifyOptions converts the validator and limits sections into verify options.
func (c *Config) VerifyOptions() []verify.Option {
	return []verify.Option{verify.WithOptions(verify.Options{
		CheckCustomIDUniqueness: c.Validator.CheckCustomIDUniqueness,
		CheckFileSize:           c.Validator.CheckFileSize,
		CheckRequestCount:       c.Validator.CheckRequestCount,
		AllowMixedEndpoints:     c.Validator.AllowMixedEndpoints,
		Limits:                  c.Limits,
	})}
}

// InitLogging installs the logging section as the global logger and registers
// the package loggers.
func (c *Config) InitLogging() {
	logger.Init(c.Logging)
	logger.RegisterDefaults("batch", "verify", "config")
}
