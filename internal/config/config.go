package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tonpukusan/blog-parts-json-manager/internal/progress"
)

// Config defines configuration for the blogparts CLI.
type Config struct {
	ManifestURL   string        `yaml:"manifest_url"`
	Output        string        `yaml:"output"`
	Concurrency   int           `yaml:"concurrency"`
	BatchSize     int           `yaml:"batch_size"`
	Ordered       bool          `yaml:"ordered"`
	MaxItemSize   int64         `yaml:"max_item_size"`
	Timeout       time.Duration `yaml:"timeout"`
	Retry         RetryConfig   `yaml:"retry"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
	EmbedTemplate string        `yaml:"embed_template"`
}

// RetryConfig defines retry behavior.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Concurrency: 6,
		BatchSize:   20,
		MaxItemSize: 1024 * 1024, // 1MB
		Timeout:     30 * time.Second,
		Retry: RetryConfig{
			Attempts:   2,
			Backoff:    250 * time.Millisecond,
			MaxBackoff: 5 * time.Second,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// yamlConfig is used for YAML unmarshaling with string sizes and durations.
type yamlConfig struct {
	ManifestURL   string          `yaml:"manifest_url"`
	Output        string          `yaml:"output"`
	Concurrency   int             `yaml:"concurrency"`
	BatchSize     int             `yaml:"batch_size"`
	Ordered       bool            `yaml:"ordered"`
	MaxItemSize   string          `yaml:"max_item_size"`
	Timeout       string          `yaml:"timeout"`
	Retry         yamlRetryConfig `yaml:"retry"`
	LogLevel      string          `yaml:"log_level"`
	LogFormat     string          `yaml:"log_format"`
	EmbedTemplate string          `yaml:"embed_template"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.ManifestURL != "" {
		cfg.ManifestURL = yc.ManifestURL
	}
	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	if yc.Concurrency != 0 {
		cfg.Concurrency = yc.Concurrency
	}
	if yc.BatchSize != 0 {
		cfg.BatchSize = yc.BatchSize
	}
	cfg.Ordered = yc.Ordered
	if yc.MaxItemSize != "" {
		size, err := progress.ParseBytes(yc.MaxItemSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse max_item_size: %w", err)
		}
		cfg.MaxItemSize = size
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}
	if yc.LogFormat != "" {
		cfg.LogFormat = yc.LogFormat
	}
	if yc.EmbedTemplate != "" {
		cfg.EmbedTemplate = yc.EmbedTemplate
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the BLOGPARTS_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("BLOGPARTS_MANIFEST_URL"); v != "" {
		c.ManifestURL = v
	}
	if v := os.Getenv("BLOGPARTS_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("BLOGPARTS_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BLOGPARTS_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}
	if v := os.Getenv("BLOGPARTS_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BLOGPARTS_BATCH_SIZE: %w", err)
		}
		c.BatchSize = n
	}
	if v := os.Getenv("BLOGPARTS_ORDERED"); v != "" {
		c.Ordered = v == "true" || v == "1"
	}
	if v := os.Getenv("BLOGPARTS_MAX_ITEM_SIZE"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse BLOGPARTS_MAX_ITEM_SIZE: %w", err)
		}
		c.MaxItemSize = size
	}
	if v := os.Getenv("BLOGPARTS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BLOGPARTS_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("BLOGPARTS_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BLOGPARTS_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("BLOGPARTS_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BLOGPARTS_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("BLOGPARTS_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BLOGPARTS_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}
	if v := os.Getenv("BLOGPARTS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BLOGPARTS_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("BLOGPARTS_EMBED_TEMPLATE"); v != "" {
		c.EmbedTemplate = v
	}

	return nil
}

// Validate validates the configuration. The manifest URL is checked by the
// commands that need it.
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return errors.New("config: concurrency must be positive")
	}
	if c.BatchSize <= 0 {
		return errors.New("config: batch_size must be positive")
	}
	if c.MaxItemSize < 0 {
		return errors.New("config: max_item_size must not be negative")
	}
	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}
	if c.Retry.Attempts < 0 {
		return errors.New("config: retry.attempts must not be negative")
	}
	if _, err := c.level(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.ManifestURL != "" {
		c.ManifestURL = override.ManifestURL
	}
	if override.Output != "" {
		c.Output = override.Output
	}
	if override.Concurrency != 0 {
		c.Concurrency = override.Concurrency
	}
	if override.BatchSize != 0 {
		c.BatchSize = override.BatchSize
	}
	if override.Ordered {
		c.Ordered = override.Ordered
	}
	if override.MaxItemSize != 0 {
		c.MaxItemSize = override.MaxItemSize
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	if override.LogLevel != "" {
		c.LogLevel = override.LogLevel
	}
	if override.LogFormat != "" {
		c.LogFormat = override.LogFormat
	}
	if override.EmbedTemplate != "" {
		c.EmbedTemplate = override.EmbedTemplate
	}
	return c
}

// NewLogger builds the structured logger described by the configuration.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid log_level %q", c.LogLevel)
	}
	return level, nil
}
