package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/pantrymesh/logging"
	"github.com/hupe1980/pantrymesh/validation"
)

// Config is the runtime configuration of a pantrymesh process.
type Config struct {
	Model      ModelConfig      `koanf:"model"`
	Validation ValidationConfig `koanf:"validation"`
	Store      StoreConfig      `koanf:"store"`
	Search     SearchConfig     `koanf:"search"`
	Logging    LoggingConfig    `koanf:"logging"`
	Router     RouterConfig     `koanf:"router"`
	Registry   RegistryConfig   `koanf:"registry"`
	Factory    FactoryConfig    `koanf:"factory"`
}

// ModelConfig selects the completion provider.
type ModelConfig struct {
	// Provider is one of none, mock, openai, anthropic, ollama.
	Provider string        `koanf:"provider"`
	Name     string        `koanf:"name"`
	BaseURL  string        `koanf:"base_url"`
	APIKey   string        `koanf:"api_key"`
	Timeout  time.Duration `koanf:"timeout"`
}

// ValidationConfig sets the Chef handler's strictness.
type ValidationConfig struct {
	Level         string `koanf:"level"`
	MaxAdditional int    `koanf:"max_additional"`
}

// StoreConfig selects the fact store backend.
type StoreConfig struct {
	Driver string `koanf:"driver"` // memory or sqlite
	Path   string `koanf:"path"`
}

// SearchConfig points at the knowledge base used by the Search handler.
type SearchConfig struct {
	DocumentsFile string `koanf:"documents_file"`
	Limit         int    `koanf:"limit"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or text
}

// RouterConfig configures the dispatcher.
type RouterConfig struct {
	Language      string `koanf:"language"`
	MaxConcurrent int64  `koanf:"max_concurrent"`
}

// RegistryConfig configures the capability registry.
type RegistryConfig struct {
	IntentMappingsFile string `koanf:"intent_mappings_file"`
}

// FactoryConfig configures handler construction retries.
type FactoryConfig struct {
	MaxRetries   uint64        `koanf:"max_retries"`
	RetryBackoff time.Duration `koanf:"retry_backoff"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Provider: "none",
			Timeout:  60 * time.Second,
		},
		Validation: ValidationConfig{
			Level:         validation.Strict.String(),
			MaxAdditional: validation.DefaultMaxAdditional,
		},
		Store:   StoreConfig{Driver: "memory"},
		Search:  SearchConfig{Limit: 3},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Router:  RouterConfig{Language: "en"},
		Factory: FactoryConfig{MaxRetries: 1, RetryBackoff: 50 * time.Millisecond},
	}
}

var (
	providers = []string{"none", "mock", "openai", "anthropic", "ollama"}
	drivers   = []string{"memory", "sqlite"}
	formats   = []string{"json", "text"}
)

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	if !oneOf(c.Model.Provider, providers) {
		errs = append(errs, fmt.Errorf("model.provider: unsupported %q", c.Model.Provider))
	}
	if _, err := validation.ParseLevel(c.Validation.Level); err != nil {
		errs = append(errs, fmt.Errorf("validation.level: %w", err))
	}
	if c.Validation.MaxAdditional < 0 {
		errs = append(errs, errors.New("validation.max_additional: must not be negative"))
	}
	if !oneOf(c.Store.Driver, drivers) {
		errs = append(errs, fmt.Errorf("store.driver: unsupported %q", c.Store.Driver))
	}
	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		errs = append(errs, errors.New("store.path: required for the sqlite driver"))
	}
	if !oneOf(c.Logging.Format, formats) {
		errs = append(errs, fmt.Errorf("logging.format: unsupported %q", c.Logging.Format))
	}
	if c.Router.MaxConcurrent < 0 {
		errs = append(errs, errors.New("router.max_concurrent: must not be negative"))
	}
	return errors.Join(errs...)
}

// ValidationLevel returns the parsed validation level, Strict when invalid.
func (c *Config) ValidationLevel() validation.Level {
	l, err := validation.ParseLevel(c.Validation.Level)
	if err != nil {
		return validation.Strict
	}
	return l
}

// NewLogger builds the process logger described by Logging.
func (c *Config) NewLogger() *logging.PantryLogger {
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = logging.ParseLevel(c.Logging.Level)
	cfg.Format = c.Logging.Format
	return logging.NewLogger(cfg)
}

func oneOf(v string, allowed []string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
