// Package config handles configuration loading for edgarwatch.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/seenimoa/edgarwatch/pkg/models"
)

const envPrefix = "EDGARWATCH"

// Config represents the complete application configuration.
type Config struct {
	SEC       SECConfig       `mapstructure:"sec"       yaml:"sec"`
	Run       RunConfig       `mapstructure:"run"       yaml:"run"`
	Narrative NarrativeConfig `mapstructure:"narrative" yaml:"narrative"`
	Output    OutputConfig    `mapstructure:"output"    yaml:"output"`
	Webhook   WebhookConfig   `mapstructure:"webhook"   yaml:"webhook"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   yaml:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// SECConfig holds EDGAR client settings.
type SECConfig struct {
	UserAgent         string `mapstructure:"user_agent"          yaml:"user_agent"` // "Company Name admin@example.com"
	RequestsPerSecond int    `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	TimeoutSec        int    `mapstructure:"timeout_sec"         yaml:"timeout_sec"`
	DirectoryTTLSec   int    `mapstructure:"directory_ttl_sec"   yaml:"directory_ttl_sec"`
	SecurityIDsFile   string `mapstructure:"security_ids_file"   yaml:"security_ids_file"`
	Listing           string `mapstructure:"listing"             yaml:"listing"` // "submissions" or "feed"
}

// RunConfig holds the watchlist and per-run processing settings.
type RunConfig struct {
	Watchlist           []models.CompanyIdentifier `mapstructure:"watchlist"            yaml:"watchlist"`
	FormTypes           []string                   `mapstructure:"form_types"           yaml:"form_types"`
	MaxFilings          int                        `mapstructure:"max_filings"          yaml:"max_filings"`
	LookbackDays        int                        `mapstructure:"lookback_days"        yaml:"lookback_days"` // 0 disables
	CompanyDelayMS      int                        `mapstructure:"company_delay_ms"     yaml:"company_delay_ms"`
	PrefetchConcurrency int                        `mapstructure:"prefetch_concurrency" yaml:"prefetch_concurrency"`
	IncludeFullText     bool                       `mapstructure:"include_full_text"    yaml:"include_full_text"`
}

// NarrativeConfig holds AI narrative settings.
type NarrativeConfig struct {
	Enabled   bool   `mapstructure:"enabled"    yaml:"enabled"`
	OpenAIKey string `mapstructure:"openai_key" yaml:"openai_key"`
	Model     string `mapstructure:"model"      yaml:"model"`
	BaseURL   string `mapstructure:"base_url"   yaml:"base_url"`
	MaxChars  int    `mapstructure:"max_chars"  yaml:"max_chars"`
}

// OutputConfig holds result output settings.
type OutputConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // JSON lines file; "" or "-" for stdout
}

// WebhookConfig holds notification settings.
type WebhookConfig struct {
	URL        string            `mapstructure:"url"         yaml:"url"`
	Headers    map[string]string `mapstructure:"headers"     yaml:"headers"`
	TimeoutSec int               `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"` // e.g. ":9090"; empty disables
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.edgarwatch/config.yaml (home directory)
//  3. /etc/edgarwatch/config.yaml (system)
//
// Environment variables override config file values.
// Format: EDGARWATCH_<SECTION>_<KEY>, e.g., EDGARWATCH_NARRATIVE_OPENAI_KEY
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".edgarwatch"))
	v.AddConfigPath("/etc/edgarwatch")
	bindEnv(v)

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// SEC defaults (EDGAR fair access: 10 req/s)
	v.SetDefault("sec.user_agent", "edgarwatch/1.0 (github.com/seenimoa/edgarwatch)")
	v.SetDefault("sec.requests_per_second", 10)
	v.SetDefault("sec.timeout_sec", 30)
	v.SetDefault("sec.directory_ttl_sec", 86400) // 24 hours
	v.SetDefault("sec.listing", "submissions")

	// Run defaults
	v.SetDefault("run.form_types", []string{"10-K", "10-Q", "8-K"})
	v.SetDefault("run.max_filings", 100)
	v.SetDefault("run.lookback_days", 0)
	v.SetDefault("run.company_delay_ms", 200)
	v.SetDefault("run.prefetch_concurrency", 1)
	v.SetDefault("run.include_full_text", false)

	// Narrative defaults
	v.SetDefault("narrative.enabled", false)
	v.SetDefault("narrative.model", "gpt-4o-mini")
	v.SetDefault("narrative.max_chars", 4000)

	// Output defaults
	v.SetDefault("output.path", "-")

	// Webhook defaults
	v.SetDefault("webhook.timeout_sec", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("EDGARWATCH_NARRATIVE_OPENAI_KEY"); key != "" {
		cfg.Narrative.OpenAIKey = key
	}
	if u := os.Getenv("EDGARWATCH_WEBHOOK_URL"); u != "" {
		cfg.Webhook.URL = u
	}
}

// Validate reports every problem found in the configuration.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Run.Watchlist) == 0 {
		errs = append(errs, errors.New("run.watchlist is empty"))
	}
	for i, id := range c.Run.Watchlist {
		switch id.Kind {
		case models.KindCIK, models.KindTicker, models.KindName, models.KindSecurityID:
		default:
			errs = append(errs, fmt.Errorf("run.watchlist[%d]: unknown identifier type %q", i, id.Kind))
		}
		if strings.TrimSpace(id.Value) == "" {
			errs = append(errs, fmt.Errorf("run.watchlist[%d]: empty value", i))
		}
	}
	if c.Run.MaxFilings <= 0 {
		errs = append(errs, fmt.Errorf("run.max_filings must be positive, got %d", c.Run.MaxFilings))
	}
	if c.Run.LookbackDays < 0 {
		errs = append(errs, fmt.Errorf("run.lookback_days must not be negative, got %d", c.Run.LookbackDays))
	}
	switch c.SEC.Listing {
	case "submissions", "feed":
	default:
		errs = append(errs, fmt.Errorf("sec.listing: unknown mode %q", c.SEC.Listing))
	}
	if strings.TrimSpace(c.SEC.UserAgent) == "" {
		errs = append(errs, errors.New("sec.user_agent is required by EDGAR"))
	}
	if c.Narrative.Enabled && c.Narrative.OpenAIKey == "" {
		errs = append(errs, errors.New("narrative.enabled requires narrative.openai_key"))
	}
	return errors.Join(errs...)
}

// Seconds converts a seconds setting to a duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
