package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// Config represents the scraper configuration
type Config struct {
	Browser   BrowserConfig   `yaml:"browser"`
	Collector CollectorConfig `yaml:"collector"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Output    OutputConfig    `yaml:"output"`
	Storage   StorageConfig   `yaml:"storage"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Filters   FilterConfig    `yaml:"filters"`
}

type BrowserConfig struct {
	Headless  bool   `yaml:"headless"`
	Bin       string `yaml:"bin"`
	DataDir   string `yaml:"data_dir"`
	NoSandbox bool   `yaml:"no_sandbox"`
}

type CollectorConfig struct {
	PaginationSelector string        `yaml:"pagination_selector"`
	PageItemSelector   string        `yaml:"page_item_selector"`
	PageLinkSelector   string        `yaml:"page_link_selector"`
	PageLinkOffset     int           `yaml:"page_link_offset"`
	LinkPrefix         string        `yaml:"link_prefix"`
	ExcludePattern     string        `yaml:"exclude_pattern"`
	PaginationTimeout  time.Duration `yaml:"pagination_timeout"`
	SettleDelay        time.Duration `yaml:"settle_delay"`
	StableTimeout      time.Duration `yaml:"stable_timeout"`
}

type ExtractorConfig struct {
	Engine        string        `yaml:"engine"`
	Label         string        `yaml:"label"`
	SnippetLength int           `yaml:"snippet_length"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
	PageDelay     time.Duration `yaml:"page_delay"`
	StableTimeout time.Duration `yaml:"stable_timeout"`
	UserAgent     string        `yaml:"user_agent"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	DSNEnv string `yaml:"dsn_env"`
}

type SheetsConfig struct {
	SpreadsheetURL  string `yaml:"spreadsheet_url"`
	CredentialsPath string `yaml:"credentials_path"`
	CredentialsEnv  string `yaml:"credentials_env"`
}

type TelegramConfig struct {
	TokenEnv string `yaml:"token_env"`
	ChatID   int64  `yaml:"chat_id"`
}

type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// FilterConfig selects the papers shown in the top papers table
type FilterConfig struct {
	MinReviews int     `yaml:"min_reviews"`
	MinRating  float64 `yaml:"min_rating"`
	Top        int     `yaml:"top"`
}

const (
	EngineBrowser = "browser"
	EngineStatic  = "static"
)

// ConfigDir returns the per-user config directory
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "openreview-ratings")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ./openreview.yaml > ~/.config/openreview-ratings/config.yaml.
// An empty result means the embedded defaults should be used.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, candidate := range []string{"openreview.yaml", filepath.Join(ConfigDir(), "config.yaml")} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return GetDefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parse(data)
}

// GetDefaultConfig returns the embedded default configuration
func GetDefaultConfig() *Config {
	cfg, err := parse(nil)
	if err != nil {
		panic(fmt.Sprintf("embedded default config is invalid: %v", err))
	}
	return cfg
}

// parse decodes data over the embedded defaults
func parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(DefaultConfigYAML, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides merges the non-zero fields of overrides into the config
func (c *Config) ApplyOverrides(overrides Config) error {
	if err := mergo.Merge(c, overrides, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to apply overrides: %w", err)
	}
	return c.Validate()
}

// Validate checks the values that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	switch c.Extractor.Engine {
	case EngineBrowser, EngineStatic:
	default:
		return fmt.Errorf("unknown extractor engine %q (want %q or %q)", c.Extractor.Engine, EngineBrowser, EngineStatic)
	}
	switch c.Storage.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Collector.PageLinkOffset < 0 {
		return fmt.Errorf("collector.page_link_offset must not be negative")
	}
	if c.Filters.MinReviews < 0 || c.Filters.Top < 0 {
		return fmt.Errorf("filters.min_reviews and filters.top must not be negative")
	}
	return nil
}

// StorageDSN returns the configured DSN, falling back to the DSN env var
func (c *Config) StorageDSN() string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	if c.Storage.DSNEnv != "" {
		return os.Getenv(c.Storage.DSNEnv)
	}
	return ""
}

// TelegramToken returns the bot token from the configured env var
func (c *Config) TelegramToken() string {
	if c.Telegram.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.Telegram.TokenEnv)
}
