package adapter

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the public Rick and Morty API
const DefaultBaseURL = "https://rickandmortyapi.com/api"

var envKeyReplacer = strings.NewReplacer(".", "_")

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Paging  PagingConfig  `mapstructure:"paging"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds catalog API configuration
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`    // Per-request timeout
	RateLimit int           `mapstructure:"rate_limit"` // Requests per second, 0 = unlimited
	UserAgent string        `mapstructure:"user_agent"`
}

// PagingConfig holds pagination configuration
type PagingConfig struct {
	PageSize         int `mapstructure:"page_size"`
	PrefetchDistance int `mapstructure:"prefetch_distance"` // Items from the end that trigger the next page
}

// UIConfig holds UI configuration
type UIConfig struct {
	Theme      string `mapstructure:"theme"`
	ShowStatus bool   `mapstructure:"show_status"` // Show alive/dead indicators
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File   string `mapstructure:"file"`   // "-" logs to stderr
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   30 * time.Second,
			RateLimit: 5,
			UserAgent: "Citadel/1.0",
		},
		Paging: PagingConfig{
			PageSize:         20,
			PrefetchDistance: 2,
		},
		UI: UIConfig{
			Theme:      "default",
			ShowStatus: true,
		},
		Logging: LoggingConfig{
			File:   defaultLogPath(),
			Level:  "INFO",
			Format: "json",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "citadel", "citadel.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "citadel", "citadel.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "citadel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "citadel")
	}
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	return decode(v)
}

// LoadConfigFile loads configuration from an explicit file path
func LoadConfigFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return decode(v)
}

// newViper returns a viper instance with defaults and environment overrides
func newViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()

	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout", def.API.Timeout)
	v.SetDefault("api.rate_limit", def.API.RateLimit)
	v.SetDefault("api.user_agent", def.API.UserAgent)
	v.SetDefault("paging.page_size", def.Paging.PageSize)
	v.SetDefault("paging.prefetch_distance", def.Paging.PrefetchDistance)
	v.SetDefault("ui.theme", def.UI.Theme)
	v.SetDefault("ui.show_status", def.UI.ShowStatus)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	// Environment variable overrides (CITADEL_API_BASE_URL, ...)
	v.SetEnvPrefix("CITADEL")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the client cannot work with
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	if c.Paging.PageSize <= 0 {
		return fmt.Errorf("paging.page_size must be positive")
	}
	if c.Paging.PrefetchDistance < 1 {
		return fmt.Errorf("paging.prefetch_distance must be at least 1")
	}
	return nil
}

// SaveConfig writes cfg as YAML to path, creating parent directories.
// An empty path writes to the default config location.
func SaveConfig(cfg *Config, path string) (string, error) {
	if path == "" {
		path = filepath.Join(defaultConfigPath(), "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.rate_limit", cfg.API.RateLimit)
	v.Set("api.user_agent", cfg.API.UserAgent)

	v.Set("paging.page_size", cfg.Paging.PageSize)
	v.Set("paging.prefetch_distance", cfg.Paging.PrefetchDistance)

	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("ui.show_status", cfg.UI.ShowStatus)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.format", cfg.Logging.Format)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
