package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIURL            string            `mapstructure:"mealbook_api_url"`
	APIToken          string            `mapstructure:"api_token"`
	APIHeadersRaw     string            `mapstructure:"api_headers"`
	APIHeaders        map[string]string `mapstructure:"-"`
	APITimeoutSeconds int64             `mapstructure:"api_timeout_seconds"`
	APITimeout        time.Duration     `mapstructure:"-"`

	PublishersFile      string        `mapstructure:"publishers_file"`
	SyncIntervalSeconds int64         `mapstructure:"sync_interval"`
	SyncInterval        time.Duration `mapstructure:"-"`
	SyncPageSize        int           `mapstructure:"sync_page_size"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	FingerprintTTLSeconds  int64         `mapstructure:"fingerprint_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	FingerprintTTL         time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
	SeedFixtures           bool          `mapstructure:"seed_fixtures"`
}

// Offline reports whether no API URL is configured, in which case meals are served
// from the local store.
func (c *Config) Offline() bool {
	return strings.TrimSpace(c.APIURL) == ""
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "mealbook")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("mealbook_api_url", "")
	v.SetDefault("api_token", "")
	v.SetDefault("api_headers", "")
	v.SetDefault("api_timeout_seconds", 15)
	v.SetDefault("publishers_file", "")
	v.SetDefault("sync_interval", 300) // seconds
	v.SetDefault("sync_page_size", 50)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/meals.db")
	v.SetDefault("fingerprint_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("seed_fixtures", true)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")

	if cfg.APITimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid api_timeout_seconds (must be positive seconds)")
	}
	cfg.APITimeout = time.Duration(cfg.APITimeoutSeconds) * time.Second

	headers, err := parseHeaders(cfg.APIHeadersRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid api_headers: %w", err)
	}
	cfg.APIHeaders = headers

	if cfg.SyncIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid sync_interval (must be positive seconds)")
	}
	cfg.SyncInterval = time.Duration(cfg.SyncIntervalSeconds) * time.Second

	if cfg.SyncPageSize <= 0 {
		return nil, fmt.Errorf("invalid sync_page_size (must be positive)")
	}

	if cfg.FingerprintTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid fingerprint_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.FingerprintTTL = time.Duration(cfg.FingerprintTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

// parseHeaders reads "Name: value; Other: value" pairs.
func parseHeaders(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed header %q", part)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}

// Summary returns the loggable view of the config; secrets are masked.
func (c *Config) Summary() map[string]any {
	token := ""
	if c.APIToken != "" {
		token = "***"
	}
	headers := make([]string, 0, len(c.APIHeaders))
	for k := range c.APIHeaders {
		headers = append(headers, k)
	}
	return map[string]any{
		"app_name":         c.AppName,
		"env":              c.Env,
		"log_level":        c.LogLevel,
		"api_url":          c.APIURL,
		"api_token":        token,
		"api_header_names": headers,
		"api_timeout":      c.APITimeout.String(),
		"offline":          c.Offline(),
		"publishers_file":  c.PublishersFile,
		"sync_interval":    c.SyncInterval.String(),
		"sync_page_size":   c.SyncPageSize,
		"storage_type":     c.StorageType,
		"bbolt_path":       c.BBoltPath,
	}
}
