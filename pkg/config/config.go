package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the catalog sync
type Config struct {
	// Remote shop connection
	Shop ShopConfig `yaml:"shop" json:"shop"`

	// Rate limiting and retry configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Remote catalog cache settings
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Sync behaviour
	Sync SyncConfig `yaml:"sync" json:"sync"`

	// Price transform settings
	Pricing PricingConfig `yaml:"pricing" json:"pricing"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ShopConfig holds the remote shop connection settings
type ShopConfig struct {
	URL         string `yaml:"url" json:"url"`
	AccessToken string `yaml:"access_token" json:"access_token"`
	APIVersion  string `yaml:"api_version" json:"api_version"`
	LocationID  string `yaml:"location_id" json:"location_id"`
}

// RateLimitConfig holds the outbound call quota and retry budget
type RateLimitConfig struct {
	CallsPerSecond float64 `yaml:"calls_per_second" json:"calls_per_second"`
	MaxRetries     int     `yaml:"max_retries" json:"max_retries"`
}

// CacheConfig holds remote catalog cache settings
type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds" json:"ttl_seconds"`
}

// SyncConfig holds reconciliation behaviour settings
type SyncConfig struct {
	Workers         int      `yaml:"workers" json:"workers"`
	InStockQuantity int      `yaml:"in_stock_quantity" json:"in_stock_quantity"`
	InputDir        string   `yaml:"input_dir" json:"input_dir"`
	BrandFiles      []string `yaml:"brand_files" json:"brand_files"`
	ExcludedVendors []string `yaml:"excluded_vendors" json:"excluded_vendors"`
	RequireImages   bool     `yaml:"require_images" json:"require_images"`
}

// PricingConfig holds the markup-and-round policy
type PricingConfig struct {
	Markup float64 `yaml:"markup" json:"markup"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Shop: ShopConfig{
			APIVersion: "2024-01",
		},
		RateLimit: RateLimitConfig{
			CallsPerSecond: 2,
			MaxRetries:     3,
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
		},
		Sync: SyncConfig{
			Workers:         2,
			InStockQuantity: 1000,
			InputDir:        "./output",
			RequireImages:   false,
		},
		Pricing: PricingConfig{
			Markup: 1.075,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if url := os.Getenv("SHOPSYNC_SHOP_URL"); url != "" {
		c.Shop.URL = url
	}
	if token := os.Getenv("SHOPSYNC_ACCESS_TOKEN"); token != "" {
		c.Shop.AccessToken = token
	}
	if version := os.Getenv("SHOPSYNC_API_VERSION"); version != "" {
		c.Shop.APIVersion = version
	}
	if location := os.Getenv("SHOPSYNC_LOCATION_ID"); location != "" {
		c.Shop.LocationID = location
	}

	if cps := os.Getenv("SHOPSYNC_CALLS_PER_SECOND"); cps != "" {
		if val, err := strconv.ParseFloat(cps, 64); err == nil && val > 0 {
			c.RateLimit.CallsPerSecond = val
		}
	}
	if retries := os.Getenv("SHOPSYNC_MAX_RETRIES"); retries != "" {
		if val, err := strconv.Atoi(retries); err == nil && val >= 0 {
			c.RateLimit.MaxRetries = val
		}
	}
	if ttl := os.Getenv("SHOPSYNC_CACHE_TTL"); ttl != "" {
		if val, err := strconv.Atoi(ttl); err == nil && val > 0 {
			c.Cache.TTLSeconds = val
		}
	}
	if workers := os.Getenv("SHOPSYNC_WORKERS"); workers != "" {
		if val, err := strconv.Atoi(workers); err == nil && val > 0 {
			c.Sync.Workers = val
		}
	}
	if inputDir := os.Getenv("SHOPSYNC_INPUT_DIR"); inputDir != "" {
		c.Sync.InputDir = inputDir
	}
	if vendors := os.Getenv("SHOPSYNC_EXCLUDED_VENDORS"); vendors != "" {
		c.Sync.ExcludedVendors = splitAndTrim(vendors)
	}
	if logLevel := os.Getenv("SHOPSYNC_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".shopsync.yaml",
		".shopsync.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "shopsync", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "shopsync", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".shopsync.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Shop.URL == "" {
		errs = append(errs, errors.New("shop URL is required"))
	}
	if c.Shop.APIVersion == "" {
		errs = append(errs, errors.New("API version is required"))
	}

	if c.RateLimit.CallsPerSecond <= 0 {
		errs = append(errs, errors.New("calls per second must be positive"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	if c.Cache.TTLSeconds <= 0 {
		errs = append(errs, errors.New("cache TTL must be positive"))
	}

	if c.Sync.Workers <= 0 {
		errs = append(errs, errors.New("worker count must be positive"))
	}
	if c.Sync.Workers > 10 {
		errs = append(errs, errors.New("worker count should not exceed 10"))
	}
	if c.Sync.InStockQuantity < 0 {
		errs = append(errs, errors.New("in-stock quantity cannot be negative"))
	}

	if c.Pricing.Markup <= 0 {
		errs = append(errs, errors.New("price markup must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if url, ok := flags["shop-url"].(string); ok && url != "" {
		c.Shop.URL = url
	}
	if token, ok := flags["access-token"].(string); ok && token != "" {
		c.Shop.AccessToken = token
	}
	if location, ok := flags["location-id"].(string); ok && location != "" {
		c.Shop.LocationID = location
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		c.Sync.Workers = workers
	}
	if inputDir, ok := flags["input"].(string); ok && inputDir != "" {
		c.Sync.InputDir = inputDir
	}
	if cps, ok := flags["calls-per-second"].(float64); ok && cps > 0 {
		c.RateLimit.CallsPerSecond = cps
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".shopsync.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
