// Package config loads runtime settings for the market API and the TUI.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// YAML file, and environment variables prefixed with CRYPTOPLACE_ (dashes
// become underscores, e.g. CRYPTOPLACE_LISTEN_ADDR). The CoinGecko key is
// also read from COINGECKO_API_KEY and VITE_COINGECKO_API_KEY. LoadEnvFiles
// fills the environment from .env files without overriding it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/archon-research/cryptoplace/internal/adapters/outbound/coingecko"
	"github.com/archon-research/cryptoplace/internal/adapters/outbound/redis"
	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/services/listing"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CRYPTOPLACE"

// Config is the merged runtime configuration.
type Config struct {
	APIKey          string        `mapstructure:"api-key"`
	BaseURL         string        `mapstructure:"base-url"`
	RequestTimeout  time.Duration `mapstructure:"request-timeout"`
	MaxRetries      int           `mapstructure:"max-retries"`
	RateLimitPerMin int           `mapstructure:"rate-limit-per-min"`
	Currency        string        `mapstructure:"currency"`

	ListenAddr   string `mapstructure:"listen-addr"`
	OTLPEndpoint string `mapstructure:"otlp-endpoint"`
	Environment  string `mapstructure:"environment"`
	LogLevel     string `mapstructure:"log-level"`
	LogFile      string `mapstructure:"log-file"`

	HomePageSize   int `mapstructure:"home-page-size"`
	MarketPageSize int `mapstructure:"market-page-size"`

	// RedisAddr enables the market snapshot cache when set.
	RedisAddr     string        `mapstructure:"redis-addr"`
	RedisPassword string        `mapstructure:"redis-password"`
	RedisDB       int           `mapstructure:"redis-db"`
	CacheTTL      time.Duration `mapstructure:"cache-ttl"`
}

// DefaultEnvFiles are read by the binaries before Load.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadEnvFiles sets variables from each existing file. Variables already in
// the environment keep their value; missing files are skipped.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// DefaultPath returns the config file read when no path is given.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "cryptoplace", "config.yml"), nil
}

// Load reads the configuration. A missing config file is not an error.
func Load(configPath string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindEnv("api-key", EnvPrefix+"_API_KEY", "COINGECKO_API_KEY", "VITE_COINGECKO_API_KEY"); err != nil {
		return cfg, fmt.Errorf("binding api key: %w", err)
	}

	v.SetDefault("api-key", "")
	v.SetDefault("base-url", coingecko.PublicBaseURL)
	v.SetDefault("request-timeout", 15*time.Second)
	v.SetDefault("max-retries", 0)
	v.SetDefault("rate-limit-per-min", 30)
	v.SetDefault("currency", entity.DefaultCurrency.Name)
	v.SetDefault("listen-addr", ":8080")
	v.SetDefault("otlp-endpoint", "")
	v.SetDefault("environment", "development")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-file", filepath.Join(os.TempDir(), "coinboard.log"))
	v.SetDefault("home-page-size", listing.HomePageSize)
	v.SetDefault("market-page-size", listing.MarketPageSize)
	v.SetDefault("redis-addr", "")
	v.SetDefault("redis-password", "")
	v.SetDefault("redis-db", 0)
	v.SetDefault("cache-ttl", time.Hour)

	if configPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		configPath = p
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	if _, err := entity.ParseCurrency(c.Currency); err != nil {
		return fmt.Errorf("currency: %w", err)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max-retries must not be negative, got %d", c.MaxRetries)
	}
	if c.RateLimitPerMin < 0 {
		return fmt.Errorf("rate-limit-per-min must not be negative, got %d", c.RateLimitPerMin)
	}
	if c.HomePageSize <= 0 || c.MarketPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive, got home=%d market=%d", c.HomePageSize, c.MarketPageSize)
	}
	if c.RedisDB < 0 || c.RedisDB > 15 {
		return fmt.Errorf("redis-db must be between 0 and 15, got %d", c.RedisDB)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache-ttl must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// InitialCurrency returns the configured starting currency. Call after Validate.
func (c Config) InitialCurrency() entity.Currency {
	cur, err := entity.ParseCurrency(c.Currency)
	if err != nil {
		return entity.DefaultCurrency
	}
	return cur
}

// CoinGecko returns the client configuration derived from c.
func (c Config) CoinGecko() coingecko.ClientConfig {
	return coingecko.ClientConfig{
		APIKey:          c.APIKey,
		BaseURL:         c.BaseURL,
		Timeout:         c.RequestTimeout,
		MaxRetries:      c.MaxRetries,
		RateLimitPerMin: c.RateLimitPerMin,
	}
}

// Redis returns the snapshot cache configuration derived from c.
func (c Config) Redis() redis.Config {
	cfg := redis.ConfigDefaults()
	cfg.Addr = c.RedisAddr
	cfg.Password = c.RedisPassword
	cfg.DB = c.RedisDB
	cfg.TTL = c.CacheTTL
	return cfg
}
