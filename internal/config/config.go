package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Binance struct {
		BaseURL string `yaml:"base_url"`
		WSURL   string `yaml:"ws_url"`
	} `yaml:"binance"`
	Screen struct {
		Interval    string `yaml:"interval"`
		Limit       int    `yaml:"limit"`
		QuoteAsset  string `yaml:"quote_asset"`
		MaxSymbols  int    `yaml:"max_symbols"`
		Concurrency int    `yaml:"concurrency"`
		MinScore    int    `yaml:"min_score"`
		TopN        int    `yaml:"top_n"`
		MinHistory  int    `yaml:"min_history"`
	} `yaml:"screen"`
	RateLimit struct {
		BatchSize int    `yaml:"batch_size"`
		Pause     string `yaml:"pause"`
	} `yaml:"rate_limit"`
	Retry struct {
		MaxRetries  int    `yaml:"max_retries"`
		BackoffBase string `yaml:"backoff_base"`
		BackoffCap  string `yaml:"backoff_cap"`
	} `yaml:"retry"`
	Cache struct {
		SQLitePath string `yaml:"sqlite_path"`
		TTL        string `yaml:"ttl"`
	} `yaml:"cache"`
	Stream struct {
		Symbol string `yaml:"symbol"`
		Window string `yaml:"window"`
	} `yaml:"stream"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		cfg.Binance.BaseURL = v
	}
	if v := os.Getenv("BINANCE_WS_URL"); v != "" {
		cfg.Binance.WSURL = v
	}
	if v := os.Getenv("SCREEN_INTERVAL"); v != "" {
		cfg.Screen.Interval = v
	}
	if v := os.Getenv("SCREEN_QUOTE_ASSET"); v != "" {
		cfg.Screen.QuoteAsset = v
	}
	if v := os.Getenv("SCREEN_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Screen.Concurrency = n
		}
	}
	if v := os.Getenv("SCREEN_MIN_SCORE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Screen.MinScore = n
		}
	}
	if v := os.Getenv("SCREEN_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}

	// Defaults
	if cfg.Binance.BaseURL == "" {
		cfg.Binance.BaseURL = "https://api.binance.com/api/v3"
	}
	if cfg.Binance.WSURL == "" {
		cfg.Binance.WSURL = "wss://stream.binance.com:9443/ws"
	}
	if cfg.Screen.Interval == "" {
		cfg.Screen.Interval = "1d"
	}
	if cfg.Screen.Limit == 0 {
		cfg.Screen.Limit = 500
	}
	if cfg.Screen.QuoteAsset == "" {
		cfg.Screen.QuoteAsset = "USDT"
	}
	if cfg.Screen.Concurrency == 0 {
		cfg.Screen.Concurrency = 5
	}
	if cfg.Screen.MinScore == 0 {
		cfg.Screen.MinScore = 7
	}
	if cfg.Screen.TopN == 0 {
		cfg.Screen.TopN = 15
	}
	if cfg.Screen.MinHistory == 0 {
		cfg.Screen.MinHistory = 250
	}
	if cfg.RateLimit.BatchSize == 0 {
		cfg.RateLimit.BatchSize = 10
	}
	if cfg.RateLimit.Pause == "" {
		cfg.RateLimit.Pause = "1s"
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 5
	}
	if cfg.Retry.BackoffBase == "" {
		cfg.Retry.BackoffBase = "300ms"
	}
	if cfg.Retry.BackoffCap == "" {
		cfg.Retry.BackoffCap = "10s"
	}
	if cfg.Cache.TTL == "" {
		cfg.Cache.TTL = "30m"
	}
	if cfg.Stream.Window == "" {
		cfg.Stream.Window = "1m"
	}

	return cfg, nil
}

// Validate checks field ranges and that every duration string parses.
func (c *Config) Validate() error {
	if c.Screen.Limit < c.Screen.MinHistory {
		return fmt.Errorf("screen.limit (%d) must be >= screen.min_history (%d)",
			c.Screen.Limit, c.Screen.MinHistory)
	}
	if c.Screen.Concurrency < 1 {
		return fmt.Errorf("screen.concurrency must be positive")
	}
	if c.RateLimit.BatchSize < 1 {
		return fmt.Errorf("rate_limit.batch_size must be positive")
	}
	for name, v := range map[string]string{
		"rate_limit.pause":   c.RateLimit.Pause,
		"retry.backoff_base": c.Retry.BackoffBase,
		"retry.backoff_cap":  c.Retry.BackoffCap,
		"cache.ttl":          c.Cache.TTL,
		"stream.window":      c.Stream.Window,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// RatePause returns the parsed rate-limit pause duration.
func (c *Config) RatePause() time.Duration { return mustDuration(c.RateLimit.Pause) }

// BackoffBase returns the parsed retry backoff base.
func (c *Config) BackoffBase() time.Duration { return mustDuration(c.Retry.BackoffBase) }

// BackoffCap returns the parsed retry backoff cap.
func (c *Config) BackoffCap() time.Duration { return mustDuration(c.Retry.BackoffCap) }

// CacheTTL returns the parsed cache freshness window.
func (c *Config) CacheTTL() time.Duration { return mustDuration(c.Cache.TTL) }

// StreamWindow returns the parsed trade aggregation window.
func (c *Config) StreamWindow() time.Duration { return mustDuration(c.Stream.Window) }

// mustDuration assumes Validate has run; unparseable strings fall back to
// zero rather than panicking.
func mustDuration(v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}
