package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
	Features   FeatureConfig
	News       NewsConfig
	Market     MarketConfig
	AI         AIConfig
	Resilience ResilienceConfig
	Stream     StreamConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	CORSOrigins []string `envconfig:"BACKEND_CORS_ORIGINS" default:"http://localhost:3000"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds inbound rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// FeatureConfig holds feature flags.
type FeatureConfig struct {
	UseMockData         bool `envconfig:"USE_MOCK_DATA" default:"false"`
	EnrichNewsSentiment bool `envconfig:"NEWS_ENRICH_SENTIMENT" default:"false"`
}

// NewsConfig holds the news upstream. An empty key forces fallback news.
type NewsConfig struct {
	APIKey  string        `envconfig:"NEWS_API_KEY"`
	BaseURL string        `envconfig:"NEWS_API_URL" default:"https://newsapi.org"`
	Query   string        `envconfig:"NEWS_QUERY" default:"crypto"`
	Timeout time.Duration `envconfig:"NEWS_TIMEOUT" default:"5s"`
}

// MarketConfig holds the market upstream. The key is optional.
type MarketConfig struct {
	APIKey         string        `envconfig:"COINGECKO_API_KEY"`
	BaseURL        string        `envconfig:"MARKET_API_URL" default:"https://api.coingecko.com/api/v3"`
	PriceTimeout   time.Duration `envconfig:"MARKET_PRICE_TIMEOUT" default:"5s"`
	HistoryTimeout time.Duration `envconfig:"MARKET_HISTORY_TIMEOUT" default:"10s"`
	RateLimitRPS   float64       `envconfig:"MARKET_RATE_LIMIT_RPS" default:"0.5"`
	SymbolsFile    string        `envconfig:"MARKET_SYMBOLS_FILE"`
}

// AIConfig holds the AI integration. An empty key selects the mock stub.
type AIConfig struct {
	APIKey string `envconfig:"OPENAI_API_KEY"`
}

// ResilienceConfig holds breaker and retry tuning shared by both upstreams.
type ResilienceConfig struct {
	FailMax      uint32        `envconfig:"BREAKER_FAIL_MAX" default:"3"`
	ResetTimeout time.Duration `envconfig:"BREAKER_RESET_TIMEOUT" default:"60s"`
	MaxAttempts  int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	BaseDelay    time.Duration `envconfig:"RETRY_BASE_DELAY" default:"4s"`
	MaxDelay     time.Duration `envconfig:"RETRY_MAX_DELAY" default:"10s"`
}

// StreamConfig holds the WebSocket ticker cadence.
type StreamConfig struct {
	Interval    time.Duration `envconfig:"STREAM_INTERVAL" default:"5s"`
	TickTimeout time.Duration `envconfig:"STREAM_TICK_TIMEOUT" default:"4s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects settings the resilience layer cannot run with.
func (c *Config) Validate() error {
	if c.Resilience.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.Resilience.MaxAttempts)
	}
	if c.Resilience.FailMax < 1 {
		return fmt.Errorf("BREAKER_FAIL_MAX must be at least 1, got %d", c.Resilience.FailMax)
	}
	if c.Resilience.BaseDelay > c.Resilience.MaxDelay {
		return fmt.Errorf("RETRY_BASE_DELAY (%s) exceeds RETRY_MAX_DELAY (%s)", c.Resilience.BaseDelay, c.Resilience.MaxDelay)
	}
	if c.Stream.Interval <= 0 {
		return fmt.Errorf("STREAM_INTERVAL must be positive, got %s", c.Stream.Interval)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		News: NewsConfig{
			BaseURL: "https://newsapi.org",
			Query:   "crypto",
			Timeout: 5 * time.Second,
		},
		Market: MarketConfig{
			BaseURL:        "https://api.coingecko.com/api/v3",
			PriceTimeout:   5 * time.Second,
			HistoryTimeout: 10 * time.Second,
			RateLimitRPS:   0.5,
		},
		Resilience: ResilienceConfig{
			FailMax:      3,
			ResetTimeout: 60 * time.Second,
			MaxAttempts:  3,
			BaseDelay:    4 * time.Second,
			MaxDelay:     10 * time.Second,
		},
		Stream: StreamConfig{
			Interval:    5 * time.Second,
			TickTimeout: 4 * time.Second,
		},
	}
}
