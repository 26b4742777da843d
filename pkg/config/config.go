package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	HTTPClient struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http_client"`
	Cache struct {
		MaxEntries int `yaml:"max_entries"`
		TTL        struct {
			Funding      time.Duration `yaml:"funding"`
			OpenInterest time.Duration `yaml:"open_interest"`
			Tickers      time.Duration `yaml:"tickers"`
		} `yaml:"ttl"`
	} `yaml:"cache"`
	Allowlist struct {
		Enabled bool          `yaml:"enabled"`
		Size    int           `yaml:"size"`
		MinSize int           `yaml:"min_size"`
		TTL     time.Duration `yaml:"ttl"`
		APIURL  string        `yaml:"api_url"`
		APIKey  string        `yaml:"api_key"`
	} `yaml:"allowlist"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Sources struct {
		Binance struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"binance"`
		Bybit struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"bybit"`
		GateIO struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"gateio"`
		BingX struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"bingx"`
		Hyperliquid struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"hyperliquid"`
		Ostium struct {
			BaseURL          string `yaml:"base_url"`
			EightHourSeconds int64  `yaml:"eight_hour_seconds"`
		} `yaml:"ostium"`
		OpenInterest struct {
			TopN      int `yaml:"top_n"`
			BatchSize int `yaml:"batch_size"`
		} `yaml:"open_interest"`
	} `yaml:"sources"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CMC_API_KEY"); v != "" {
		c.Allowlist.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.HTTPClient.Timeout == 0 {
		c.HTTPClient.Timeout = 10 * time.Second
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 256
	}
	if c.Cache.TTL.Funding == 0 {
		c.Cache.TTL.Funding = 30 * time.Second
	}
	if c.Cache.TTL.OpenInterest == 0 {
		c.Cache.TTL.OpenInterest = 60 * time.Second
	}
	if c.Cache.TTL.Tickers == 0 {
		c.Cache.TTL.Tickers = 15 * time.Second
	}
	if c.Allowlist.Size == 0 {
		c.Allowlist.Size = 500
	}
	if c.Allowlist.MinSize == 0 {
		c.Allowlist.MinSize = c.Allowlist.Size / 5
	}
	if c.Allowlist.TTL == 0 {
		c.Allowlist.TTL = 30 * time.Minute
	}
	if c.Allowlist.APIURL == "" {
		c.Allowlist.APIURL = "https://pro-api.coinmarketcap.com"
	}
	if c.Sources.Binance.BaseURL == "" {
		c.Sources.Binance.BaseURL = "https://fapi.binance.com"
	}
	if c.Sources.Bybit.BaseURL == "" {
		c.Sources.Bybit.BaseURL = "https://api.bybit.com"
	}
	if c.Sources.GateIO.BaseURL == "" {
		c.Sources.GateIO.BaseURL = "https://api.gateio.ws"
	}
	if c.Sources.BingX.BaseURL == "" {
		c.Sources.BingX.BaseURL = "https://open-api.bingx.com"
	}
	if c.Sources.Hyperliquid.BaseURL == "" {
		c.Sources.Hyperliquid.BaseURL = "https://api.hyperliquid.xyz"
	}
	if c.Sources.Ostium.BaseURL == "" {
		c.Sources.Ostium.BaseURL = "https://metadata-backend.ostium.io"
	}
	if c.Sources.Ostium.EightHourSeconds == 0 {
		c.Sources.Ostium.EightHourSeconds = 28800
	}
	if c.Sources.OpenInterest.TopN == 0 {
		c.Sources.OpenInterest.TopN = 100
	}
	if c.Sources.OpenInterest.BatchSize == 0 {
		c.Sources.OpenInterest.BatchSize = 25
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when kafka is enabled")
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("redis.host is required when redis is enabled")
	}
	if c.Allowlist.MinSize > c.Allowlist.Size {
		return fmt.Errorf("allowlist.min_size cannot exceed allowlist.size")
	}
	return nil
}
