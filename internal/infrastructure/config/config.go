package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream" mapstructure:"upstream"`
	Refresh   RefreshConfig   `yaml:"refresh" mapstructure:"refresh"`
	Snapshot  SnapshotConfig  `yaml:"snapshot" mapstructure:"snapshot"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" mapstructure:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// UpstreamConfig contains the CoinGecko Pro API configuration
type UpstreamConfig struct {
	BaseURL             string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey              string        `yaml:"api_key" mapstructure:"api_key"`
	APIKeySSMParameter  string        `yaml:"api_key_ssm_parameter" mapstructure:"api_key_ssm_parameter"`
	Timeout             time.Duration `yaml:"timeout" mapstructure:"timeout"`
	DetailCacheSize     int           `yaml:"detail_cache_size" mapstructure:"detail_cache_size"`
	AllowedVsCurrencies []string      `yaml:"allowed_currencies" mapstructure:"allowed_currencies"`
}

// RefreshConfig contains the background market refresh configuration
type RefreshConfig struct {
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
	VsCurrency string        `yaml:"vs_currency" mapstructure:"vs_currency"`
}

// SnapshotConfig contains the market snapshot store configuration
type SnapshotConfig struct {
	Backend string      `yaml:"backend" mapstructure:"backend"`
	Redis   RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig contains Redis-specific configuration
type RedisConfig struct {
	Addr            string `yaml:"addr" mapstructure:"addr"`
	Password        string `yaml:"password" mapstructure:"password"`
	DB              int    `yaml:"db" mapstructure:"db"`
	Key             string `yaml:"key" mapstructure:"key"`
	ConnectAttempts uint   `yaml:"connect_attempts" mapstructure:"connect_attempts"`
}

// CORSConfig contains the cross-origin configuration
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	Capacity   int  `yaml:"capacity" mapstructure:"capacity"`
	RefillRate int  `yaml:"refill_rate" mapstructure:"refill_rate"`
	// TrustedProxies may set X-Forwarded-For / X-Real-IP; empty means the peer address is always used
	TrustedProxies []string `yaml:"trusted_proxies" mapstructure:"trusted_proxies"`
}

// LoggingConfig contains logging system configuration
type LoggingConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	OutputFile string `yaml:"output_file" mapstructure:"output_file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ShutdownTimeout: 30 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL:             "https://pro-api.coingecko.com/api/",
			Timeout:             10 * time.Second,
			DetailCacheSize:     128,
			AllowedVsCurrencies: []string{"usd"},
		},
		Refresh: RefreshConfig{
			Interval:   60 * time.Second,
			VsCurrency: "usd",
		},
		Snapshot: SnapshotConfig{
			Backend: "memory",
			Redis: RedisConfig{
				Addr:            "localhost:6379",
				Password:        "",
				DB:              0,
				Key:             "crypto-watcher:markets",
				ConnectAttempts: 3,
			},
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		},
		RateLimit: RateLimitConfig{
			Enabled:    true,
			Capacity:   100,
			RefillRate: 10,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  10,
			MaxBackups: 10,
			MaxAgeDays: 30,
		},
	}
}
