package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for env vars: CRYPTO_WATCHER_SERVER_PORT
const EnvPrefix = "CRYPTO_WATCHER"

// Loader handles configuration loading using Viper
type Loader struct {
	v           *viper.Viper
	configPaths []string
	envFiles    []string
}

// NewLoader creates a new configuration loader instance
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
		configPaths: []string{
			"./configs",  // Configs directory in root
			"../configs", // For when running from cmd/
			".",
			"/etc/crypto-watcher",
		},
		envFiles: []string{".env"},
	}
}

// NewLoaderWithPaths creates a loader that only searches the given directories
func NewLoaderWithPaths(configPaths []string, envFiles ...string) *Loader {
	return &Loader{
		v:           viper.New(),
		configPaths: configPaths,
		envFiles:    envFiles,
	}
}

// Load loads configuration from .env, files and environment variables
func (l *Loader) Load() (*Config, error) {
	// 1. .env first so it feeds the env lookups below; real env vars win
	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}

	// 2. Configure Viper
	l.setupViper()

	// 3. Read configuration
	if err := l.v.ReadInConfig(); err != nil {
		// If config.yaml doesn't exist, use only env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 4. Unmarshal a struct
	config := GetDefaultConfig()
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Override with list-valued env vars
	l.overrideWithEnvVars(config)

	return config, nil
}

func (l *Loader) loadDotEnv() error {
	for _, file := range l.envFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// setupViper configures Viper to read files and env vars
func (l *Loader) setupViper() {
	l.v.SetConfigName("config")
	l.v.SetConfigType("yaml")

	for _, path := range l.configPaths {
		l.v.AddConfigPath(path)
	}

	l.v.AutomaticEnv()
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l.setDefaults()
	l.bindEnvVars()
}

// setDefaults registra cada clave para que AutomaticEnv la resuelva en Unmarshal
func (l *Loader) setDefaults() {
	d := GetDefaultConfig()

	l.v.SetDefault("server.port", d.Server.Port)
	l.v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	l.v.SetDefault("upstream.base_url", d.Upstream.BaseURL)
	l.v.SetDefault("upstream.api_key", d.Upstream.APIKey)
	l.v.SetDefault("upstream.api_key_ssm_parameter", d.Upstream.APIKeySSMParameter)
	l.v.SetDefault("upstream.timeout", d.Upstream.Timeout)
	l.v.SetDefault("upstream.detail_cache_size", d.Upstream.DetailCacheSize)
	l.v.SetDefault("upstream.allowed_currencies", d.Upstream.AllowedVsCurrencies)

	l.v.SetDefault("refresh.interval", d.Refresh.Interval)
	l.v.SetDefault("refresh.vs_currency", d.Refresh.VsCurrency)

	l.v.SetDefault("snapshot.backend", d.Snapshot.Backend)
	l.v.SetDefault("snapshot.redis.addr", d.Snapshot.Redis.Addr)
	l.v.SetDefault("snapshot.redis.password", d.Snapshot.Redis.Password)
	l.v.SetDefault("snapshot.redis.db", d.Snapshot.Redis.DB)
	l.v.SetDefault("snapshot.redis.key", d.Snapshot.Redis.Key)
	l.v.SetDefault("snapshot.redis.connect_attempts", d.Snapshot.Redis.ConnectAttempts)

	l.v.SetDefault("cors.allowed_origins", d.CORS.AllowedOrigins)

	l.v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	l.v.SetDefault("rate_limit.capacity", d.RateLimit.Capacity)
	l.v.SetDefault("rate_limit.refill_rate", d.RateLimit.RefillRate)
	l.v.SetDefault("rate_limit.trusted_proxies", d.RateLimit.TrustedProxies)

	l.v.SetDefault("logging.level", d.Logging.Level)
	l.v.SetDefault("logging.format", d.Logging.Format)
	l.v.SetDefault("logging.output_file", d.Logging.OutputFile)
	l.v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	l.v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	l.v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	l.v.SetDefault("logging.compress", d.Logging.Compress)
}

// bindEnvVars maps short, conventional environment variables to configuration keys.
// The prefixed name is listed first so it takes precedence.
func (l *Loader) bindEnvVars() {
	envMappings := map[string]string{
		"server.port":                    "PORT",
		"upstream.api_key":               "COINGECKO_API_KEY",
		"upstream.api_key_ssm_parameter": "COINGECKO_API_KEY_SSM_PARAMETER",
		"upstream.base_url":              "COINGECKO_BASE_URL",
		"snapshot.backend":               "SNAPSHOT_BACKEND",
		"snapshot.redis.addr":            "REDIS_ADDR",
		"snapshot.redis.password":        "REDIS_PASSWORD",
		"snapshot.redis.db":              "REDIS_DB",
		"logging.level":                  "LOG_LEVEL",
		"logging.format":                 "LOG_FORMAT",
	}

	for configKey, envVar := range envMappings {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(configKey, ".", "_"))
		_ = l.v.BindEnv(configKey, prefixed, envVar)
	}
}

// overrideWithEnvVars maneja las listas separadas por comas
func (l *Loader) overrideWithEnvVars(config *Config) {
	if origins := splitList(os.Getenv("CORS_ALLOWED_ORIGINS"), false); len(origins) > 0 {
		config.CORS.AllowedOrigins = origins
	}

	if currencies := splitList(os.Getenv("ALLOWED_CURRENCIES"), true); len(currencies) > 0 {
		config.Upstream.AllowedVsCurrencies = currencies
	}

	if proxies := splitList(os.Getenv("TRUSTED_PROXIES"), false); len(proxies) > 0 {
		config.RateLimit.TrustedProxies = proxies
	}
}

func splitList(raw string, lower bool) []string {
	if raw == "" {
		return nil
	}

	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if lower {
			item = strings.ToLower(item)
		}
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
