package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// Validator valida la configuración cargada
type Validator struct{}

// NewValidator crea una nueva instancia del validador
func NewValidator() *Validator {
	return &Validator{}
}

// Validate valida toda la configuración
func (v *Validator) Validate(config *Config) error {
	if err := v.validateServer(config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := v.validateUpstream(config.Upstream); err != nil {
		return fmt.Errorf("upstream config validation failed: %w", err)
	}

	if err := v.validateRefresh(config.Refresh); err != nil {
		return fmt.Errorf("refresh config validation failed: %w", err)
	}

	if err := v.validateSnapshot(config.Snapshot); err != nil {
		return fmt.Errorf("snapshot config validation failed: %w", err)
	}

	if err := v.validateCORS(config.CORS); err != nil {
		return fmt.Errorf("cors config validation failed: %w", err)
	}

	if err := v.validateRateLimit(config.RateLimit); err != nil {
		return fmt.Errorf("rate limit config validation failed: %w", err)
	}

	if err := v.validateLogging(config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	// la tarea de refresco no debe depender de la sustitución silenciosa de moneda
	if !contains(config.Upstream.AllowedVsCurrencies, config.Refresh.VsCurrency) {
		return fmt.Errorf("refresh vs_currency %q is not in upstream allowed_currencies %v",
			config.Refresh.VsCurrency, config.Upstream.AllowedVsCurrencies)
	}

	return nil
}

// validateServer valida la configuración del servidor
func (v *Validator) validateServer(config ServerConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d, must be between 1-65535", config.Port)
	}

	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got: %v", config.ShutdownTimeout)
	}

	if config.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown_timeout too long: %v, max 5 minutes", config.ShutdownTimeout)
	}

	return nil
}

// validateUpstream valida la configuración de CoinGecko.
// La API key puede estar vacía aquí: se resuelve después desde SSM si hay parámetro.
func (v *Validator) validateUpstream(config UpstreamConfig) error {
	if err := v.validateURL(config.BaseURL, "upstream base_url"); err != nil {
		return err
	}

	if !strings.HasSuffix(config.BaseURL, "/") {
		return fmt.Errorf("upstream base_url must end with '/', got: %s", config.BaseURL)
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got: %v", config.Timeout)
	}

	if config.Timeout > 2*time.Minute {
		return fmt.Errorf("upstream timeout too long: %v, max 2 minutes", config.Timeout)
	}

	if config.DetailCacheSize < 0 {
		return fmt.Errorf("upstream detail_cache_size cannot be negative, got: %d (use 0 for unbounded)", config.DetailCacheSize)
	}

	if len(config.AllowedVsCurrencies) == 0 {
		return fmt.Errorf("upstream allowed_currencies cannot be empty")
	}

	for _, c := range config.AllowedVsCurrencies {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("upstream allowed_currencies contains an empty value")
		}
	}

	return nil
}

// validateRefresh valida la configuración de la tarea de refresco
func (v *Validator) validateRefresh(config RefreshConfig) error {
	if config.Interval < time.Second {
		return fmt.Errorf("refresh interval too short: %v, min 1s", config.Interval)
	}

	if config.Interval > 24*time.Hour {
		return fmt.Errorf("refresh interval too long: %v, max 24 hours", config.Interval)
	}

	if strings.TrimSpace(config.VsCurrency) == "" {
		return fmt.Errorf("refresh vs_currency cannot be empty")
	}

	return nil
}

// validateSnapshot valida el backend del snapshot
func (v *Validator) validateSnapshot(config SnapshotConfig) error {
	validBackends := []string{"memory", "redis"}
	if !contains(validBackends, config.Backend) {
		return fmt.Errorf("invalid snapshot backend: %s, must be one of: %v", config.Backend, validBackends)
	}

	// Validar Redis config si se usa Redis
	if strings.EqualFold(config.Backend, "redis") {
		if err := v.validateRedis(config.Redis); err != nil {
			return err
		}
	}

	return nil
}

// validateRedis valida la configuración de Redis
func (v *Validator) validateRedis(config RedisConfig) error {
	if config.Addr == "" {
		return fmt.Errorf("redis addr cannot be empty")
	}

	// Validar formato de dirección
	if !strings.Contains(config.Addr, ":") {
		return fmt.Errorf("invalid redis addr format: %s, expected host:port", config.Addr)
	}

	if config.DB < 0 || config.DB > 15 {
		return fmt.Errorf("invalid redis DB: %d, must be between 0-15", config.DB)
	}

	if config.Key == "" {
		return fmt.Errorf("redis key cannot be empty")
	}

	if config.ConnectAttempts < 1 || config.ConnectAttempts > 10 {
		return fmt.Errorf("redis connect_attempts must be between 1-10, got: %d", config.ConnectAttempts)
	}

	return nil
}

// validateCORS valida los orígenes permitidos
func (v *Validator) validateCORS(config CORSConfig) error {
	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if err := v.validateURL(origin, "cors origin"); err != nil {
			return err
		}
	}
	return nil
}

// validateRateLimit valida la configuración de rate limiting
func (v *Validator) validateRateLimit(config RateLimitConfig) error {
	if config.Enabled {
		if config.Capacity <= 0 {
			return fmt.Errorf("rate_limit capacity must be positive when enabled, got: %d", config.Capacity)
		}

		if config.RefillRate <= 0 {
			return fmt.Errorf("rate_limit refill_rate must be positive when enabled, got: %d", config.RefillRate)
		}

		if config.Capacity > 10000 {
			return fmt.Errorf("rate_limit capacity too high: %d, max 10000", config.Capacity)
		}

		if config.RefillRate > 1000 {
			return fmt.Errorf("rate_limit refill_rate too high: %d, max 1000", config.RefillRate)
		}
	}

	for _, proxy := range config.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			return fmt.Errorf("invalid rate_limit trusted proxy: %s, must be an IP or CIDR", proxy)
		}
	}

	return nil
}

// validateLogging valida la configuración de logging
func (v *Validator) validateLogging(config LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, config.Level) {
		return fmt.Errorf("invalid log level: %s, must be one of: %v", config.Level, validLevels)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, config.Format) {
		return fmt.Errorf("invalid log format: %s, must be one of: %v", config.Format, validFormats)
	}

	if config.OutputFile != "" && config.MaxSizeMB <= 0 {
		return fmt.Errorf("log max_size_mb must be positive when output_file is set, got: %d", config.MaxSizeMB)
	}

	if config.MaxBackups < 0 || config.MaxAgeDays < 0 {
		return fmt.Errorf("log max_backups and max_age_days cannot be negative")
	}

	return nil
}

// validateURL valida que una URL sea válida para HTTP/HTTPS
func (v *Validator) validateURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %s, error: %v", fieldName, rawURL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid %s scheme: %s, must be http or https", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s must have a host", fieldName)
	}

	return nil
}

// contains verifica si un slice contiene un elemento
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
