package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// LogFormat representa el encoder de zap que se usa
type LogFormat string

const (
	FormatJSON LogFormat = "json"
	FormatText LogFormat = "text"
)

// Rotation configura lumberjack cuando hay fichero de salida
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotation keeps ten 10MB files for a month
func DefaultRotation() Rotation {
	return Rotation{MaxSizeMB: 10, MaxBackups: 10, MaxAgeDays: 30}
}

// LoggerConfig describes one logger: level, encoder, sinks and the static
// fields stamped on every entry.
type LoggerConfig struct {
	Level       LogLevel
	Format      LogFormat
	Output      io.Writer
	OutputFile  string
	Rotation    Rotation
	Service     string
	Version     string
	Environment string
	AddSource   bool
}

// DefaultConfig retorna la configuración por defecto
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:       LevelInfo,
		Format:      FormatJSON,
		Output:      os.Stdout,
		Rotation:    DefaultRotation(),
		Service:     "crypto-watcher",
		Version:     "dev",
		Environment: "development",
	}
}

// NewConfig crea la configuración de un servicio. Fuera de producción se
// añade el caller a cada entrada.
func NewConfig(service, version, environment string) *LoggerConfig {
	config := DefaultConfig()
	config.Service = service
	config.Version = version
	config.Environment = environment
	config.AddSource = !strings.EqualFold(environment, "production")
	return config
}

func (c *LoggerConfig) WithLevel(level LogLevel) *LoggerConfig {
	c.Level = level
	return c
}

func (c *LoggerConfig) WithFormat(format LogFormat) *LoggerConfig {
	c.Format = format
	return c
}

func (c *LoggerConfig) WithOutput(output io.Writer) *LoggerConfig {
	c.Output = output
	return c
}

// WithOutputFile añade un fichero rotado como segundo sink
func (c *LoggerConfig) WithOutputFile(path string, rotation Rotation) *LoggerConfig {
	c.OutputFile = path
	c.Rotation = rotation
	return c
}

// Validate rechaza configuraciones con las que zap no puede construir el core
func (c *LoggerConfig) Validate() error {
	switch c.Level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
	default:
		return &ConfigError{Field: "level", Value: string(c.Level), Message: "invalid log level"}
	}

	switch c.Format {
	case FormatJSON, FormatText:
	default:
		return &ConfigError{Field: "format", Value: string(c.Format), Message: "invalid log format"}
	}

	if c.Output == nil {
		return &ConfigError{Field: "output", Value: "nil", Message: "output writer cannot be nil"}
	}

	if c.Service == "" {
		return &ConfigError{Field: "service", Value: "", Message: "service name cannot be empty"}
	}

	if c.OutputFile != "" {
		if c.Rotation.MaxSizeMB <= 0 {
			return &ConfigError{Field: "rotation.max_size_mb", Value: fmt.Sprint(c.Rotation.MaxSizeMB), Message: "must be positive"}
		}
		if c.Rotation.MaxBackups < 0 || c.Rotation.MaxAgeDays < 0 {
			return &ConfigError{Field: "rotation", Value: fmt.Sprintf("%d/%d", c.Rotation.MaxBackups, c.Rotation.MaxAgeDays), Message: "backups and age cannot be negative"}
		}
	}

	return nil
}

// ConfigError identifica el campo inválido
type ConfigError struct {
	Field   string
	Value   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("logger config %s=%q: %s", e.Field, e.Value, e.Message)
}

// LogLevelFromString maps config strings to levels; unknown values fall back to info
func LogLevelFromString(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LogFormatFromString acepta "console" como alias de text
func LogFormatFromString(format string) LogFormat {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text", "console":
		return FormatText
	default:
		return FormatJSON
	}
}
