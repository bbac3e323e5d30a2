package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T, level LogLevel) (*StructuredLogger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cfg := NewConfig("crypto-watcher-test", "test", "testing").
		WithLevel(level).
		WithFormat(FormatJSON).
		WithOutput(buf)
	logger, err := NewStructuredLogger(cfg)
	require.NoError(t, err)
	return logger, buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	scanner := bufio.NewScanner(strings.NewReader(buf.String()))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestStructuredLogger_WritesJSONWithServiceFields(t *testing.T) {
	logger, buf := newBufferLogger(t, LevelInfo)

	ctx := WithRequestID(context.Background(), "req_123")
	logger.Info(ctx, "hello", Fields{"currency_id": "bitcoin"})

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0]["message"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "crypto-watcher-test", entries[0]["service"])
	assert.Equal(t, "req_123", entries[0][FieldRequestID])
	assert.Equal(t, "bitcoin", entries[0][FieldCurrencyID])
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(t, LevelWarn)

	logger.Debug(context.Background(), "debug", nil)
	logger.Info(context.Background(), "info", nil)
	logger.Warn(context.Background(), "warn", nil)
	logger.Error(context.Background(), "error", nil)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["message"])
	assert.Equal(t, "error", entries[1]["message"])

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.GetLevel())
	logger.Debug(context.Background(), "debug again", nil)
	assert.Len(t, decodeLines(t, buf), 3)
}

type wrappedErr struct{}

func (wrappedErr) Error() string { return "root cause" }

func TestStructuredLogger_ErrorWithErrorAddsErrorFields(t *testing.T) {
	logger, buf := newBufferLogger(t, LevelInfo)

	caller := Fields{"k": "v"}
	err := fmt.Errorf("outer: %w", wrappedErr{})
	logger.ErrorWithError(context.Background(), "boom", err, caller)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "outer: root cause", entries[0][FieldError])
	assert.Equal(t, "logging.wrappedErr", entries[0][FieldErrorType])
	assert.Equal(t, "v", entries[0]["k"])

	// el mapa del llamador no se modifica
	_, mutated := caller[FieldError]
	assert.False(t, mutated)
}

func TestDomainLoggers_AddDomainField(t *testing.T) {
	base, buf := newBufferLogger(t, LevelDebug)
	set := NewLoggerFactoryFromLogger(base).GetLoggerSet()

	set.HTTP.RequestCompleted(context.Background(), "GET", "/health", 200, 1.5)
	set.ExternalAPI.RequestFailed(context.Background(), "coingecko", "v3/coins/list", 500, errors.New("bad"), 2)
	set.Cache.Hit(context.Background(), "bitcoin", CacheOpGet)
	set.Lifecycle.ComponentNoop(context.Background(), "session", "already initialized")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 4)
	assert.Equal(t, "http", entries[0][FieldDomain])
	assert.Equal(t, "external_api", entries[1][FieldDomain])
	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "bad", entries[1][FieldError])
	assert.Equal(t, "cache", entries[2][FieldDomain])
	assert.Equal(t, "lifecycle", entries[3][FieldDomain])
	assert.Equal(t, "session", entries[3][FieldComponent])
}

func TestHTTPLogger_LevelByStatus(t *testing.T) {
	base, buf := newBufferLogger(t, LevelDebug)
	httpLogger := NewHTTPLogger(base)

	httpLogger.RequestCompleted(context.Background(), "GET", "/a", 200, 1)
	httpLogger.RequestCompleted(context.Background(), "GET", "/b", 404, 1)
	httpLogger.RequestCompleted(context.Background(), "GET", "/c", 503, 1)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 3)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "WARN", entries[1]["level"])
	assert.Equal(t, "ERROR", entries[2]["level"])
}

func TestLoggerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *LoggerConfig)
		wantErr string
	}{
		{name: "default is valid", mutate: func(c *LoggerConfig) {}},
		{name: "bad level", mutate: func(c *LoggerConfig) { c.Level = "TRACE" }, wantErr: "level"},
		{name: "bad format", mutate: func(c *LoggerConfig) { c.Format = "xml" }, wantErr: "format"},
		{name: "nil output", mutate: func(c *LoggerConfig) { c.Output = nil }, wantErr: "output"},
		{name: "empty service", mutate: func(c *LoggerConfig) { c.Service = "" }, wantErr: "service"},
		{name: "file with zero size", mutate: func(c *LoggerConfig) { c.WithOutputFile("app.log", Rotation{}) }, wantErr: "max_size_mb"},
		{name: "file with negative age", mutate: func(c *LoggerConfig) {
			c.WithOutputFile("app.log", Rotation{MaxSizeMB: 1, MaxAgeDays: -1})
		}, wantErr: "rotation"},
		{name: "file with default rotation", mutate: func(c *LoggerConfig) { c.WithOutputFile("app.log", DefaultRotation()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLogLevelFromString(t *testing.T) {
	assert.Equal(t, LevelDebug, LogLevelFromString("DEBUG"))
	assert.Equal(t, LevelWarn, LogLevelFromString("warning"))
	assert.Equal(t, LevelError, LogLevelFromString("error"))
	assert.Equal(t, LevelInfo, LogLevelFromString("nonsense"))
	assert.Equal(t, FormatText, LogFormatFromString("console"))
	assert.Equal(t, FormatJSON, LogFormatFromString(""))
}

func TestGenerateRequestID(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "req_"))

	short := GenerateShortRequestID()
	assert.True(t, strings.HasPrefix(short, "req_"))
	assert.Len(t, short, len("req_")+8)
}
