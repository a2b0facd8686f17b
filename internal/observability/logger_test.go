// File: internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/cyberhealth-cli/internal/config"
)

// syncBuffer adapts bytes.Buffer to zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (b *syncBuffer) Sync() error { return nil }

// -- Test Cases --

func TestInitialize(t *testing.T) {

	t.Run("should initialize console logger with colors", func(t *testing.T) {
		ResetForTest()
		var buf syncBuffer

		cfg := config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
			Colors: config.ColorConfig{
				Info: "green",
			},
		}
		Initialize(cfg, &buf)
		GetLogger().Info("This is a test message.")

		output := buf.String()
		assert.Contains(t, output, "INFO", "Output should contain the log level")
		assert.Contains(t, output, "This is a test message.", "Output should contain the message")
		assert.Contains(t, output, colorGreen, "Info level should be colorized green")
		assert.Contains(t, output, colorReset, "Output should contain the reset color code")
	})

	t.Run("should initialize json logger", func(t *testing.T) {
		ResetForTest()
		var buf syncBuffer

		cfg := config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "JSONTest",
		}
		Initialize(cfg, &buf)
		GetLogger().Warn("This is a JSON message.", zap.String("key", "value"))

		var logEntry map[string]interface{}
		err := json.Unmarshal(buf.Bytes(), &logEntry)
		require.NoError(t, err, "Log output should be valid JSON")

		assert.Equal(t, "WARN", logEntry["level"])
		assert.Equal(t, "JSONTest", logEntry["logger"])
		assert.Equal(t, "This is a JSON message.", logEntry["msg"])
		assert.Equal(t, "value", logEntry["key"])
	})

	t.Run("should write to a log file if configured", func(t *testing.T) {
		ResetForTest()
		logFile := filepath.Join(t.TempDir(), "logger-test.log")

		cfg := config.LoggerConfig{
			Level:   "debug",
			Format:  "json",
			LogFile: logFile,
			MaxSize: 1, // 1 MB
		}
		Initialize(cfg, zapcore.AddSync(&syncBuffer{}))
		GetLogger().Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "This should go to the file.", "Log file should contain the message")
	})

	t.Run("should only initialize once", func(t *testing.T) {
		ResetForTest()
		var buf syncBuffer

		cfg1 := config.LoggerConfig{Level: "info", ServiceName: "First"}
		Initialize(cfg1, &buf)
		logger1 := GetLogger()

		// Second initialization must be ignored.
		cfg2 := config.LoggerConfig{Level: "debug", ServiceName: "Second"}
		Initialize(cfg2, &buf)
		logger2 := GetLogger()

		assert.Equal(t, logger1, logger2)
		logger2.Info("test")

		assert.True(t, strings.Contains(buf.String(), "First"))
		assert.False(t, strings.Contains(buf.String(), "Second"))
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("should return a fallback logger if not initialized", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
	})

	t.Run("should return the global logger after initialization", func(t *testing.T) {
		ResetForTest()
		cfg := config.LoggerConfig{Level: "info", ServiceName: "GlobalTest"}
		Initialize(cfg, zapcore.AddSync(&syncBuffer{}))

		logger := GetLogger()
		assert.Equal(t, globalLogger.Load(), logger)
	})
}
