package config_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenwallet/lumen/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  config.LogLevel
	}{
		{"off", config.LogLevelOff},
		{"OFF", config.LogLevelOff},
		{"none", config.LogLevelOff},
		{"false", config.LogLevelOff},
		{"error", config.LogLevelError},
		{"ERROR", config.LogLevelError},
		{"debug", config.LogLevelDebug},
		{"DEBUG", config.LogLevelDebug},
		{"  debug  ", config.LogLevelDebug},
		{"trace", config.LogLevelDebug},
		{"verbose", config.LogLevelError}, // unknown names keep error logging on
		{"", config.LogLevelError},
	}

	for _, tt := range tests {
		t.Run("input="+tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, config.ParseLogLevel(tt.input))
		})
	}
}

func TestLogLevelString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "off", config.LogLevelOff.String())
	assert.Equal(t, "error", config.LogLevelError.String())
	assert.Equal(t, "debug", config.LogLevelDebug.String())
	assert.Equal(t, "error", config.LogLevel(42).String(), "out-of-range levels read as error")
}

// newFileLogger builds a logger writing beneath a temp directory and returns
// it with a function that reads back the log file.
func newFileLogger(t *testing.T, level config.LogLevel) (*config.Logger, func() string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "logs", "lumen.log")
	logger, err := config.NewLogger(level, path)
	require.NoError(t, err)

	read := func() string {
		data, readErr := os.ReadFile(path) //nolint:gosec // G304: test-controlled path
		require.NoError(t, readErr)
		return string(data)
	}
	return logger, read
}

func TestLoggerWritesTimestampedLines(t *testing.T) {
	t.Parallel()

	logger, read := newFileLogger(t, config.LogLevelDebug)
	logger.Debug("fetching %d invoices", 50)
	logger.Error("node fetch failed: %s", "timeout")
	require.NoError(t, logger.Close())

	content := read()
	assert.Contains(t, content, "[DEBUG] fetching 50 invoices")
	assert.Contains(t, content, "[ERROR] node fetch failed: timeout")

	stamp := regexp.MustCompile(`(?m)^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}(Z|[+-]\d{2}:\d{2}) \[`)
	assert.Regexp(t, stamp, content, "every line starts with a millisecond timestamp")
}

func TestLoggerCreatesParentDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deeply", "nested", "lumen.log")
	logger, err := config.NewLogger(config.LogLevelError, path)
	require.NoError(t, err)

	logger.Error("first line")
	require.NoError(t, logger.Close())
	assert.FileExists(t, path)
}

func TestLoggerSuppressesBelowLevel(t *testing.T) {
	t.Parallel()

	logger, read := newFileLogger(t, config.LogLevelError)
	logger.Debug("suppressed trace")
	logger.Error("visible failure")
	require.NoError(t, logger.Close())

	content := read()
	assert.NotContains(t, content, "suppressed trace")
	assert.Contains(t, content, "visible failure")
}

func TestLoggerSetLevel(t *testing.T) {
	t.Parallel()

	logger, read := newFileLogger(t, config.LogLevelError)
	logger.SetLevel(config.LogLevelDebug)
	assert.Equal(t, config.LogLevelDebug, logger.Level())

	logger.Debug("now visible")
	require.NoError(t, logger.Close())
	assert.Contains(t, read(), "now visible")
}

func TestLoggerWithoutDestination(t *testing.T) {
	t.Parallel()

	t.Run("empty path keeps no file", func(t *testing.T) {
		t.Parallel()
		logger, err := config.NewLogger(config.LogLevelDebug, "")
		require.NoError(t, err)

		logger.Debug("goes nowhere")
		logger.Error("goes nowhere")
		assert.NoError(t, logger.Close())
	})

	t.Run("level off never opens the file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "lumen.log")
		logger, err := config.NewLogger(config.LogLevelOff, path)
		require.NoError(t, err)

		logger.Error("discarded")
		require.NoError(t, logger.Close())
		assert.NoFileExists(t, path)
	})
}

func TestLoggerWriter(t *testing.T) {
	t.Parallel()

	logger, read := newFileLogger(t, config.LogLevelDebug)
	w := logger.Writer(config.LogLevelDebug)

	n, err := w.Write([]byte("from an http client\n"))
	require.NoError(t, err)
	assert.Equal(t, len("from an http client\n"), n, "Write reports the full input length")
	require.NoError(t, logger.Close())

	content := read()
	assert.Contains(t, content, "from an http client")
	assert.NotContains(t, content, "\n\n", "trailing newlines are trimmed before logging")
}

func TestNullLogger(t *testing.T) {
	t.Parallel()

	logger := config.NullLogger()
	require.NotNil(t, logger)

	logger.Debug("discarded")
	logger.Error("discarded")
	assert.Equal(t, config.LogLevelOff, logger.Level())
	assert.NoError(t, logger.Close())
}
