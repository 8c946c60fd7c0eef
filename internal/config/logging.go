package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel selects how much the file logger records.
type LogLevel int

// Log levels in increasing verbosity. Error-level lines are written unless
// logging is off; debug adds request and cache traces.
const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelDebug
)

// logTimeFormat timestamps log lines with millisecond precision.
const logTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ParseLogLevel reads a level name from configuration. Unknown names fall
// back to error so a typo never silences the log.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none", "false":
		return LogLevelOff
	case "debug", "trace":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

// String returns the configuration name of the level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelDebug:
		return "debug"
	case LogLevelError:
		return "error"
	default:
		return "error"
	}
}

// Logger appends timestamped lines to a log file. The zero-value-like
// logger returned by NullLogger has no destination and discards everything,
// so callers never nil-check before logging.
type Logger struct {
	mu    sync.Mutex
	level LogLevel
	out   *os.File
}

// NewLogger opens (or creates) the log file at path. A level of off or an
// empty path yields a logger that keeps no file handle open.
func NewLogger(level LogLevel, path string) (*Logger, error) {
	l := &Logger{level: level}
	if level == LogLevelOff || path == "" {
		return l, nil
	}

	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}

	// #nosec G304 -- log file location comes from validated config
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	l.out = f
	return l, nil
}

// NullLogger returns a logger with no destination; every call is a no-op.
func NullLogger() *Logger {
	return &Logger{level: LogLevelOff}
}

// Close releases the log file handle, if one is open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.out == nil {
		return nil
	}
	return l.out.Close()
}

// SetLevel changes the verbosity at runtime.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level reports the current verbosity.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Debug records a debug-level line.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

// Error records an error-level line.
func (l *Logger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}

// Writer adapts the logger to io.Writer for libraries that expect one.
// Each Write becomes one log line at the given level.
func (l *Logger) Writer(level LogLevel) io.Writer {
	return &levelWriter{logger: l, level: level}
}

func (l *Logger) log(level LogLevel, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.out == nil || l.level == LogLevelOff || level > l.level {
		return
	}

	_, _ = fmt.Fprintf(l.out, "%s [%s] %s\n",
		time.Now().Format(logTimeFormat),
		strings.ToUpper(level.String()),
		fmt.Sprintf(format, args...))
}

// levelWriter pins an io.Writer to one log level.
type levelWriter struct {
	logger *Logger
	level  LogLevel
}

func (w *levelWriter) Write(p []byte) (int, error) {
	w.logger.log(w.level, "%s", strings.TrimSpace(string(p)))
	return len(p), nil
}
