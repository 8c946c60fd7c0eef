package output

import (
	"fmt"
	"io"
	"os"
)

// Status-line prefixes. Informational lines go to stdout; anything the user
// should still see when stdout is piped goes to stderr.
const (
	prefixInfo    = "ℹ️  "
	prefixWarn    = "⚠️  "
	prefixSuccess = "✅ "
	prefixNotice  = "🔔 "
)

func emit(w io.Writer, prefix, msg string) {
	_, _ = fmt.Fprintln(w, prefix+msg)
}

// Info prints an informational line to stdout.
func Info(msg string) {
	emit(os.Stdout, prefixInfo, msg)
}

// Infof prints a formatted informational line to stdout.
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Warn prints a warning line to stderr.
func Warn(msg string) {
	emit(os.Stderr, prefixWarn, msg)
}

// Warnf prints a formatted warning line to stderr.
func Warnf(format string, args ...any) {
	Warn(fmt.Sprintf(format, args...))
}

// Success prints a success line to stdout.
func Success(msg string) {
	emit(os.Stdout, prefixSuccess, msg)
}

// Successf prints a formatted success line to stdout.
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

// Notice prints a non-fatal notification to stderr, such as a stale-cache
// hint next to otherwise successful output.
func Notice(msg string) {
	emit(os.Stderr, prefixNotice, msg)
}

// Noticef prints a formatted non-fatal notification to stderr.
func Noticef(format string, args ...any) {
	Notice(fmt.Sprintf(format, args...))
}
