// Package contracts defines the interface contracts for Lumen MVP.
// These are design artifacts - not compiled code.
// Actual implementations go in internal/output/

package contracts

import (
	"io"
)

// OutputFormat represents supported output formats.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatAuto OutputFormat = "auto"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	// Format returns the resolved output format (never auto).
	Format() OutputFormat

	// FormatFeed renders grouped feed entries: date separator rows between
	// item rows, newest first.
	FormatFeed(entries []FeedEntry) string

	// FormatItemDetail renders one item's full detail view.
	FormatItemDetail(item *Item) string

	// FormatAmount renders a signed satoshi amount with digit grouping,
	// e.g. "-45,000 sat".
	FormatAmount(sats int64) string

	// FormatCountdown renders the time remaining until an invoice expires,
	// e.g. "expires in 1h 0m".
	FormatCountdown(secondsLeft int64) string

	// FormatError formats an error with its suggestion for display.
	// For text: multi-line with details and suggestion.
	// For JSON: structured error object.
	FormatError(err error) string
}

// FormatterFactory creates formatters based on output preferences.
type FormatterFactory interface {
	// Create returns a formatter for the given format and output writer.
	Create(format OutputFormat, w io.Writer) Formatter

	// DetectFormat determines the appropriate format based on context.
	// Returns JSON for non-TTY, text for TTY, unless explicitly overridden.
	DetectFormat(w io.Writer, explicit OutputFormat) OutputFormat
}

// TableConfig defines table rendering options.
type TableConfig struct {
	// Headers are the column names.
	Headers []string

	// Rows are the data rows.
	Rows [][]string

	// Sections are optional separator titles keyed by row index; a section
	// line is printed before the row at that index. Used for date groups.
	Sections map[int]string

	// NoHeader suppresses the header row.
	NoHeader bool
}

// TableRenderer renders tabular data for text output.
type TableRenderer interface {
	// Render renders a table to the writer.
	Render(w io.Writer, config TableConfig) error
}

// QRRenderer renders payment requests as terminal QR codes.
type QRRenderer interface {
	// Render writes an ANSI QR code for the payload. It is a no-op when
	// the writer is not a terminal.
	Render(w io.Writer, payload string) error
}

// ErrorFormatter formats errors with context and suggestions.
type ErrorFormatter interface {
	// Format formats an error for display.
	Format(err error) string

	// WithDetails adds details to an error.
	WithDetails(err error, details map[string]string) error

	// WithSuggestion adds an actionable suggestion to an error.
	WithSuggestion(err error, suggestion string) error
}
