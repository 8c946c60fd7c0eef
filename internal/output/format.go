// Package output renders Lumen's terminal output: the activity feed table,
// amount and countdown strings, QR codes, and the text/JSON error surfaces.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format names an output mode. Auto resolves to text on a TTY and JSON
// everywhere else, so scripts get parseable output without extra flags.
type Format string

// Recognized output modes.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// ParseFormat reads a format name from flags or configuration. Anything
// unrecognized becomes Auto rather than an error.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatAuto
	}
}

// DetectFormat resolves Auto against the writer: text when w is a terminal,
// JSON when piped. Explicit choices pass through untouched.
func DetectFormat(w io.Writer, explicit Format) Format {
	if explicit != FormatAuto {
		return explicit
	}
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		return FormatText
	}
	return FormatJSON
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: Fd fits in int on supported platforms
}

// Formatter carries the resolved format and destination writer through a
// command's execution.
type Formatter struct {
	format Format
	writer io.Writer
}

// NewFormatter binds a resolved format to a writer.
func NewFormatter(format Format, w io.Writer) *Formatter {
	return &Formatter{format: format, writer: w}
}

// Format returns the resolved output format.
func (f *Formatter) Format() Format {
	return f.format
}

// Writer returns the destination writer.
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// IsJSON reports whether output goes out as JSON.
func (f *Formatter) IsJSON() bool {
	return f.format == FormatJSON
}

// Print renders v in the resolved format: indented JSON, or a line of text
// using v's String method when it has one.
func (f *Formatter) Print(v any) error {
	if f.IsJSON() {
		enc := json.NewEncoder(f.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	switch val := v.(type) {
	case string:
		_, err := fmt.Fprintln(f.writer, val)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.writer, val.String())
		return err
	default:
		_, err := fmt.Fprintf(f.writer, "%v\n", val)
		return err
	}
}

// Printf writes printf-style text regardless of format.
func (f *Formatter) Printf(format string, args ...any) error {
	_, err := fmt.Fprintf(f.writer, format, args...)
	return err
}

// Println writes its arguments as one line regardless of format.
func (f *Formatter) Println(args ...any) error {
	_, err := fmt.Fprintln(f.writer, args...)
	return err
}
