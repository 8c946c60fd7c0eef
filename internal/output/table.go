package output

import (
	"fmt"
	"io"
	"strings"
)

// Table lays out text columns for terminal output. Data rows may be
// interleaved with section rows, the full-width labels the activity feed
// uses as date separators.
type Table struct {
	headers   []string
	rows      []tableRow
	noHeader  bool
	separator string
}

// tableRow is either a data row (cells) or a section label, never both.
type tableRow struct {
	cells   []string
	section string
}

// NewTable creates an empty table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, separator: "  "}
}

// AddRow appends a data row.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, tableRow{cells: cells})
}

// AddSection appends a full-width section label.
func (t *Table) AddSection(label string) {
	t.rows = append(t.rows, tableRow{section: label})
}

// SetNoHeader suppresses the header and rule lines.
func (t *Table) SetNoHeader(noHeader bool) {
	t.noHeader = noHeader
}

// SetSeparator overrides the default two-space column separator.
func (t *Table) SetSeparator(sep string) {
	t.separator = sep
}

// String lays out the whole table in memory.
func (t *Table) String() string {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return ""
	}

	widths := t.columnWidths()
	var sb strings.Builder

	if !t.noHeader && len(t.headers) > 0 {
		t.writeCells(&sb, t.headers, widths)
		t.writeRule(&sb, widths)
	}
	for _, row := range t.rows {
		if row.section != "" {
			_, _ = fmt.Fprintf(&sb, "-- %s --\n", row.section)
			continue
		}
		t.writeCells(&sb, row.cells, widths)
	}
	return sb.String()
}

// Render writes the table to w. Layout happens in memory first, so a failed
// write never leaves a half-drawn table on the terminal.
func (t *Table) Render(w io.Writer) error {
	s := t.String()
	if s == "" {
		return nil
	}
	_, err := io.WriteString(w, s)
	return err
}

// columnWidths returns the widest content per column across headers and
// data rows.
func (t *Table) columnWidths() []int {
	widths := measure(nil, t.headers)
	for _, row := range t.rows {
		widths = measure(widths, row.cells)
	}
	return widths
}

// measure grows widths to fit cells, extending it when a row has more
// columns than anything seen before.
func measure(widths []int, cells []string) []int {
	for i, cell := range cells {
		if i == len(widths) {
			widths = append(widths, 0)
		}
		if len(cell) > widths[i] {
			widths[i] = len(cell)
		}
	}
	return widths
}

// writeCells emits one row padded to the column widths, with trailing
// whitespace trimmed.
func (t *Table) writeCells(sb *strings.Builder, cells []string, widths []int) {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = fmt.Sprintf("%-*s", width, cell)
	}
	sb.WriteString(strings.TrimRight(strings.Join(parts, t.separator), " "))
	sb.WriteByte('\n')
}

// writeRule emits the dashed line separating headers from data.
func (t *Table) writeRule(sb *strings.Builder, widths []int) {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("-", width)
	}
	sb.WriteString(strings.Join(parts, t.separator))
	sb.WriteByte('\n')
}
