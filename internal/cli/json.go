package cli

import (
	"encoding/json"
	"io"
)

// writeJSON renders v as two-space indented JSON with a trailing newline,
// the shape every `-o json` command emits. HTML escaping is disabled so
// node URLs stay readable in pipelines.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
