package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	lumenerr "github.com/lumenwallet/lumen/pkg/errors"
)

// ErrorOutput is the envelope for machine-readable errors. Scripts match on
// error.code, so the schema is stable.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries one rendered error.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// errorDetail flattens err into an ErrorDetail. Errors that are not
// LumenErrors get the generic code and exit status.
func errorDetail(err error) ErrorDetail {
	var le *lumenerr.LumenError
	if errors.As(err, &le) {
		return ErrorDetail{
			Code:       le.Code,
			Message:    le.Message,
			Details:    le.Details,
			Suggestion: le.Suggestion,
			ExitCode:   le.ExitCode,
		}
	}
	return ErrorDetail{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		ExitCode: lumenerr.ExitGeneral,
	}
}

// FormatError renders err on w in the given format. A nil err renders
// nothing.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	detail := errorDetail(err)
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ErrorOutput{Error: detail})
	}
	return writeTextError(w, detail)
}

// writeTextError prints the human-readable error layout: the message, then
// any details sorted by key, then the suggestion.
func writeTextError(w io.Writer, detail ErrorDetail) error {
	if _, err := fmt.Fprintf(w, "Error: %s\n", detail.Message); err != nil {
		return err
	}

	if len(detail.Details) > 0 {
		if _, err := fmt.Fprint(w, "\nDetails:\n"); err != nil {
			return err
		}
		keys := make([]string, 0, len(detail.Details))
		for k := range detail.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", k, detail.Details[k]); err != nil {
				return err
			}
		}
	}

	if detail.Suggestion != "" {
		if _, err := fmt.Fprintf(w, "\nSuggestion: %s\n", detail.Suggestion); err != nil {
			return err
		}
	}
	return nil
}

// FormatSuccess renders a success message: a status object in JSON mode, the
// bare message otherwise.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{"status": "success", "message": message})
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
