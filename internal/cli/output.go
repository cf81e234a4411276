package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/ephemera/internal/lifecycle"
)

// resultJSON is the wire shape for --format json. Exactly one of value and
// error is present, mirroring the tagged result union.
type resultJSON struct {
	Operation   string   `json:"operation"`
	Value       *float64 `json:"value,omitempty"`
	Error       string   `json:"error,omitempty"`
	CompletedAt string   `json:"completed_at"`
}

// renderResult writes one calculation result in the selected format.
func renderResult(w io.Writer, format string, res lifecycle.Result) error {
	switch format {
	case "json":
		out := resultJSON{
			Operation:   res.Operation,
			CompletedAt: res.CompletedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		}
		if res.OK() {
			v := res.Value
			out.Value = &v
		} else {
			out.Error = res.Err
		}
		enc := json.NewEncoder(w)
		return enc.Encode(out)
	default:
		p := message.NewPrinter(language.English)
		if res.OK() {
			_, err := p.Fprintf(w, "%s = %v\n", res.Operation, res.Value)
			return err
		}
		_, err := fmt.Fprintf(w, "%s: error: %s\n", res.Operation, res.Err)
		return err
	}
}

// renderResults writes a result list, one line per task in text mode and a
// JSON array otherwise.
func renderResults(w io.Writer, format string, results []lifecycle.Result) error {
	if format == "json" {
		out := make([]resultJSON, 0, len(results))
		for _, res := range results {
			rj := resultJSON{
				Operation:   res.Operation,
				CompletedAt: res.CompletedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
			}
			if res.OK() {
				v := res.Value
				rj.Value = &v
			} else {
				rj.Error = res.Err
			}
			out = append(out, rj)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, res := range results {
		if err := renderResult(w, format, res); err != nil {
			return err
		}
	}
	return nil
}
