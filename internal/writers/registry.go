// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"

	"deuter/internal/output"
	"deuter/pkg/api"
)

// ResultWriters maps an output format name to its encoder. Formats register
// in init so new encodings slot in without touching the apps.
var ResultWriters = map[string]func(w io.Writer, r api.ResultV1, header bool) error{}

func init() {
	ResultWriters["text"] = func(w io.Writer, r api.ResultV1, _ bool) error {
		return output.WriteReport(w, r)
	}
	ResultWriters["tsv"] = output.WriteTSV
	ResultWriters["json"] = func(w io.Writer, r api.ResultV1, _ bool) error {
		return output.WriteJSON(w, r)
	}
}

// Formats lists the registered format names for usage text and validation.
func Formats() []string { return []string{"text", "tsv", "json"} }

// WriteResult dispatches to the registered writer for format.
func WriteResult(format string, w io.Writer, r api.ResultV1, header bool) error {
	fn, ok := ResultWriters[format]
	if !ok {
		return fmt.Errorf("unsupported output %q", format)
	}
	return fn(w, r, header)
}
