// internal/output/json.go
package output

import (
	"io"

	"deuter/internal/jsonutil"
	"deuter/pkg/api"
)

// WriteJSON writes a single result as pretty-indented v1 JSON.
func WriteJSON(w io.Writer, r api.ResultV1) error {
	return jsonutil.EncodePretty(w, r)
}

// WriteJSONList writes a JSON array of v1 results (batch output).
func WriteJSONList(w io.Writer, list []api.ResultV1) error {
	return jsonutil.EncodePretty(w, list)
}
