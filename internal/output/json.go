// internal/output/json.go
package output

import (
	"encoding/json"
	"io"
)

// JSONWriter writes data in JSON format
type JSONWriter struct {
	dest    io.WriteCloser
	encoder *json.Encoder
}

// NewJSONWriter creates a JSON writer. Pretty output is indented by two spaces.
func NewJSONWriter(dest io.WriteCloser, pretty bool) *JSONWriter {
	encoder := json.NewEncoder(dest)
	encoder.SetEscapeHTML(false)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	return &JSONWriter{dest: dest, encoder: encoder}
}

// Write encodes v followed by a newline
func (w *JSONWriter) Write(v interface{}) error {
	return w.encoder.Encode(v)
}

// Close closes the JSON writer
func (w *JSONWriter) Close() error {
	if w.dest != nil {
		err := w.dest.Close()
		w.dest = nil
		return err
	}
	return nil
}

func (w *JSONWriter) GetType() string {
	return string(FormatJSON)
}
