// internal/output/yaml.go
package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes values as YAML documents. Each Write starts a new
// document, separated by "---".
type YAMLWriter struct {
	dest    io.WriteCloser
	encoder *yaml.Encoder
}

// NewYAMLWriter creates a new YAML writer
func NewYAMLWriter(dest io.WriteCloser, indent int) *YAMLWriter {
	if indent <= 0 {
		indent = 2
	}
	encoder := yaml.NewEncoder(dest)
	encoder.SetIndent(indent)
	return &YAMLWriter{dest: dest, encoder: encoder}
}

// Write encodes v as one YAML document
func (w *YAMLWriter) Write(v interface{}) error {
	if err := w.encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// Close flushes the encoder and closes the destination
func (w *YAMLWriter) Close() error {
	if w.dest == nil {
		return nil
	}
	encErr := w.encoder.Close()
	err := w.dest.Close()
	w.dest = nil
	if encErr != nil {
		return encErr
	}
	return err
}

func (w *YAMLWriter) GetType() string {
	return string(FormatYAML)
}
