// internal/output/manager.go
package output

import (
	"io"
	"os"
	"path/filepath"

	"github.com/valpere/OGScrapexter/internal/config"
	"github.com/valpere/OGScrapexter/internal/utils"
)

// Manager creates writers for the configured format and destination
type Manager struct {
	format OutputFormat
	file   string
	pretty bool
	stdout io.Writer
}

// NewManager creates a new output manager. An empty format is detected from
// the file extension and falls back to JSON.
func NewManager(cfg config.OutputConfig) (*Manager, error) {
	format := ParseFormat(cfg.Format)
	if cfg.Format == "" {
		format = DetectFormat(cfg.File)
		if format == "" {
			format = FormatJSON
		}
	}
	if !format.IsValid() {
		return nil, utils.NewError(utils.ErrCodeInvalidConfig, "unsupported output format").
			WithContext("format", cfg.Format).Build()
	}

	return &Manager{
		format: format,
		file:   cfg.File,
		pretty: cfg.Pretty,
		stdout: os.Stdout,
	}, nil
}

// SetStdout redirects output written when no file is configured
func (m *Manager) SetStdout(w io.Writer) {
	m.stdout = w
}

// Format returns the resolved output format
func (m *Manager) Format() OutputFormat {
	return m.format
}

// GetWriter returns a writer for the configured format
func (m *Manager) GetWriter() (Writer, error) {
	dest, err := m.open()
	if err != nil {
		return nil, err
	}

	switch m.format {
	case FormatYAML:
		return NewYAMLWriter(dest, 2), nil
	case FormatCSV:
		return NewCSVWriter(dest), nil
	default:
		return NewJSONWriter(dest, m.pretty), nil
	}
}

// Write writes one value using the configured format
func (m *Manager) Write(v interface{}) error {
	writer, err := m.GetWriter()
	if err != nil {
		return err
	}

	if err := writer.Write(v); err != nil {
		writer.Close()
		return utils.WrapError(err, utils.ErrCodeOutputFailed, "failed to write output")
	}
	if err := writer.Close(); err != nil {
		return utils.WrapError(err, utils.ErrCodeOutputFailed, "failed to close output")
	}
	return nil
}

// open returns the configured file, or stdout for "" and "-"
func (m *Manager) open() (io.WriteCloser, error) {
	if m.file == "" || m.file == "-" {
		return nopCloser{m.stdout}, nil
	}

	if dir := filepath.Dir(m.file); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, utils.WrapError(err, utils.ErrCodeOutputFailed, "failed to create output directory")
		}
	}
	f, err := os.Create(m.file)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeOutputFailed, "failed to create output file")
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
