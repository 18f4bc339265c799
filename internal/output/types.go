// internal/output/types.go
package output

import (
	"path/filepath"
	"strings"
)

// OutputFormat represents supported output formats
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
	FormatCSV  OutputFormat = "csv"
)

// ValidOutputFormats returns every supported format
func ValidOutputFormats() []OutputFormat {
	return []OutputFormat{FormatJSON, FormatYAML, FormatCSV}
}

// ParseFormat normalizes a format name. "yml" is accepted for YAML.
func ParseFormat(s string) OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML
	case "csv":
		return FormatCSV
	case "json":
		return FormatJSON
	default:
		return OutputFormat(strings.ToLower(s))
	}
}

// DetectFormat guesses the format from a file extension, "" when unknown
func DetectFormat(filename string) OutputFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".csv":
		return FormatCSV
	default:
		return ""
	}
}

// IsValid checks if the output format is valid
func (of OutputFormat) IsValid() bool {
	for _, valid := range ValidOutputFormats() {
		if of == valid {
			return true
		}
	}
	return false
}

// GetFileExtension returns the file extension for the format
func (of OutputFormat) GetFileExtension() string {
	switch of {
	case FormatYAML:
		return ".yaml"
	case FormatCSV:
		return ".csv"
	default:
		return ".json"
	}
}

// GetMimeType returns the MIME type for the format
func (of OutputFormat) GetMimeType() string {
	switch of {
	case FormatYAML:
		return "application/yaml"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/json"
	}
}

// Writer encodes results to a destination
type Writer interface {
	// Write encodes one value: a record, a scraping result or a bulk response.
	Write(v interface{}) error
	Close() error
	GetType() string
}
