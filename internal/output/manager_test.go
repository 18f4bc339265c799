// internal/output/manager_test.go
package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valpere/OGScrapexter/internal/config"
	"github.com/valpere/OGScrapexter/internal/utils"
)

func TestManager_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.yml")
	manager, err := NewManager(config.OutputConfig{File: path})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if manager.Format() != FormatYAML {
		t.Fatalf("Expected format detected from extension, got %s", manager.Format())
	}

	if err := manager.Write(sampleRecord()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}
	if !strings.Contains(string(data), "ogTitle:") {
		t.Fatalf("Expected YAML record, got %s", data)
	}
}

func TestManager_Stdout(t *testing.T) {
	manager, err := NewManager(config.OutputConfig{Format: "json", File: "-"})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	var buf bytes.Buffer
	manager.SetStdout(&buf)

	if err := manager.Write(map[string]string{"k": "v"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.String() != "{\"k\":\"v\"}\n" {
		t.Fatalf("Expected JSON on stdout, got %q", buf.String())
	}
}

func TestManager_Errors(t *testing.T) {
	if _, err := NewManager(config.OutputConfig{Format: "xml"}); utils.CodeOf(err) != utils.ErrCodeInvalidConfig {
		t.Fatalf("Expected INVALID_CONFIG, got %v", err)
	}

	manager, _ := NewManager(config.OutputConfig{Format: "csv"})
	manager.SetStdout(&bytes.Buffer{})
	if err := manager.Write(3.14); utils.CodeOf(err) != utils.ErrCodeOutputFailed {
		t.Fatalf("Expected OUTPUT_FAILED, got %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]OutputFormat{
		"a.json": FormatJSON,
		"b.YAML": FormatYAML,
		"c.csv":  FormatCSV,
		"d.txt":  "",
	}
	for name, want := range tests {
		if got := DetectFormat(name); got != want {
			t.Errorf("Expected %q for %s, got %q", want, name, got)
		}
	}
	if FormatCSV.GetMimeType() != "text/csv" || FormatYAML.GetFileExtension() != ".yaml" {
		t.Error("Unexpected format metadata")
	}
}
