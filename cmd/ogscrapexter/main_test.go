// cmd/ogscrapexter/main_test.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/valpere/OGScrapexter/internal/utils"
)

const testPage = `<html><head>
<title>Fallback Title</title>
<meta property="og:title" content="Test Page">
<meta property="og:type" content="article">
<meta property="og:image" content="https://example.com/a.png">
<meta name="custom:rating" content="5">
</head><body></body></html>`

func newTestCLI(stdin string) (*cli, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &cli{stdin: strings.NewReader(stdin), stdout: stdout, stderr: stderr}, stdout, stderr
}

func TestCLIVersion(t *testing.T) {
	version = "test-version"
	buildTime = "2026-01-02"
	gitCommit = "abc123"

	c, stdout, _ := newTestCLI("")
	if code := run(context.Background(), []string{"version"}, c); code != exitOK {
		t.Fatalf("Expected exit code 0, got %d", code)
	}

	output := stdout.String()
	for _, want := range []string{"test-version", "2026-01-02", "abc123"} {
		if !strings.Contains(output, want) {
			t.Errorf("version output should contain %q, got: %s", want, output)
		}
	}
}

func TestCLIHelp(t *testing.T) {
	c, stdout, _ := newTestCLI("")
	if code := run(context.Background(), []string{"help"}, c); code != exitOK {
		t.Fatalf("Expected exit code 0, got %d", code)
	}

	commands := []string{"extract", "fetch", "bulk", "validate", "template", "version", "help"}
	for _, cmd := range commands {
		if !strings.Contains(stdout.String(), cmd) {
			t.Errorf("help output should contain command %q, got: %s", cmd, stdout.String())
		}
	}
}

func TestCLIUnknownCommand(t *testing.T) {
	c, _, stderr := newTestCLI("")
	if code := run(context.Background(), []string{"frobnicate"}, c); code != exitGeneral {
		t.Fatalf("Expected exit code %d, got %d", exitGeneral, code)
	}
	if !strings.Contains(stderr.String(), "unknown command 'frobnicate'") {
		t.Errorf("Expected unknown command message, got: %s", stderr.String())
	}
}

func TestCLIExtractFromStdin(t *testing.T) {
	c, stdout, stderr := newTestCLI(testPage)
	code := run(context.Background(), []string{"extract", "-", "-tag", "custom:rating=rating"}, c)
	if code != exitOK {
		t.Fatalf("Expected exit code 0, got %d: %s", code, stderr.String())
	}

	var record map[string]interface{}
	if err := json.Unmarshal(stdout.Bytes(), &record); err != nil {
		t.Fatalf("Expected JSON output, got error %v: %s", err, stdout.String())
	}
	if record["ogTitle"] != "Test Page" {
		t.Errorf("Expected ogTitle 'Test Page', got %v", record["ogTitle"])
	}
	if record["rating"] != "5" {
		t.Errorf("Expected custom field rating '5', got %v", record["rating"])
	}
}

func TestCLIExtractYAMLToFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "page.html")
	if err := os.WriteFile(input, []byte(testPage), 0644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}
	outFile := filepath.Join(dir, "out", "page.yaml")

	c, _, stderr := newTestCLI("")
	if code := run(context.Background(), []string{"extract", "-o", outFile, input}, c); code != exitOK {
		t.Fatalf("Expected exit code 0, got %d: %s", code, stderr.String())
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("Expected output file, got error: %v", err)
	}
	var record map[string]interface{}
	if err := yaml.Unmarshal(data, &record); err != nil {
		t.Fatalf("Expected YAML output, got error %v", err)
	}
	if record["ogType"] != "article" {
		t.Errorf("Expected ogType 'article', got %v", record["ogType"])
	}
}

func TestCLIExtractMissingFile(t *testing.T) {
	c, _, stderr := newTestCLI("")
	code := run(context.Background(), []string{"extract", filepath.Join(t.TempDir(), "missing.html")}, c)
	if code != exitConfig {
		t.Fatalf("Expected exit code %d, got %d", exitConfig, code)
	}
	if !strings.Contains(stderr.String(), "failed to open input") {
		t.Errorf("Expected open failure in stderr, got: %s", stderr.String())
	}
}

func TestCLIExtractInvalidTag(t *testing.T) {
	c, _, _ := newTestCLI(testPage)
	if code := run(context.Background(), []string{"extract", "-tag", "nofield", "-"}, c); code != exitConfig {
		t.Fatalf("Expected exit code %d, got %d", exitConfig, code)
	}
}

func TestCLIFetchRejectedURL(t *testing.T) {
	c, _, stderr := newTestCLI("")
	code := run(context.Background(), []string{"fetch", "ftp://example.com/file"}, c)
	if code != exitURLRejected {
		t.Fatalf("Expected exit code %d, got %d: %s", exitURLRejected, code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "Code: URL_BLOCKED") {
		t.Errorf("Expected URL_BLOCKED code, got: %s", stderr.String())
	}
}

func TestCLIBulkPartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, testPage)
	}))
	defer server.Close()

	list := strings.Join([]string{
		"# pages",
		server.URL + "/one",
		"",
		"ftp://example.com/two",
		server.URL + "/three",
	}, "\n")

	c, stdout, stderr := newTestCLI(list)
	code := run(context.Background(), []string{"bulk", "-concurrency", "2", "-"}, c)
	if code != exitPartial {
		t.Fatalf("Expected exit code %d, got %d: %s", exitPartial, code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "1 of 3 URLs failed") {
		t.Errorf("Expected failure summary, got: %s", stderr.String())
	}

	var response struct {
		Results []struct {
			URL     string `json:"url"`
			Success bool   `json:"success"`
		} `json:"results"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		t.Fatalf("Expected JSON output, got error %v", err)
	}
	if len(response.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(response.Results))
	}
	if !response.Results[0].Success || response.Results[1].Success || !response.Results[2].Success {
		t.Errorf("Expected success pattern true,false,true, got %+v", response.Results)
	}
}

func TestCLIBulkEmptyList(t *testing.T) {
	c, _, _ := newTestCLI("# nothing here\n\n")
	if code := run(context.Background(), []string{"bulk", "-"}, c); code != exitConfig {
		t.Fatalf("Expected exit code %d, got %d", exitConfig, code)
	}
}

func TestCLITemplateAndValidate(t *testing.T) {
	for _, templateType := range []string{"basic", "bulk", "server"} {
		t.Run(templateType, func(t *testing.T) {
			c, stdout, stderr := newTestCLI("")
			if code := run(context.Background(), []string{"template", "-type", templateType}, c); code != exitOK {
				t.Fatalf("Expected exit code 0, got %d: %s", code, stderr.String())
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, stdout.Bytes(), 0644); err != nil {
				t.Fatalf("Failed to write template: %v", err)
			}

			c, stdout, stderr = newTestCLI("")
			if code := run(context.Background(), []string{"validate", path}, c); code != exitOK {
				t.Fatalf("Expected generated template to validate, got %d: %s", code, stderr.String())
			}
			if !strings.Contains(stdout.String(), "is valid") {
				t.Errorf("Expected validation message, got: %s", stdout.String())
			}
		})
	}
}

func TestCLIValidateInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  type: disk\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	c, _, stderr := newTestCLI("")
	if code := run(context.Background(), []string{"validate", path}, c); code != exitConfig {
		t.Fatalf("Expected exit code %d, got %d", exitConfig, code)
	}
	if !strings.Contains(stderr.String(), "unknown cache type") {
		t.Errorf("Expected cache type problem in output, got: %s", stderr.String())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		code utils.ErrorCode
		want int
	}{
		{utils.ErrCodeInvalidConfig, exitConfig},
		{utils.ErrCodeNetworkTimeout, exitNetwork},
		{utils.ErrCodeHTTPStatus, exitNetwork},
		{utils.ErrCodeContentType, exitContent},
		{utils.ErrCodeBodyTooLarge, exitContent},
		{utils.ErrCodeOutputFailed, exitOutput},
		{utils.ErrCodeURLBlocked, exitURLRejected},
		{utils.ErrCodeInvalidURL, exitURLRejected},
		{utils.ErrCodeInternal, exitGeneral},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := utils.NewError(tt.code, "boom").Build()
			if got := exitCode(err); got != tt.want {
				t.Errorf("Expected exit code %d, got %d", tt.want, got)
			}
		})
	}

	if got := exitCode(nil); got != exitOK {
		t.Errorf("Expected exit code 0 for nil, got %d", got)
	}
}

func TestFormatError(t *testing.T) {
	err := utils.NewError(utils.ErrCodeNetworkTimeout, "dial timeout").WithRetryable(true).Build()

	output := formatError(err, true)
	if !strings.Contains(output, "Code: NETWORK_TIMEOUT") {
		t.Errorf("Expected error code in output, got: %s", output)
	}
	if !strings.Contains(output, "Details: NETWORK_TIMEOUT: dial timeout") {
		t.Errorf("Expected details in verbose output, got: %s", output)
	}
	if !strings.Contains(output, "try again later") {
		t.Errorf("Expected retry hint, got: %s", output)
	}

	plain := formatError(fmt.Errorf("something odd"), false)
	if plain != "Error: something odd\n" {
		t.Errorf("Expected raw message for plain errors, got: %q", plain)
	}
}
