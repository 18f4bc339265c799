// internal/utils/utils.go
package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
)

// NormalizeURL drops the fragment and sorts query parameters so equivalent
// URLs compare equal. Unparseable input is returned unchanged with the error.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, err
	}

	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery != "" {
		values := u.Query()
		for _, v := range values {
			sort.Strings(v)
		}
		// Encode sorts by key
		u.RawQuery = values.Encode()
	}

	return u.String(), nil
}

// ExtractDomain extracts the lowercased host name (without port) from a URL
func ExtractDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return strings.ToLower(u.Hostname()), nil
}

var invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// CleanFileName removes invalid characters from a filename
func CleanFileName(name string) string {
	cleaned := invalidFileChars.ReplaceAllString(name, "_")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, ".")

	if len(cleaned) > 200 {
		cleaned = cleaned[:200]
	}
	if cleaned == "" {
		cleaned = "output"
	}
	return cleaned
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// ParseContentType extracts the media type from a Content-Type header
func ParseContentType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// IsHTMLContent reports whether a Content-Type header denotes an HTML page.
// An empty header is accepted; many servers omit it.
func IsHTMLContent(contentType string) bool {
	switch ParseContentType(contentType) {
	case "", "text/html", "application/xhtml+xml":
		return true
	default:
		return false
	}
}

// GenerateOutputFileName generates a filename based on URL and timestamp
func GenerateOutputFileName(rawURL string, format string) string {
	domain, err := ExtractDomain(rawURL)
	if err != nil || domain == "" {
		domain = "output"
	}
	domain = CleanFileName(domain)
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", domain, timestamp, format)
}
