// internal/scraper/imagetype.go
package scraper

import (
	"net/url"
	"strings"
)

var validImageTypes = map[string]bool{
	"apng": true, "bmp": true, "gif": true, "ico": true, "cur": true,
	"jpg": true, "jpeg": true, "jfif": true, "pjpeg": true, "pjp": true,
	"png": true, "svg": true, "tif": true, "tiff": true, "webp": true,
}

// ImageTypeFromURL returns the text after the last '.' with any query removed.
// The result is not validated; see IsImageTypeValid.
func ImageTypeFromURL(u string) string {
	ext := u
	if i := strings.LastIndex(u, "."); i >= 0 {
		ext = u[i+1:]
	}
	if i := strings.Index(ext, "?"); i >= 0 {
		ext = ext[:i]
	}
	return ext
}

// IsImageTypeValid reports whether t is a known image extension. Matching is case-sensitive.
func IsImageTypeValid(t string) bool {
	return validImageTypes[t]
}

// isImageURLValid accepts non-empty references without whitespace that parse as URLs.
// Relative references are allowed.
func isImageURLValid(raw string) bool {
	if raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return false
	}
	_, err := url.Parse(raw)
	return err == nil
}
