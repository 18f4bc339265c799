// internal/scraper/parser.go
package scraper

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// HTMLParser wraps a parsed document for metadata extraction
type HTMLParser struct {
	document *goquery.Document
	size     int
}

// NewHTMLParser parses UTF-8 HTML. Any input, including an empty one, yields a
// document; html.Parse only fails on reader errors, which a byte slice cannot produce.
func NewHTMLParser(body []byte) *HTMLParser {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		root = &html.Node{Type: html.DocumentNode}
	}
	return &HTMLParser{
		document: goquery.NewDocumentFromNode(root),
		size:     len(body),
	}
}

// NewHTMLParserFromReader reads r to the end, decodes it to UTF-8 using the
// declared content type and in-document hints, and parses the result.
func NewHTMLParserFromReader(r io.Reader, contentType string) (*HTMLParser, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML: %w", err)
	}
	body, err := DecodeHTML(raw, contentType)
	if err != nil {
		return nil, err
	}
	return NewHTMLParser(body), nil
}

// Document returns the underlying goquery document.
func (hp *HTMLParser) Document() *goquery.Document {
	return hp.document
}

// Size returns the byte length of the parsed input.
func (hp *HTMLParser) Size() int {
	return hp.size
}

// Metas returns every meta element in document order.
func (hp *HTMLParser) Metas() *goquery.Selection {
	return hp.document.Find("meta")
}

// Charset reports the charset the document declares, if any.
func (hp *HTMLParser) Charset() string {
	if v, ok := hp.document.Find("meta[charset]").First().Attr("charset"); ok {
		return strings.TrimSpace(v)
	}
	v, _ := hp.document.Find("meta[http-equiv]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		equiv, _ := s.Attr("http-equiv")
		return strings.EqualFold(equiv, "content-type")
	}).First().Attr("content")
	if i := strings.Index(strings.ToLower(v), "charset="); i >= 0 {
		return strings.Trim(strings.TrimSpace(v[i+len("charset="):]), `"';`)
	}
	return ""
}

// DecodeHTML converts body to UTF-8. The charset comes from a BOM, then
// contentType, then a meta declaration; undeclared non-UTF-8 input is read as windows-1252.
func DecodeHTML(body []byte, contentType string) ([]byte, error) {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || enc == nil {
		return body, nil
	}
	// htmlindex resolves labels the sniffer reports into canonical encodings.
	if canonical, err := htmlindex.Get(name); err == nil {
		enc = canonical
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s body: %w", name, err)
	}
	return out, nil
}
