// internal/scraper/parser_test.go
package scraper

import (
	"strings"
	"testing"
)

func TestNewHTMLParser(t *testing.T) {
	html := `<html><head><meta property="og:title" content="A"><meta name="x" content="y"></head></html>`
	parser := NewHTMLParser([]byte(html))

	if parser.Document() == nil {
		t.Fatal("Expected document")
	}
	if parser.Size() != len(html) {
		t.Fatalf("Expected size %d, got %d", len(html), parser.Size())
	}
	if n := parser.Metas().Length(); n != 2 {
		t.Fatalf("Expected 2 meta nodes, got %d", n)
	}
}

func TestNewHTMLParser_Empty(t *testing.T) {
	parser := NewHTMLParser(nil)
	if parser.Metas().Length() != 0 {
		t.Fatal("Expected no meta nodes in empty input")
	}
}

func TestHTMLParser_Charset(t *testing.T) {
	tests := []struct {
		html string
		want string
	}{
		{`<meta charset="utf-8">`, "utf-8"},
		{`<meta http-equiv="Content-Type" content="text/html; charset=Shift_JIS">`, "Shift_JIS"},
		{`<meta name="x">`, ""},
	}
	for _, tt := range tests {
		if got := NewHTMLParser([]byte("<html><head>" + tt.html + "</head></html>")).Charset(); got != tt.want {
			t.Errorf("Expected charset %q, got %q", tt.want, got)
		}
	}
}

func TestDecodeHTML(t *testing.T) {
	latin1 := []byte("<html><head><meta charset=\"iso-8859-1\"><title>Gr\xfc\xdfe</title></head></html>")
	out, err := DecodeHTML(latin1, "")
	if err != nil {
		t.Fatalf("DecodeHTML failed: %v", err)
	}
	if !strings.Contains(string(out), "Grüße") {
		t.Fatalf("Expected meta charset to drive decoding, got %q", out)
	}

	utf8 := []byte("<title>Grüße</title>")
	out, err = DecodeHTML(utf8, "text/html; charset=utf-8")
	if err != nil || string(out) != string(utf8) {
		t.Fatalf("Expected UTF-8 body untouched, got %q err=%v", out, err)
	}
}

func TestNewHTMLParserFromReader(t *testing.T) {
	body := "<html><head><meta property=\"og:title\" content=\"Caf\xe9\"></head></html>"
	parser, err := NewHTMLParserFromReader(strings.NewReader(body), "text/html; charset=windows-1252")
	if err != nil {
		t.Fatalf("NewHTMLParserFromReader failed: %v", err)
	}
	record := NewExtractionEngine(Options{}, parser).ExtractAll().Data
	if got := record.String(FieldOGTitle); got != "Café" {
		t.Fatalf("Expected 'Café', got %q", got)
	}
}
