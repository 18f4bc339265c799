// internal/scraper/images_test.go
package scraper

import (
	"encoding/json"
	"testing"
)

func TestImageTypeFromURL(t *testing.T) {
	tests := map[string]string{
		"https://example.com/a.png":          "png",
		"https://example.com/a.JPG?w=100":    "JPG",
		"https://example.com/photo.foo":      "foo",
		"https://example.com/a.webp?x=1&y=2": "webp",
	}
	for in, want := range tests {
		if got := ImageTypeFromURL(in); got != want {
			t.Errorf("Expected ImageTypeFromURL(%q) = %q, got %q", in, want, got)
		}
	}
	if IsImageTypeValid("JPG") || !IsImageTypeValid("jpg") || IsImageTypeValid("foo") {
		t.Fatal("Expected case-sensitive validity over the known list")
	}
}

func TestDetectImageFormat(t *testing.T) {
	if got := DetectImageFormat("https://example.com/x", "image/webp"); got != "webp" {
		t.Fatalf("Expected webp from content type, got %q", got)
	}
	if got := DetectImageFormat("https://example.com/A.PNG", ""); got != "png" {
		t.Fatalf("Expected png from url, got %q", got)
	}
	if got := DetectImageFormat("https://example.com/x", ""); got != "" {
		t.Fatalf("Expected no format, got %q", got)
	}
}

func TestParseSrcSet(t *testing.T) {
	entries := ParseSrcSet("large.jpg 1200w, small.jpg 400w, bad, retina.jpg 2x")
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].URL != "retina.jpg" || entries[1].URL != "small.jpg" || entries[2].Width != 1200 {
		t.Fatalf("Expected ascending width order, got %+v", entries)
	}
}

func TestExtractAllImages(t *testing.T) {
	html := `<html><head>
		<meta property="og:image" content="https://example.com/og.jpg">
		<meta name="twitter:image" content="https://example.com/inline.png">
	</head><body>
		<img src="https://example.com/inline.png" width="800" height="400" alt="Inline" loading="lazy">
		<picture>
			<source type="image/avif" srcset="https://example.com/p.avif 1x">
			<img src="https://example.com/p.jpg">
		</picture>
		<img src="bad url.png">
	</body></html>`

	images := ExtractAllImages(NewHTMLParser([]byte(html)).Document())
	if len(images) != 3 {
		t.Fatalf("Expected 3 images, got %d: %+v", len(images), images)
	}

	inline := images[0]
	if inline.Type != "png" || !inline.IsLazyLoaded || inline.AspectRatio != 2 {
		t.Fatalf("Expected lazy png with aspect ratio 2, got %+v", inline)
	}
	if images[1].Type != "avif" || images[1].URL != "https://example.com/p.avif" {
		t.Fatalf("Expected picture avif source override, got %+v", images[1])
	}
	if images[2].URL != "https://example.com/og.jpg" || images[2].Type != "jpg" {
		t.Fatalf("Expected og image appended once, got %+v", images[2])
	}
}

func TestSelectBestImage(t *testing.T) {
	if SelectBestImage(nil) != nil {
		t.Fatal("Expected nil for no candidates")
	}

	images := []ImageCandidate{
		{URL: "a", Type: "jpg", Width: "1200", Height: "630"},
		{URL: "b", Type: "avif", Width: "1200", Height: "630", Alt: "b"},
		{URL: "c", Type: "avif", Width: "1200", Height: "630", Alt: "c"},
		{URL: "d", Type: "png", Width: "100", Height: "100"},
	}
	best := SelectBestImage(images)
	if best.URL != "b" {
		t.Fatalf("Expected first highest scorer 'b', got %q", best.URL)
	}

	if got := imageScore(images[0]); got != 30 {
		t.Fatalf("Expected 1200x630 jpg to score 30, got %d", got)
	}
}

func TestImageCandidate_JSONKeys(t *testing.T) {
	data, err := json.Marshal(ExtractionResult{BestImage: &ImageCandidate{
		URL:          "https://example.com/a.png",
		IsLazyLoaded: true,
		IsResponsive: true,
		AspectRatio:  1.5,
	}})
	if err != nil {
		t.Fatalf("Failed to marshal result: %v", err)
	}

	var decoded struct {
		BestImage map[string]interface{} `json:"best_image"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	for _, key := range []string{"url", "is_lazy_loaded", "is_responsive", "aspect_ratio"} {
		if _, ok := decoded.BestImage[key]; !ok {
			t.Errorf("Expected key %s in best_image, got %v", key, decoded.BestImage)
		}
	}
}
