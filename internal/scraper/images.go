// internal/scraper/images.go
package scraper

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// imageFormats are checked in order against the lowercased url.
var imageFormats = []string{"jpeg", "jpg", "png", "gif", "webp", "avif", "svg", "bmp", "ico"}

// ImageCandidate describes an image found anywhere in the document.
type ImageCandidate struct {
	URL          string        `json:"url" yaml:"url"`
	Type         string        `json:"type,omitempty" yaml:"type,omitempty"`
	Width        string        `json:"width,omitempty" yaml:"width,omitempty"`
	Height       string        `json:"height,omitempty" yaml:"height,omitempty"`
	Alt          string        `json:"alt,omitempty" yaml:"alt,omitempty"`
	Caption      string        `json:"caption,omitempty" yaml:"caption,omitempty"`
	SrcSet       []SrcSetEntry `json:"srcset,omitempty" yaml:"srcset,omitempty"`
	IsLazyLoaded bool          `json:"is_lazy_loaded,omitempty" yaml:"is_lazy_loaded,omitempty"`
	IsResponsive bool          `json:"is_responsive,omitempty" yaml:"is_responsive,omitempty"`
	AspectRatio  float64       `json:"aspect_ratio,omitempty" yaml:"aspect_ratio,omitempty"`
}

// SrcSetEntry is one candidate of a srcset attribute.
type SrcSetEntry struct {
	URL        string `json:"url" yaml:"url"`
	Width      int    `json:"width" yaml:"width"`
	Descriptor string `json:"descriptor" yaml:"descriptor"`
}

// DetectImageFormat returns the image format from a content type, or from the
// first known extension contained in the url.
func DetectImageFormat(rawURL, contentType string) string {
	if contentType != "" {
		if _, sub, ok := strings.Cut(contentType, "/"); ok {
			sub = strings.ToLower(sub)
			for _, f := range imageFormats {
				if sub == f {
					return f
				}
			}
		}
	}
	lower := strings.ToLower(rawURL)
	for _, f := range imageFormats {
		if strings.Contains(lower, "."+f) {
			return f
		}
	}
	return ""
}

var srcSetPart = regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?[wx])$`)

// ParseSrcSet parses a srcset attribute, ordered by ascending width.
func ParseSrcSet(srcset string) []SrcSetEntry {
	var entries []SrcSetEntry
	for _, part := range strings.Split(srcset, ",") {
		m := srcSetPart.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			continue
		}
		descriptor := m[2]
		entries = append(entries, SrcSetEntry{
			URL:        strings.TrimSpace(m[1]),
			Width:      leadingInt(descriptor[:len(descriptor)-1]),
			Descriptor: descriptor,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Width < entries[j].Width })
	return entries
}

// imageCandidate builds a candidate from an <img> element.
func imageCandidate(img *goquery.Selection) ImageCandidate {
	src, _ := img.Attr("src")
	srcset, hasSrcSet := img.Attr("srcset")
	loading, _ := img.Attr("loading")

	c := ImageCandidate{
		URL:          src,
		Type:         DetectImageFormat(src, ""),
		Alt:          img.AttrOr("alt", ""),
		Caption:      img.AttrOr("title", ""),
		Width:        img.AttrOr("width", ""),
		Height:       img.AttrOr("height", ""),
		IsLazyLoaded: loading == "lazy",
		IsResponsive: hasSrcSet && srcset != "",
	}
	if c.IsResponsive {
		c.SrcSet = ParseSrcSet(srcset)
	}
	if w, h := leadingInt(c.Width), leadingInt(c.Height); w > 0 && h > 0 {
		c.AspectRatio = float64(w) / float64(h)
	}

	// A <picture> offering webp or avif sources overrides the fallback <img>.
	img.Closest("picture").Find("source").Each(func(_ int, source *goquery.Selection) {
		t := source.AttrOr("type", "")
		switch {
		case strings.Contains(t, "webp"):
			c.Type = "webp"
		case strings.Contains(t, "avif"):
			c.Type = "avif"
		default:
			return
		}
		if parsed := ParseSrcSet(source.AttrOr("srcset", "")); len(parsed) > 0 {
			c.URL = parsed[0].URL
			if len(parsed) > 1 {
				c.SrcSet = parsed
			}
		}
	})
	return c
}

// ExtractAllImages lists every <img> with a usable url, then og:image and
// twitter:image urls not already listed.
func ExtractAllImages(doc *goquery.Document) []ImageCandidate {
	var images []ImageCandidate
	seen := make(map[string]bool)

	doc.FindMatcher(matchImg).Each(func(_ int, img *goquery.Selection) {
		c := imageCandidate(img)
		if !isImageURLValid(c.URL) {
			return
		}
		images = append(images, c)
		seen[c.URL] = true
	})

	doc.Find(`meta[property="og:image"], meta[name="twitter:image"]`).Each(func(_ int, meta *goquery.Selection) {
		content := meta.AttrOr("content", "")
		if !isImageURLValid(content) || seen[content] {
			return
		}
		images = append(images, ImageCandidate{URL: content, Type: DetectImageFormat(content, "")})
		seen[content] = true
	})
	return images
}

// SelectBestImage scores candidates for social sharing and returns the
// highest one. Ties keep document order. It never changes ogImage.
func SelectBestImage(images []ImageCandidate) *ImageCandidate {
	if len(images) == 0 {
		return nil
	}
	best, bestScore := 0, math.MinInt
	for i, img := range images {
		if s := imageScore(img); s > bestScore {
			best, bestScore = i, s
		}
	}
	out := images[best]
	return &out
}

func imageScore(img ImageCandidate) int {
	score := 0
	switch img.Type {
	case "webp":
		score += 10
	case "avif":
		score += 15
	}

	if img.Width != "" && img.Height != "" {
		w, h := leadingInt(img.Width), leadingInt(img.Height)
		switch {
		case w == 1200 && h == 630:
			score += 20
		case w >= 1200 && h >= 630:
			score += 15
		case w >= 600 && h >= 315:
			score += 10
		}
		if h > 0 && math.Abs(float64(w)/float64(h)-1.91) < 0.1 {
			score += 10
		}
	}

	if img.Alt != "" {
		score += 5
	}
	if img.IsResponsive {
		score += 5
	}
	if len(img.SrcSet) > 0 {
		score += 5
	}
	return score
}
