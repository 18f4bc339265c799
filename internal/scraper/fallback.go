// internal/scraper/fallback.go
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// FallbackOptions controls the optional parts of fallback resolution.
type FallbackOptions struct {
	// OGImageFallback scrapes <img> elements when no image tag was found.
	OGImageFallback bool
}

// fallbackStep returns a candidate value, or "" when the step does not apply.
type fallbackStep func(doc *goquery.Document) string

type fallbackChain struct {
	field string
	steps []fallbackStep
}

var fallbackChains = []fallbackChain{
	{
		field: FieldOGTitle,
		steps: []fallbackStep{
			textOf("title"),
			attrOf("meta[name=title]", "content"),
			textOf(".post-title"),
			textOf(".entry-title"),
			func(doc *goquery.Document) string {
				return strings.TrimSpace(titledHeadings(doc).Find("a").First().Text())
			},
			func(doc *goquery.Document) string {
				return strings.TrimSpace(titledHeadings(doc).First().Text())
			},
		},
	},
	{
		field: FieldOGDescription,
		steps: []fallbackStep{
			attrOf("meta[name=description]", "content"),
			attrOf("meta[itemprop=description]", "content"),
			textOf("#description"),
		},
	},
	{
		field: FieldOGLocale,
		steps: []fallbackStep{
			attrOf("html", "lang"),
			attrOf("meta[itemprop=inLanguage]", "content"),
		},
	},
	{
		field: FieldOGLogo,
		steps: []fallbackStep{
			attrOf("meta[itemprop=logo]", "content"),
			attrOf("img[itemprop=logo]", "src"),
		},
	},
	{
		field: FieldOGURL,
		steps: []fallbackStep{
			attrOf("link[rel=canonical]", "href"),
			attrOf(`link[rel=alternate][hreflang=x-default]`, "href"),
		},
	},
	{
		field: FieldOGDate,
		steps: []fallbackStep{
			attrOf("meta[name=date]", "content"),
			itempropAttr("[itemprop]", containsFold("datemodified"), "content"),
			itempropAttr("[itemprop]", equalFold("datepublished"), "content"),
			itempropAttr("[itemprop]", containsFold("date"), "content"),
			itempropAttr("time[itemprop]", containsFold("date"), "datetime"),
			attrOf("time[datetime]", "datetime"),
		},
	},
	{
		field: FieldFavicon,
		steps: []fallbackStep{
			attrOf(`link[rel="shortcut icon"]`, "href"),
			attrOf("link[rel=icon]", "href"),
			attrOf("link[rel=mask-icon]", "href"),
			attrOf("link[rel=apple-touch-icon]", "href"),
			attrOf(`link[type="image/png"]`, "href"),
			attrOf(`link[type="image/ico"]`, "href"),
			attrOf(`link[type="image/x-icon"]`, "href"),
		},
	},
}

var (
	matchImg         = cascadia.MustCompile("img")
	matchAudio       = cascadia.MustCompile("audio")
	matchAudioSource = cascadia.MustCompile("audio > source")
	matchH1WithClass = cascadia.MustCompile("h1[class]")
)

// ApplyFallbacks fills unset fields of record from the document. Fields that
// are already set are never touched. It returns the names of the fields it filled.
func ApplyFallbacks(record Record, doc *goquery.Document, opts FallbackOptions) []string {
	var filled []string

	for _, chain := range fallbackChains {
		if record.IsSet(chain.field) {
			continue
		}
		for _, step := range chain.steps {
			if v := step(doc); v != "" {
				record.SetString(chain.field, v)
				filled = append(filled, chain.field)
				break
			}
		}
	}

	if !record.IsSet(FieldOGImage) {
		if opts.OGImageFallback {
			if images := imagesFromDocument(doc); len(images) > 0 {
				record.Set(FieldOGImage, MediaListValue(images))
				filled = append(filled, FieldOGImage)
			}
		}
	} else if backfillImageTypes(record[FieldOGImage]) {
		filled = append(filled, FieldOGImageType)
	}

	if fillAudio(record, doc) {
		filled = append(filled, "ogAudio")
	}
	return filled
}

// imagesFromDocument turns every usable <img> into an Image record.
func imagesFromDocument(doc *goquery.Document) []MediaItem {
	var images []MediaItem
	doc.FindMatcher(matchImg).Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" || !isImageURLValid(src) {
			return
		}
		t := ImageTypeFromURL(src)
		if !IsImageTypeValid(t) {
			return
		}
		images = append(images, &Image{
			URL:    strPtr(src),
			Width:  attrOrNull(img, "width"),
			Height: attrOrNull(img, "height"),
			Type:   strPtr(t),
		})
	})
	return images
}

// backfillImageTypes derives missing types from image urls. It reports whether any type was set.
func backfillImageTypes(v Value) bool {
	changed := false
	for _, item := range v.MediaList() {
		img, ok := item.(*Image)
		if !ok || deref(img.URL) == "" || deref(img.Type) != "" {
			continue
		}
		if t := ImageTypeFromURL(*img.URL); IsImageTypeValid(t) {
			img.Type = strPtr(t)
			changed = true
		}
	}
	return changed
}

// fillAudio reads <audio src>, then <audio><source src>. https urls go to the
// secure field. It runs only when neither audio url is set.
func fillAudio(record Record, doc *goquery.Document) bool {
	if record.IsSet(FieldOGAudioURL) || record.IsSet(FieldOGAudioSecureURL) {
		return false
	}
	for _, m := range []cascadia.Selector{matchAudio, matchAudioSource} {
		node := doc.FindMatcher(m).First()
		src, _ := node.Attr("src")
		if src == "" {
			continue
		}
		if strings.HasPrefix(src, "https") {
			record.SetString(FieldOGAudioSecureURL, src)
		} else {
			record.SetString(FieldOGAudioURL, src)
		}
		if t, _ := node.Attr("type"); t != "" && !record.IsSet(FieldOGAudioType) {
			record.SetString(FieldOGAudioType, t)
		}
		return true
	}
	return false
}

func textOf(selector string) fallbackStep {
	m := cascadia.MustCompile(selector)
	return func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.FindMatcher(m).First().Text())
	}
}

func attrOf(selector, attr string) fallbackStep {
	m := cascadia.MustCompile(selector)
	return func(doc *goquery.Document) string {
		v, _ := doc.FindMatcher(m).First().Attr(attr)
		return v
	}
}

// itempropAttr reads attr from the first element matching selector whose
// itemprop satisfies match.
func itempropAttr(selector string, match func(string) bool, attr string) fallbackStep {
	m := cascadia.MustCompile(selector)
	return func(doc *goquery.Document) string {
		v, _ := doc.FindMatcher(m).FilterFunction(func(_ int, s *goquery.Selection) bool {
			prop, _ := s.Attr("itemprop")
			return match(prop)
		}).First().Attr(attr)
		return v
	}
}

// titledHeadings returns h1 elements whose class contains "title" in any case.
func titledHeadings(doc *goquery.Document) *goquery.Selection {
	return doc.FindMatcher(matchH1WithClass).FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return strings.Contains(strings.ToLower(class), "title")
	})
}

func containsFold(sub string) func(string) bool {
	return func(s string) bool { return strings.Contains(strings.ToLower(s), sub) }
}

func equalFold(want string) func(string) bool {
	return func(s string) bool { return strings.EqualFold(s, want) }
}

func attrOrNull(s *goquery.Selection, name string) *string {
	v, ok := s.Attr(name)
	if !ok || v == "" {
		return nil
	}
	return &v
}
