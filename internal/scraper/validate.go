// internal/scraper/validate.go
package scraper

import "fmt"

// Severity levels for validation issues.
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// ValidationIssue is one problem found in an extracted record.
type ValidationIssue struct {
	Code       string `json:"code" yaml:"code"`
	Message    string `json:"message" yaml:"message"`
	Severity   string `json:"severity,omitempty" yaml:"severity,omitempty"`
	Field      string `json:"field,omitempty" yaml:"field,omitempty"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// ValidationResult summarises how well a record supports social previews.
type ValidationResult struct {
	Valid           bool              `json:"valid" yaml:"valid"`
	Errors          []ValidationIssue `json:"errors" yaml:"errors"`
	Warnings        []ValidationIssue `json:"warnings" yaml:"warnings"`
	Score           int               `json:"score" yaml:"score"`
	Recommendations []string          `json:"recommendations" yaml:"recommendations"`
}

var validOGTypes = map[string]bool{
	"article": true, "book": true, "books.author": true, "books.book": true, "books.genre": true,
	"business.business": true, "fitness.course": true, "music.album": true, "music.playlist": true,
	"music.radio_station": true, "music.song": true, "place": true, "product": true,
	"product.group": true, "product.item": true, "profile": true, "restaurant.menu": true,
	"restaurant.menu_item": true, "restaurant.menu_section": true, "restaurant.restaurant": true,
	"video.episode": true, "video.movie": true, "video.other": true, "video.tv_show": true,
	"website": true,
}

var validTwitterCards = map[string]bool{
	"summary": true, "summary_large_image": true, "app": true, "player": true,
}

// ValidateRecord checks Open Graph and Twitter Card completeness.
func ValidateRecord(record Record) *ValidationResult {
	v := &validator{record: record}
	v.openGraph()
	v.twitter()

	return &ValidationResult{
		Valid:           len(v.errors) == 0,
		Errors:          v.errors,
		Warnings:        v.warnings,
		Score:           validationScore(v.errors, v.warnings),
		Recommendations: v.recommendations,
	}
}

type validator struct {
	record          Record
	errors          []ValidationIssue
	warnings        []ValidationIssue
	recommendations []string
}

func (v *validator) addError(code, severity, field, message, suggestion string) {
	v.errors = append(v.errors, ValidationIssue{Code: code, Message: message, Severity: severity, Field: field, Suggestion: suggestion})
}

func (v *validator) addWarning(code, field, message, suggestion string) {
	v.warnings = append(v.warnings, ValidationIssue{Code: code, Message: message, Severity: SeverityWarning, Field: field, Suggestion: suggestion})
}

func (v *validator) openGraph() {
	r := v.record
	required := []struct{ field, property, code, example string }{
		{FieldOGTitle, "og:title", "OG_MISSING_TITLE", "Your Title"},
		{FieldOGType, "og:type", "OG_MISSING_TYPE", "website"},
		{FieldOGImage, "og:image", "OG_MISSING_IMAGE", "https://example.com/image.jpg"},
		{FieldOGURL, "og:url", "OG_MISSING_URL", "https://example.com/page"},
	}
	for _, req := range required {
		if !r.IsSet(req.field) {
			v.addError(req.code, SeverityCritical, req.field,
				"Missing required property: "+req.property,
				fmt.Sprintf("Add <meta property='%s' content='%s'>", req.property, req.example))
		}
	}

	if !r.IsSet(FieldOGDescription) {
		v.addWarning("OG_MISSING_DESCRIPTION", FieldOGDescription,
			"Missing recommended property: og:description", "Add <meta property='og:description' content='Page description'>")
	}
	if !r.IsSet(FieldOGSiteName) {
		v.addWarning("OG_MISSING_SITE_NAME", FieldOGSiteName,
			"Missing recommended property: og:site_name", "Add <meta property='og:site_name' content='Your Site Name'>")
	}
	if t := r.String(FieldOGType); t != "" && !validOGTypes[t] {
		v.addWarning("OG_INVALID_TYPE", FieldOGType,
			"Invalid og:type value: "+t, "Use a valid og:type value like 'website', 'article', 'video', etc.")
	}

	for _, item := range r[FieldOGImage].MediaList() {
		w, h, ok := dimensions(item)
		if !ok {
			v.addWarning("OG_IMAGE_MISSING_DIMENSIONS", FieldOGImage,
				"Image missing width or height dimensions", "Add og:image:width and og:image:height meta tags")
			continue
		}
		if w < 200 || h < 200 {
			v.addWarning("OG_IMAGE_TOO_SMALL", FieldOGImage,
				fmt.Sprintf("Image dimensions too small: %dx%d. Minimum recommended: 200x200", w, h), "")
		}
		if w > 5000 || h > 5000 {
			v.addWarning("OG_IMAGE_TOO_LARGE", FieldOGImage,
				fmt.Sprintf("Image dimensions too large: %dx%d. Maximum recommended: 5000x5000", w, h), "")
		}
	}

	if !r.IsSet(FieldTwitterCard) {
		v.recommendations = append(v.recommendations, "Add Twitter Card meta tags for better Twitter sharing")
	}
	if !r.IsSet(FieldFavicon) {
		v.recommendations = append(v.recommendations, "Add a favicon for better branding")
	}
	if !r.IsSet(FieldOGLocale) {
		v.recommendations = append(v.recommendations, "Add og:locale for language specification")
	}
	if r.String(FieldOGType) == "article" && !r.IsSet(FieldArticlePublishedTime) {
		v.recommendations = append(v.recommendations, "Add article:published_time for article pages")
	}
}

func (v *validator) twitter() {
	r := v.record
	card := r.String(FieldTwitterCard)
	switch {
	case card == "":
		v.addWarning("TWITTER_MISSING_CARD", FieldTwitterCard,
			"Missing Twitter Card type", "Add <meta name='twitter:card' content='summary_large_image'>")
	case !validTwitterCards[card]:
		v.addError("TWITTER_INVALID_CARD_TYPE", SeverityError, FieldTwitterCard,
			"Invalid Twitter Card type: "+card, "Use a valid type: summary, summary_large_image, app, or player")
	}

	if !r.IsSet(FieldTwitterTitle) && !r.IsSet(FieldOGTitle) {
		v.addWarning("TWITTER_MISSING_TITLE", FieldTwitterTitle, "Missing Twitter title (no twitter:title or og:title)", "")
	}
	if !r.IsSet(FieldTwitterDescription) && !r.IsSet(FieldOGDescription) {
		v.addWarning("TWITTER_MISSING_DESCRIPTION", FieldTwitterDescription, "Missing Twitter description (no twitter:description or og:description)", "")
	}
	if !r.IsSet(FieldTwitterImage) && !r.IsSet(FieldOGImage) {
		v.addWarning("TWITTER_MISSING_IMAGE", FieldTwitterImage, "Missing Twitter image (no twitter:image or og:image)", "")
	}

	if card == "summary_large_image" {
		images := r[FieldTwitterImage].MediaList()
		if images == nil {
			images = r[FieldOGImage].MediaList()
		}
		for _, item := range images {
			if w, h, ok := dimensions(item); ok && (w < 300 || h < 157) {
				v.addWarning("TWITTER_IMAGE_TOO_SMALL", FieldTwitterImage,
					fmt.Sprintf("Image too small for summary_large_image card. Minimum: 300x157, Current: %dx%d", w, h), "")
			}
		}
	}

	if card == "player" {
		player := r[FieldTwitterPlayer].Media()
		if player == nil || player.MediaURL() == "" {
			v.addError("TWITTER_PLAYER_MISSING_URL", SeverityError, FieldTwitterPlayer, "Player card requires twitter:player URL", "")
		}
		if _, _, ok := dimensions(player); !ok {
			v.addWarning("TWITTER_PLAYER_MISSING_DIMENSIONS", FieldTwitterPlayer, "Player card should include width and height", "")
		}
	}
}

// dimensions returns the parsed width and height of a visual media item.
// ok is false when either is missing.
func dimensions(item MediaItem) (int, int, bool) {
	b, isBoxed := item.(boxed)
	if item == nil || !isBoxed {
		return 0, 0, false
	}
	_, w, h := b.box()
	if deref(w) == "" || deref(h) == "" {
		return 0, 0, false
	}
	return leadingInt(*w), leadingInt(*h), true
}

// validationScore starts at 100 and deducts 20 per critical error, 10 per
// error, 5 per other error and 3 per warning, clamped to [0, 100].
func validationScore(errors, warnings []ValidationIssue) int {
	score := 100
	for _, e := range errors {
		switch e.Severity {
		case SeverityCritical:
			score -= 20
		case SeverityError:
			score -= 10
		default:
			score -= 5
		}
	}
	score -= 3 * len(warnings)
	return max(0, min(100, score))
}
