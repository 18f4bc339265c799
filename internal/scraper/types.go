// internal/scraper/types.go
package scraper

import (
	"time"
)

// Options controls one extraction call.
type Options struct {
	// CustomMetaTags are appended to the built-in field table.
	CustomMetaTags []MetaTag `yaml:"custom_meta_tags,omitempty" json:"customMetaTags,omitempty"`
	// AllMedia keeps every media record instead of the best one.
	AllMedia bool `yaml:"all_media" json:"allMedia,omitempty"`
	// OnlyGetOpenGraphInfo skips fallback resolution.
	OnlyGetOpenGraphInfo bool `yaml:"only_open_graph" json:"onlyGetOpenGraphInfo,omitempty"`
	// OGImageFallback scrapes <img> elements when no image tag exists.
	OGImageFallback bool `yaml:"og_image_fallback" json:"ogImageFallback,omitempty"`
	// SelectBestImage fills ExtractionResult.BestImage.
	SelectBestImage bool `yaml:"select_best_image" json:"selectBestImage,omitempty"`
	// Validate fills ExtractionResult.Validation.
	Validate bool `yaml:"validate" json:"validate,omitempty"`
}

// FieldError represents a problem attached to one field of the result
type FieldError struct {
	FieldName string `json:"field_name" yaml:"field_name"`
	Message   string `json:"message" yaml:"message"`
	Code      string `json:"code,omitempty" yaml:"code,omitempty"`
	Severity  string `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// FieldWarning represents a non-fatal note about one field
type FieldWarning struct {
	FieldName string `json:"field_name" yaml:"field_name"`
	Message   string `json:"message" yaml:"message"`
}

// ExtractionMetrics describes the work done by one extraction
type ExtractionMetrics struct {
	ExtractionTime time.Duration `json:"extraction_time" yaml:"extraction_time"`
	HTMLSize       int           `json:"html_size" yaml:"html_size"`
	MetaTagsFound  int           `json:"meta_tags_found" yaml:"meta_tags_found"`
	ImagesFound    int           `json:"images_found" yaml:"images_found"`
	VideosFound    int           `json:"videos_found" yaml:"videos_found"`
}

// ExtractionResult wraps the extracted record with diagnostics
type ExtractionResult struct {
	Data          Record            `json:"data" yaml:"data"`
	Errors        []FieldError      `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings      []FieldWarning    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	FallbacksUsed []string          `json:"fallbacks_used,omitempty" yaml:"fallbacks_used,omitempty"`
	Metrics       ExtractionMetrics `json:"metrics" yaml:"metrics"`
	Validation    *ValidationResult `json:"validation,omitempty" yaml:"validation,omitempty"`
	BestImage     *ImageCandidate   `json:"best_image,omitempty" yaml:"best_image,omitempty"`
	ProcessedAt   time.Time         `json:"processed_at" yaml:"processed_at"`
}

// ScrapingMetadata contains metadata about a fetch and extract operation
type ScrapingMetadata struct {
	RequestDuration    string `json:"request_duration" yaml:"request_duration"`
	ExtractionDuration string `json:"extraction_duration" yaml:"extraction_duration"`
	URL                string `json:"url" yaml:"url"`
	FinalURL           string `json:"final_url,omitempty" yaml:"final_url,omitempty"`
	UserAgent          string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	StatusCode         int    `json:"status_code" yaml:"status_code"`
	ContentLength      int64  `json:"content_length,omitempty" yaml:"content_length,omitempty"`
	ContentType        string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Charset            string `json:"charset,omitempty" yaml:"charset,omitempty"`
	FromCache          bool   `json:"from_cache" yaml:"from_cache"`
	Timestamp          string `json:"timestamp" yaml:"timestamp"`
}

// ScrapingResult represents the result of extracting one URL
type ScrapingResult struct {
	URL      string            `json:"url" yaml:"url"`
	Result   *ExtractionResult `json:"result" yaml:"result"`
	Metadata ScrapingMetadata  `json:"metadata" yaml:"metadata"`
	Success  bool              `json:"success" yaml:"success"`
}
