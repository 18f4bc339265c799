// pkg/api/types.go
package api

import (
	"github.com/valpere/OGScrapexter/internal/config"
	"github.com/valpere/OGScrapexter/internal/scraper"
)

// Re-export types from internal packages for the public API
type (
	Config  = config.Config
	Options = scraper.Options
	MetaTag = scraper.MetaTag

	Record    = scraper.Record
	Value     = scraper.Value
	Kind      = scraper.Kind
	MediaItem = scraper.MediaItem

	Image         = scraper.Image
	Video         = scraper.Video
	TwitterImage  = scraper.TwitterImage
	TwitterPlayer = scraper.TwitterPlayer
	MusicSong     = scraper.MusicSong

	ExtractionResult = scraper.ExtractionResult
	ScrapingResult   = scraper.ScrapingResult
	BulkResponse     = scraper.BulkResponse
	BulkResult       = scraper.BulkResult
	ImageCandidate   = scraper.ImageCandidate
	ValidationResult = scraper.ValidationResult
)

// Value kinds
const (
	KindUndefined = scraper.KindUndefined
	KindString    = scraper.KindString
	KindList      = scraper.KindList
	KindMedia     = scraper.KindMedia
	KindMediaList = scraper.KindMediaList
)
