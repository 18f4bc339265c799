// internal/scraper/extractor.go
package scraper

import (
	"time"
)

// Extract parses body and returns its metadata record. It never fails;
// a document without usable tags yields an empty record.
func Extract(body []byte, opts Options) Record {
	return NewExtractionEngine(opts, NewHTMLParser(body)).ExtractAll().Data
}

// ExtractionEngine runs the collector, media normalizer, fallbacks and
// cleaner over one parsed document.
type ExtractionEngine struct {
	table   []FieldSpec
	options Options
	parser  *HTMLParser
}

// NewExtractionEngine creates an engine for parser with opts.
func NewExtractionEngine(opts Options, parser *HTMLParser) *ExtractionEngine {
	return &ExtractionEngine{
		table:   BuildFieldTable(opts.CustomMetaTags),
		options: opts,
		parser:  parser,
	}
}

// ExtractAll performs the full extraction and reports diagnostics.
func (ee *ExtractionEngine) ExtractAll() *ExtractionResult {
	startTime := time.Now()
	doc := ee.parser.Document()

	record, matched := CollectFields(ee.parser.Metas(), ee.table)
	record = NormalizeMedia(record, MediaOptions{AllMedia: ee.options.AllMedia})

	var filled []string
	if !ee.options.OnlyGetOpenGraphInfo {
		filled = ApplyFallbacks(record, doc, FallbackOptions{OGImageFallback: ee.options.OGImageFallback})
	}
	record = Clean(record)

	result := &ExtractionResult{
		Data:          record,
		FallbacksUsed: filled,
		ProcessedAt:   startTime,
	}
	for _, field := range filled {
		result.Warnings = append(result.Warnings, FieldWarning{
			FieldName: field,
			Message:   "value taken from document fallback",
		})
	}

	if ee.options.SelectBestImage {
		result.BestImage = SelectBestImage(ExtractAllImages(doc))
	}
	if ee.options.Validate {
		result.Validation = ValidateRecord(record)
		for _, issue := range result.Validation.Errors {
			result.Errors = append(result.Errors, FieldError{
				FieldName: issue.Field,
				Message:   issue.Message,
				Code:      issue.Code,
				Severity:  issue.Severity,
			})
		}
	}

	result.Metrics = ExtractionMetrics{
		ExtractionTime: time.Since(startTime),
		HTMLSize:       ee.parser.Size(),
		MetaTagsFound:  matched,
		ImagesFound:    len(record[FieldOGImage].MediaList()),
		VideosFound:    len(record[FieldOGVideo].MediaList()),
	}
	return result
}
