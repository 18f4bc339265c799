// internal/output/csv.go
package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/valpere/OGScrapexter/internal/scraper"
)

// csvColumns are the record fields written by CSVWriter, in order. Media
// fields are reduced to the url of their first item.
var csvColumns = []string{
	scraper.FieldOGTitle,
	scraper.FieldOGDescription,
	scraper.FieldOGType,
	scraper.FieldOGURL,
	scraper.FieldOGSiteName,
	scraper.FieldOGImage,
	scraper.FieldTwitterCard,
	scraper.FieldFavicon,
}

// CSVWriter writes one summary row per URL. Nested media and custom fields
// do not fit a flat table and are left to the JSON and YAML writers.
type CSVWriter struct {
	dest          io.WriteCloser
	writer        *csv.Writer
	headerWritten bool
}

// NewCSVWriter creates a new CSV writer
func NewCSVWriter(dest io.WriteCloser) *CSVWriter {
	return &CSVWriter{dest: dest, writer: csv.NewWriter(dest)}
}

// Write accepts a Record, a ScrapingResult or a BulkResponse
func (w *CSVWriter) Write(v interface{}) error {
	if err := w.writeHeader(); err != nil {
		return err
	}

	switch data := v.(type) {
	case scraper.Record:
		return w.writeRow("", true, "", data)
	case *scraper.ScrapingResult:
		return w.writeScrapingResult(data)
	case *scraper.BulkResponse:
		for _, result := range data.Results {
			var record scraper.Record
			if result.Result != nil {
				record = result.Result.Data
			}
			if err := w.writeRow(result.URL, result.Success, result.Error, record); err != nil {
				return err
			}
		}
	case scraper.BulkResponse:
		return w.Write(&data)
	default:
		return fmt.Errorf("unsupported data type for CSV: %T", v)
	}

	w.writer.Flush()
	return w.writer.Error()
}

func (w *CSVWriter) writeScrapingResult(result *scraper.ScrapingResult) error {
	var record scraper.Record
	if result.Result != nil {
		record = result.Result.Data
	}
	return w.writeRow(result.URL, result.Success, "", record)
}

func (w *CSVWriter) writeHeader() error {
	if w.headerWritten {
		return nil
	}
	header := append([]string{"url", "success", "error"}, csvColumns...)
	if err := w.writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	w.headerWritten = true
	return nil
}

func (w *CSVWriter) writeRow(url string, success bool, errMsg string, record scraper.Record) error {
	row := make([]string, 0, len(csvColumns)+3)
	row = append(row, url, fmt.Sprintf("%t", success), errMsg)
	for _, field := range csvColumns {
		row = append(row, cellValue(record[field]))
	}
	if err := w.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.writer.Flush()
	return w.writer.Error()
}

func cellValue(v scraper.Value) string {
	switch v.Kind() {
	case scraper.KindString:
		return v.Str()
	case scraper.KindList:
		for _, item := range v.List() {
			if item != nil {
				return *item
			}
		}
	case scraper.KindMedia, scraper.KindMediaList:
		if m := v.Media(); m != nil {
			return m.MediaURL()
		}
	}
	return ""
}

// Close flushes and closes the CSV writer
func (w *CSVWriter) Close() error {
	if w.dest == nil {
		return nil
	}
	w.writer.Flush()
	flushErr := w.writer.Error()
	err := w.dest.Close()
	w.dest = nil
	if flushErr != nil {
		return flushErr
	}
	return err
}

func (w *CSVWriter) GetType() string {
	return string(FormatCSV)
}
