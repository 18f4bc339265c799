// internal/scraper/collector.go
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CollectFields matches every node of metas against table and accumulates
// the matches into a fresh record. It returns the record and the number of
// nodes that matched at least one spec.
func CollectFields(metas *goquery.Selection, table []FieldSpec) (Record, int) {
	record := NewRecord()
	matched := 0

	metas.Each(func(_ int, node *goquery.Selection) {
		_, hasProperty := node.Attr("property")
		_, hasName := node.Attr("name")
		if !hasProperty && !hasName {
			return
		}

		property := firstAttr(node, "property", "name", "itemprop", "itemProp")
		if property == "" {
			return
		}
		content := contentOf(node)

		hit := false
		for _, spec := range table {
			if !strings.EqualFold(spec.Property, property) {
				continue
			}
			hit = true
			if spec.Multiple {
				prev := record[spec.FieldName].List()
				record[spec.FieldName] = ListValue(append(prev, content)...)
			} else {
				record[spec.FieldName] = OptionalString(content)
			}
		}
		if hit {
			matched++
		}
	})

	promoteAlternateURL(record, FieldOGImage, FieldOGImageSecureURL, FieldOGImageURL)
	promoteAlternateURL(record, FieldOGVideo, FieldOGVideoSecureURL, FieldOGVideoURL)
	return record, matched
}

// promoteAlternateURL fills target from the first present alternate when target is absent.
func promoteAlternateURL(record Record, target string, alternates ...string) {
	if record.Has(target) {
		return
	}
	for _, alt := range alternates {
		if v, ok := record[alt]; ok && v.set() {
			record[target] = v.clone()
			return
		}
	}
}

func firstAttr(node *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := node.Attr(name); ok && v != "" {
			return v
		}
	}
	return ""
}

// contentOf returns a non-empty content attribute, else the value attribute.
// nil means the node carries neither.
func contentOf(node *goquery.Selection) *string {
	if v, ok := node.Attr("content"); ok && v != "" {
		return &v
	}
	if v, ok := node.Attr("value"); ok {
		return &v
	}
	return nil
}
