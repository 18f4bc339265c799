// pkg/api/example_test.go
package api_test

import (
	"fmt"
	"strings"

	"github.com/valpere/OGScrapexter/pkg/api"
)

func ExampleExtract() {
	html := `<html><head>
		<meta property="og:title" content="Hello">
		<meta property="og:image" content="https://example.com/a.png">
		<meta property="og:image:width" content="1200">
	</head></html>`

	record := api.Extract(html, api.Options{})

	fmt.Println(record.String("ogTitle"))
	fmt.Println(record["ogImage"].Media().MediaURL())
	// Output:
	// Hello
	// https://example.com/a.png
}

func ExampleExtract_customTags() {
	html := `<html><head>
		<meta name="citation_author" content="Ada">
		<meta name="citation_author" content="Grace">
	</head></html>`

	record := api.Extract(html, api.Options{
		CustomMetaTags:       []api.MetaTag{{Property: "citation_author", FieldName: "authors", Multiple: true}},
		OnlyGetOpenGraphInfo: true,
	})

	for _, author := range record["authors"].List() {
		fmt.Println(*author)
	}
	// Output:
	// Ada
	// Grace
}

func ExampleExtractFromReader() {
	body := "<html><head><meta property=\"og:title\" content=\"Caf\xe9\"></head></html>"

	result, err := api.ExtractFromReader(strings.NewReader(body), "text/html; charset=iso-8859-1", api.Options{OnlyGetOpenGraphInfo: true})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(result.Data.String("ogTitle"))
	// Output:
	// Café
}
