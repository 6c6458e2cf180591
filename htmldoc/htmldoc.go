// ABOUTME: This file provides typed extractors over a parsed HTML document
// ABOUTME: Selector misses return zero values; malformed HTML never produces an error downstream
package htmldoc

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document wraps a parsed page and exposes the handful of typed lookups
// the scrapers need. goquery tolerates malformed markup, so once a
// Document exists none of its methods can fail.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from raw HTML.
func Parse(raw []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// Selection exposes the underlying goquery selection for adapters that
// need venue-specific traversal.
func (d *Document) Selection(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Meta returns the content of the first meta tag whose name or property
// attribute matches. Empty string when absent.
func (d *Document) Meta(nameOrProperty string) string {
	selector := `meta[name="` + nameOrProperty + `"], meta[property="` + nameOrProperty + `"]`

	content, _ := d.doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// reBlockComment matches /* ... */ noise some sites wrap around their
// structured data blocks.
var reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

// JSONLD returns every application/ld+json block that decodes to an
// object, tolerating block-comment noise. Undecodable blocks are skipped.
func (d *Document) JSONLD() []map[string]any {
	var blocks []map[string]any

	d.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		cleaned := strings.TrimSpace(reBlockComment.ReplaceAllString(s.Text(), ""))
		if cleaned == "" {
			return
		}

		var data map[string]any
		if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
			return
		}
		blocks = append(blocks, data)
	})

	return blocks
}

// Link is an anchor's href and visible text.
type Link struct {
	Href string
	Text string
}

// FirstLinkMatching returns the first anchor whose href contains the
// fragment, or nil when none does.
func (d *Document) FirstLinkMatching(fragment string) *Link {
	selection := d.doc.Find(`a[href*="` + fragment + `"]`).First()
	if selection.Length() == 0 {
		return nil
	}

	href, _ := selection.Attr("href")
	return &Link{Href: href, Text: strings.TrimSpace(selection.Text())}
}

// TextOf returns the trimmed text of the first node matching the
// selector. Empty string when absent.
func (d *Document) TextOf(selector string) string {
	return strings.TrimSpace(d.doc.Find(selector).First().Text())
}

// Title returns the page title text.
func (d *Document) Title() string {
	return d.TextOf("title")
}
