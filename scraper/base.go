// ABOUTME: This file holds the helpers every venue adapter shares
// ABOUTME: Fetch-and-parse, title cleanup, local/original title splitting, detail pacing
package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"cienaga/domain"
	"cienaga/htmldoc"
)

// base carries the per-adapter state: one cinema row plus the injected
// collaborators. Adapters embed it; nothing in it is shared between
// adapters except the fetcher, which owns its own locking.
type base struct {
	cinema domain.Cinema
	deps   Deps
}

func (b *base) Slug() string {
	return b.cinema.Slug
}

// fetchDoc fetches a page and parses it. nil document with nil error
// means the page 404ed.
func (b *base) fetchDoc(ctx context.Context, url string) (*htmldoc.Document, error) {
	body, err := b.deps.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	doc, err := htmldoc.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrItemSkipped, url, err)
	}
	return doc, nil
}

// pause waits the configured delay between detail-page requests.
func (b *base) pause(ctx context.Context) {
	delay := b.deps.DetailDelay
	if delay == 0 {
		delay = time.Second
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}

// absoluteURL resolves listing hrefs against the cinema's base URL.
func (b *base) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimSuffix(b.cinema.BaseURL, "/") + href
}

var quoteReplacer = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")

// cleanTitle collapses whitespace and straightens curly quotes.
func cleanTitle(title string) string {
	return quoteReplacer.Replace(strings.Join(strings.Fields(title), " "))
}

var reLocalOriginal = regexp.MustCompile(`^(.+?)\s+\((.+)\)$`)

// splitTitle handles venue headings of the form "LOCAL (ORIGINAL)": the
// local release title plus the original title in parentheses. A heading
// without parentheses is the title alone.
func splitTitle(heading string) (title string, nationalTitle *string) {
	cleaned := cleanTitle(heading)

	match := reLocalOriginal.FindStringSubmatch(cleaned)
	if match == nil {
		return cleaned, nil
	}

	local := strings.TrimSpace(match[1])
	original := strings.TrimSpace(match[2])
	if local == "" || original == "" {
		return cleaned, nil
	}

	return original, &local
}

var stripPolicy = bluemonday.StrictPolicy()

// stripMarkup reduces scraped rich text to plain text before it is
// persisted as a description.
func stripMarkup(raw string) string {
	return strings.Join(strings.Fields(stripPolicy.Sanitize(raw)), " ")
}

func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
