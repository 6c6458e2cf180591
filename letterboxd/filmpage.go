// ABOUTME: This file scrapes a single film page into its structured fields
// ABOUTME: Each field follows a fixed extraction precedence; failures degrade to nil, never errors
package letterboxd

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"cienaga/htmldoc"
)

// FilmPageData is everything a film page yields. Any field may be nil;
// a fully nil record means the scrape failed.
type FilmPageData struct {
	Director      *string
	DirectorSlug  *string
	DirectorURL   *string
	FilmSlug      *string
	PosterURL     *string
	BackdropURL   *string
	Rating        *float64
	Year          *int
	NationalTitle *string
}

// Fetcher is the slice of the HTTP client the scraper needs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FilmScraper extracts film metadata from public film pages.
type FilmScraper struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewFilmScraper(fetcher Fetcher, logger *slog.Logger) *FilmScraper {
	return &FilmScraper{fetcher: fetcher, logger: logger}
}

// Scrape fetches the film page and extracts every field it can. On any
// failure the record comes back with nil fields rather than an error, so
// one bad page never aborts a batch.
func (s *FilmScraper) Scrape(ctx context.Context, url string) FilmPageData {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil || body == nil {
		s.logger.WarnContext(ctx, "film page fetch failed", "url", url, "error", err)
		return FilmPageData{}
	}

	doc, err := htmldoc.Parse(body)
	if err != nil {
		s.logger.WarnContext(ctx, "film page parse failed", "url", url, "error", err)
		return FilmPageData{}
	}

	data := ExtractFilmPage(doc)

	s.logger.InfoContext(ctx, "film page scraped",
		"url", url,
		"director_found", data.Director != nil,
		"year_found", data.Year != nil,
		"poster_found", data.PosterURL != nil)

	return data
}

// ExtractFilmPage runs the per-field extraction precedence over a parsed
// page. Split from Scrape so fixture tests need no HTTP.
func ExtractFilmPage(doc *htmldoc.Document) FilmPageData {
	data := FilmPageData{
		PosterURL: extractPoster(doc),
		Rating:    extractRating(doc),
		Year:      extractYear(doc),
	}

	if director := extractDirector(doc); director != "" {
		data.Director = CleanDirectorName(director)
	}

	if link := doc.FirstLinkMatching("/director/"); link != nil {
		if slug := secondToLastSegment(link.Href); slug != "" {
			data.DirectorSlug = &slug
		}
		directorURL := absoluteURL(link.Href)
		data.DirectorURL = &directorURL
	}

	if link := doc.FirstLinkMatching("/film/"); link != nil {
		if slug := secondToLastSegment(link.Href); slug != "" {
			data.FilmSlug = &slug
		}
	}

	if backdrop := doc.Meta("og:image"); backdrop != "" {
		data.BackdropURL = &backdrop
	}

	if national := doc.TextOf(".originalname"); national != "" {
		data.NationalTitle = &national
	}

	return data
}

// extractDirector: twitter meta first, then the director link text, then
// JSON-LD director (scalar or first array element).
func extractDirector(doc *htmldoc.Document) string {
	if director := doc.Meta("twitter:data1"); director != "" {
		return director
	}

	if link := doc.FirstLinkMatching("/director/"); link != nil && link.Text != "" {
		return link.Text
	}

	for _, block := range doc.JSONLD() {
		switch director := block["director"].(type) {
		case map[string]any:
			if name, ok := director["name"].(string); ok {
				return name
			}
		case []any:
			if len(director) > 0 {
				if first, ok := director[0].(map[string]any); ok {
					if name, ok := first["name"].(string); ok {
						return name
					}
				}
			}
		}
	}

	return ""
}

func extractPoster(doc *htmldoc.Document) *string {
	for _, block := range doc.JSONLD() {
		if image, ok := block["image"].(string); ok && image != "" {
			return &image
		}
	}
	return nil
}

func extractRating(doc *htmldoc.Document) *float64 {
	for _, block := range doc.JSONLD() {
		aggregate, ok := block["aggregateRating"].(map[string]any)
		if !ok {
			continue
		}
		if value, ok := aggregate["ratingValue"].(float64); ok {
			return &value
		}
	}
	return nil
}

var reTitleYear = regexp.MustCompile(`\((\d{4})\)`)

// extractYear: page title, then the year link, then JSON-LD dateCreated.
func extractYear(doc *htmldoc.Document) *int {
	if match := reTitleYear.FindStringSubmatch(doc.Title()); match != nil {
		if year := ParseYear(match[1]); year != nil {
			return year
		}
	}

	if link := doc.FirstLinkMatching("/films/year/"); link != nil {
		if year := ParseYear(link.Text); year != nil {
			return year
		}
	}

	for _, block := range doc.JSONLD() {
		if created, ok := block["dateCreated"].(string); ok {
			if year := ParseYear(created); year != nil {
				return year
			}
		}
	}

	return nil
}

// secondToLastSegment pulls the slug out of paths like
// /director/james-ward-byrkit/.
func secondToLastSegment(href string) string {
	parts := strings.Split(href, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://letterboxd.com" + href
}
