// ABOUTME: This file implements the Lumiton venue adapter
// ABOUTME: The agenda listing is plain article tiles; detail pages carry stacked dates and a metadata line
package scraper

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cienaga/domain"
)

// Lumiton scrapes lumiton.ar's in-person agenda.
type Lumiton struct {
	base
}

func NewLumiton(cinema domain.Cinema, deps Deps) VenueScraper {
	return &Lumiton{base: base{cinema: cinema, deps: deps}}
}

type lumitonTile struct {
	url          string
	thumbnailURL string
}

func (l *Lumiton) Scrape(ctx context.Context) ([]Screening, error) {
	doc, err := l.fetchDoc(ctx, strings.TrimSuffix(l.cinema.BaseURL, "/")+"/agenda-presencial/")
	if err != nil || doc == nil {
		return nil, err
	}

	var tiles []lumitonTile
	doc.Selection("article").Each(func(_ int, article *goquery.Selection) {
		href, _ := article.Find("a").First().Attr("href")
		if href == "" {
			return
		}

		thumbnail, _ := article.Find("img").First().Attr("src")

		tiles = append(tiles, lumitonTile{url: l.absoluteURL(href), thumbnailURL: thumbnail})
	})

	l.deps.Logger.InfoContext(ctx, "lumiton listing fetched", "events", len(tiles))

	var screenings []Screening
	for _, tile := range tiles {
		screening, err := l.scrapeDetail(ctx, tile)
		if err != nil {
			l.deps.Logger.WarnContext(ctx, "lumiton event skipped", "url", tile.url, "error", err)
		} else if screening != nil {
			screenings = append(screenings, *screening)
		}

		l.pause(ctx)
	}

	return screenings, nil
}

func (l *Lumiton) scrapeDetail(ctx context.Context, tile lumitonTile) (*Screening, error) {
	doc, err := l.fetchDoc(ctx, tile.url)
	if err != nil || doc == nil {
		return nil, err
	}

	title, nationalTitle := splitTitle(doc.TextOf("h1"))
	if title == "" {
		return nil, nil
	}

	scheduleText := doc.TextOf(".g-event-fecha")
	parsed := l.deps.Parser.Parse(scheduleText)
	if len(parsed.Times) == 0 {
		l.deps.Logger.WarnContext(ctx, "no future dates parsed", "url", tile.url, "schedule_text", parsed.OriginalText)
		return nil, nil
	}

	screening := Screening{
		Title:         title,
		NationalTitle: nationalTitle,
		Director:      extractLumitonDirector(doc.Selection("b")),
		Times:         parsed.Times,
		ScheduleText:  parsed.OriginalText,
		OriginalURL:   tile.url,
		ThumbnailURL:  optional(tile.thumbnailURL),
	}

	applyLumitonMetadata(&screening, doc.TextOf(".text-sm"))

	return &screening, nil
}

// extractLumitonDirector reads the text adjacent to a <b>Dirección:</b>
// label: either the remainder of the label's own element or, failing
// that, the rest of the parent's text after the label.
func extractLumitonDirector(labels *goquery.Selection) *string {
	var director *string

	labels.EachWithBreak(func(_ int, label *goquery.Selection) bool {
		text := strings.TrimSpace(label.Text())
		if !strings.HasPrefix(text, "Dirección") {
			return true
		}

		parentText := strings.TrimSpace(label.Parent().Text())
		_, after, found := strings.Cut(parentText, ":")
		if !found {
			return true
		}

		// The parent may run on into the next metadata line.
		if line, _, _ := strings.Cut(after, "\n"); line != "" {
			after = line
		}

		director = optional(after)
		return director == nil
	})

	return director
}

var (
	// Metadata sentences end at ". " followed by an uppercase letter or a
	// digit, which keeps abbreviations inside one field intact.
	reMetadataSplit = regexp.MustCompile(`\.\s+(?:[A-ZÁÉÍÓÚÑ0-9])`)
	reDurationMin   = regexp.MustCompile(`(\d+)\s*min`)
	reFourDigits    = regexp.MustCompile(`^\d{4}$`)
)

// applyLumitonMetadata parses the detail page's metadata line, e.g.
// "Argentina. 2023. Drama. 98 minutos." into country, year, genre and
// duration. Fields are recognized by shape, not position.
func applyLumitonMetadata(screening *Screening, metadata string) {
	metadata = strings.TrimSpace(metadata)
	if metadata == "" {
		return
	}

	var parts []string
	rest := metadata
	for {
		loc := reMetadataSplit.FindStringIndex(rest)
		if loc == nil {
			parts = append(parts, strings.TrimSuffix(strings.TrimSpace(rest), "."))
			break
		}
		parts = append(parts, strings.TrimSpace(rest[:loc[0]]))
		rest = rest[loc[1]-1:] // keep the uppercase/digit that started the next field
	}

	var textual []string
	for _, part := range parts {
		switch {
		case part == "":
		case reFourDigits.MatchString(part):
			if year, err := strconv.Atoi(part); err == nil {
				screening.Year = &year
			}
		case reDurationMin.MatchString(part):
			if match := reDurationMin.FindStringSubmatch(part); match != nil {
				if minutes, err := strconv.Atoi(match[1]); err == nil {
					screening.Duration = &minutes
				}
			}
		default:
			textual = append(textual, part)
		}
	}

	// By convention the line leads with the country, then the genre.
	if len(textual) > 0 {
		screening.Country = optional(textual[0])
	}
	if len(textual) > 1 {
		screening.Genre = optional(textual[1])
	}
}
