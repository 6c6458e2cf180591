// ABOUTME: This file implements the MALBA venue adapter
// ABOUTME: Two phases: the /cine/ listing yields event tiles, then each detail page yields one screening
package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cienaga/domain"
)

// Malba scrapes malba.org.ar/cine. Listing tiles are elementor event
// entries; seasons, plain projection listings and festival programs are
// not individual films and are excluded.
type Malba struct {
	base
}

func NewMalba(cinema domain.Cinema, deps Deps) VenueScraper {
	return &Malba{base: base{cinema: cinema, deps: deps}}
}

const malbaTileSelector = ".elementor.event.type-event.status-publish.has-post-thumbnail.hentry.event-category-cine"

type malbaTile struct {
	url          string
	thumbnailURL string
	eventType    string
}

func (m *Malba) Scrape(ctx context.Context) ([]Screening, error) {
	doc, err := m.fetchDoc(ctx, strings.TrimSuffix(m.cinema.BaseURL, "/")+"/cine/")
	if err != nil || doc == nil {
		return nil, err
	}

	var tiles []malbaTile
	doc.Selection(malbaTileSelector).Each(func(_ int, tile *goquery.Selection) {
		href, _ := tile.Find(".elementor-widget-image a").First().Attr("href")
		if href == "" {
			return
		}

		eventType := strings.TrimSpace(tile.Find("p").First().Text())
		if eventType == "" {
			return
		}

		thumbnail, _ := tile.Find(".elementor-widget-container img").First().Attr("src")

		tiles = append(tiles, malbaTile{
			url:          m.absoluteURL(href),
			thumbnailURL: thumbnail,
			eventType:    eventType,
		})
	})

	m.deps.Logger.InfoContext(ctx, "malba listing fetched", "events", len(tiles))

	var screenings []Screening
	for _, tile := range tiles {
		if excludedEventType(tile.eventType) {
			continue
		}

		screening, err := m.scrapeDetail(ctx, tile)
		if err != nil {
			m.deps.Logger.WarnContext(ctx, "malba event skipped", "url", tile.url, "error", err)
		} else if screening != nil {
			screenings = append(screenings, *screening)
		}

		m.pause(ctx)
	}

	return screenings, nil
}

// excludedEventType filters out non-film categories: seasons, bare
// projection listings and festival umbrellas like "37º Festival".
func excludedEventType(eventType string) bool {
	normalized := domain.Normalize(eventType)
	if normalized == "ciclo" || normalized == "proyecciones" {
		return true
	}
	return strings.Contains(normalized, "festival")
}

func (m *Malba) scrapeDetail(ctx context.Context, tile malbaTile) (*Screening, error) {
	doc, err := m.fetchDoc(ctx, tile.url)
	if err != nil || doc == nil {
		return nil, err
	}

	heading := doc.Selection("h1.elementor-heading-title").First()
	title := cleanTitle(heading.Text())
	if title == "" {
		return nil, nil
	}

	// The director paragraph ("De Juanjo Pereira") sits in the block
	// right after the heading's section; the schedule block follows it.
	headingBlock := heading.Parent().Parent()
	directorBlock := headingBlock.Next()

	var director *string
	directorText := strings.TrimSpace(directorBlock.Find("p").First().Text())
	if rest, ok := strings.CutPrefix(directorText, "De "); ok {
		director = optional(rest)
	}

	scheduleText := strings.TrimSpace(doc.TextOf(".g-event-fecha"))
	if scheduleText == "" {
		scheduleText = strings.TrimSpace(directorBlock.Next().Text())
	}

	parsed := m.deps.Parser.Parse(scheduleText)
	if len(parsed.Times) == 0 {
		m.deps.Logger.WarnContext(ctx, "no future dates parsed", "url", tile.url, "schedule_text", parsed.OriginalText)
		return nil, nil
	}

	room := optional(stripMarkup(directorBlock.Next().Parent().Next().Text()))

	screening := Screening{
		Title:        title,
		Director:     director,
		Times:        parsed.Times,
		ScheduleText: parsed.OriginalText,
		EventType:    optional(tile.eventType),
		Room:         room,
		OriginalURL:  tile.url,
		ThumbnailURL: optional(tile.thumbnailURL),
	}

	return &screening, nil
}
