// ABOUTME: This file defines the venue scraper capability set and the slug-keyed adapter registry
// ABOUTME: Adapters share the polite fetcher and date parser but never share mutable state
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cienaga/domain"
	"cienaga/schedule"
)

// Screening is the raw product of one venue scrape, before
// reconciliation against known films.
type Screening struct {
	Title         string
	NationalTitle *string
	Director      *string
	Times         []time.Time
	ScheduleText  string
	EventType     *string
	Description   *string
	Room          *string
	OriginalURL   string
	ThumbnailURL  *string
	Country       *string
	Genre         *string
	Duration      *int
	Year          *int
}

// Fetcher is the slice of the HTTP client adapters use.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// VenueScraper turns one cinema's public pages into Screening records.
type VenueScraper interface {
	Slug() string
	Scrape(ctx context.Context) ([]Screening, error)
}

// Deps bundles the collaborators injected into every adapter.
type Deps struct {
	Fetcher     Fetcher
	Parser      *schedule.Parser
	Logger      *slog.Logger
	DetailDelay time.Duration
}

// Constructor builds an adapter for one cinema row.
type Constructor func(cinema domain.Cinema, deps Deps) VenueScraper

// Registry maps cinema slugs to adapter constructors.
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

func (r *Registry) Register(slug string, constructor Constructor) {
	r.constructors[slug] = constructor
}

// Create builds the adapter for the cinema's slug, or ErrNotFound when
// the cinema has no adapter.
func (r *Registry) Create(cinema domain.Cinema, deps Deps) (VenueScraper, error) {
	constructor, ok := r.constructors[cinema.Slug]
	if !ok {
		return nil, fmt.Errorf("%w: no scraper for cinema %q", domain.ErrNotFound, cinema.Slug)
	}
	return constructor(cinema, deps), nil
}

// DefaultRegistry holds every production adapter.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register("malba", NewMalba)
	registry.Register("lumiton", NewLumiton)
	return registry
}

// Summary is the outcome of one adapter run.
type Summary struct {
	Success bool
	Count   int
	Errors  []string
}

// Submitter persists a scraped batch and reports how many screenings
// were saved and how many failed.
type Submitter func(ctx context.Context, screenings []Screening) (successful, failed int, err error)

// Execute runs one adapter end to end: scrape, then submit. A
// scrape-level failure yields Success=false; per-item failures were
// already swallowed inside Scrape and show up only as a lower count.
func Execute(ctx context.Context, venue VenueScraper, submit Submitter, logger *slog.Logger) Summary {
	logger.InfoContext(ctx, "starting venue scrape", "cinema", venue.Slug())

	screenings, err := venue.Scrape(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "venue scrape failed", "cinema", venue.Slug(), "error", err)
		return Summary{Errors: []string{fmt.Sprintf("%s scraper failed: %v", venue.Slug(), err)}}
	}

	logger.InfoContext(ctx, "venue scrape finished", "cinema", venue.Slug(), "screenings", len(screenings))

	if len(screenings) == 0 {
		return Summary{Success: true}
	}

	successful, failed, err := submit(ctx, screenings)
	if err != nil {
		return Summary{Errors: []string{fmt.Sprintf("%s submit failed: %v", venue.Slug(), err)}}
	}

	summary := Summary{Success: true, Count: successful}
	if failed > 0 {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%d failed to save", failed))
	}
	return summary
}
