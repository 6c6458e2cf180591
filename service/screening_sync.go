// ABOUTME: This file drives the venue scrape pipeline: enabled cinemas through their adapters
package service

import (
	"context"
	"fmt"
	"log/slog"

	"cienaga/batch"
	"cienaga/domain"
	"cienaga/repository"
	"cienaga/scraper"
)

// ScrapeSummary reports one venue scrape run across all cinemas.
type ScrapeSummary struct {
	Venues           int
	Screenings       int
	Failed           int
	Errors           []string
	DeadlineExceeded bool
}

// Failure reports whether the run should exit non-zero.
func (s ScrapeSummary) Failure() bool {
	return s.Failed > s.Venues-s.Failed
}

// ScreeningSync runs every enabled venue adapter and persists its batches.
type ScreeningSync struct {
	cinemas  repository.CinemaRepository
	submit   *ScreeningBatch
	registry *scraper.Registry
	deps     scraper.Deps
	logger   *slog.Logger
	opts     batch.Options
}

// NewScreeningSync creates a new screening sync. Venues run one at a time
// unless the options raise the concurrency.
func NewScreeningSync(cinemas repository.CinemaRepository, submit *ScreeningBatch, registry *scraper.Registry, deps scraper.Deps, logger *slog.Logger, opts batch.Options) *ScreeningSync {
	if opts.MaxConcurrent == 0 {
		opts.MaxConcurrent = 1
	}
	return &ScreeningSync{cinemas: cinemas, submit: submit, registry: registry, deps: deps, logger: logger, opts: opts}
}

// Run scrapes the enabled cinemas, optionally restricted to the given
// slugs. A venue without an adapter, or whose scrape fails outright, counts
// as one failure; per-item problems were already absorbed downstream.
func (s *ScreeningSync) Run(ctx context.Context, slugs []string) (ScrapeSummary, error) {
	cinemas, err := s.cinemas.Enabled(ctx)
	if err != nil {
		return ScrapeSummary{}, err
	}
	cinemas = filterCinemas(cinemas, slugs)
	if len(cinemas) == 0 {
		s.logger.InfoContext(ctx, "no enabled cinemas to scrape")
		return ScrapeSummary{}, nil
	}

	outcome, err := batch.Run(ctx, cinemas, func(ctx context.Context, cinema domain.Cinema) (scraper.Summary, error) {
		venue, err := s.registry.Create(cinema, s.deps)
		if err != nil {
			return scraper.Summary{}, err
		}

		summary := scraper.Execute(ctx, venue, func(ctx context.Context, screenings []scraper.Screening) (int, int, error) {
			batchOutcome, err := s.submit.Submit(ctx, cinema.ID, screenings)
			return batchOutcome.Successful, batchOutcome.Failed, err
		}, s.logger)

		if !summary.Success {
			return summary, fmt.Errorf("venue %s: %v", cinema.Slug, summary.Errors)
		}
		return summary, nil
	}, s.opts, s.logger)
	if err != nil {
		return ScrapeSummary{}, err
	}

	summary := ScrapeSummary{
		Venues:           len(outcome.Results),
		DeadlineExceeded: outcome.DeadlineExceeded,
	}
	for _, result := range outcome.Results {
		if result.Err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, result.Err.Error())
			continue
		}
		summary.Screenings += result.Value.Count
		summary.Errors = append(summary.Errors, result.Value.Errors...)
	}

	s.logger.InfoContext(ctx, "screening sync finished",
		"venues", summary.Venues, "screenings", summary.Screenings,
		"failed", summary.Failed, "deadline_exceeded", summary.DeadlineExceeded)

	return summary, nil
}

func filterCinemas(cinemas []domain.Cinema, slugs []string) []domain.Cinema {
	if len(slugs) == 0 {
		return cinemas
	}

	wanted := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		wanted[slug] = true
	}

	var filtered []domain.Cinema
	for _, cinema := range cinemas {
		if wanted[cinema.Slug] {
			filtered = append(filtered, cinema)
		}
	}
	return filtered
}
