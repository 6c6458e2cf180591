// ABOUTME: This file drives the director resolution pipeline: pending films through the film-page scraper
package service

import (
	"context"
	"log/slog"
	"time"

	"cienaga/batch"
	"cienaga/domain"
	"cienaga/letterboxd"
	"cienaga/repository"
)

// FilmPageScraper is the slice of the film-page scraper the sync needs.
type FilmPageScraper interface {
	Scrape(ctx context.Context, url string) letterboxd.FilmPageData
}

// DirectorSyncOptions tune one resolution run.
type DirectorSyncOptions struct {
	Limit int
	Batch batch.Options
}

// SyncSummary reports one director resolution run.
type SyncSummary struct {
	Processed        int
	Resolved         int
	Unresolved       int
	Failed           int
	DeadlineExceeded bool
}

// Failure reports whether the run should exit non-zero.
func (s SyncSummary) Failure() bool {
	return s.Failed > s.Resolved
}

// DirectorSync scrapes the film pages of director-less films and submits
// the results.
type DirectorSync struct {
	films   repository.FilmRepository
	submit  *DirectorBatch
	scraper FilmPageScraper
	logger  *slog.Logger
	opts    DirectorSyncOptions
}

// NewDirectorSync creates a new director sync.
func NewDirectorSync(films repository.FilmRepository, submit *DirectorBatch, scraper FilmPageScraper, logger *slog.Logger, opts DirectorSyncOptions) *DirectorSync {
	if opts.Limit == 0 {
		opts.Limit = 50
	}
	if opts.Batch.MaxConcurrent == 0 {
		opts.Batch.MaxConcurrent = 5
	}
	if opts.Batch.PerItemDelay == 0 {
		opts.Batch.PerItemDelay = 800 * time.Millisecond
	}
	if opts.Batch.Deadline == 0 {
		opts.Batch.Deadline = 8 * time.Minute
	}
	return &DirectorSync{films: films, submit: submit, scraper: scraper, logger: logger, opts: opts}
}

// Run scrapes up to Limit pending films under the batch budget. Films whose
// page yields no valid director stay pending for a later run.
func (s *DirectorSync) Run(ctx context.Context) (SyncSummary, error) {
	pending, err := s.films.Pending(ctx, s.opts.Limit)
	if err != nil {
		return SyncSummary{}, err
	}
	if len(pending) == 0 {
		s.logger.InfoContext(ctx, "no films pending director resolution")
		return SyncSummary{}, nil
	}

	outcome, err := batch.Run(ctx, pending, func(ctx context.Context, film domain.Film) (letterboxd.FilmPageData, error) {
		return s.scraper.Scrape(ctx, *film.ExternalURL), nil
	}, s.opts.Batch, s.logger)
	if err != nil {
		return SyncSummary{}, err
	}

	var submissions []DirectorSubmission
	for _, result := range outcome.Results {
		data := result.Value
		if result.Err != nil || data.Director == nil {
			continue
		}
		submissions = append(submissions, DirectorSubmission{
			FilmID:        pending[result.Index].ID,
			DirectorName:  *data.Director,
			DirectorURL:   data.DirectorURL,
			DirectorSlug:  data.DirectorSlug,
			PosterURL:     data.PosterURL,
			BackdropURL:   data.BackdropURL,
			Rating:        data.Rating,
			Year:          data.Year,
			NationalTitle: data.NationalTitle,
			MovieSlug:     data.FilmSlug,
		})
	}

	summary := SyncSummary{
		Processed:        len(outcome.Results),
		Unresolved:       len(outcome.Results) - len(submissions),
		DeadlineExceeded: outcome.DeadlineExceeded,
	}

	for _, result := range s.submit.Submit(ctx, submissions) {
		if result.Success {
			summary.Resolved++
		} else {
			summary.Failed++
		}
	}

	s.logger.InfoContext(ctx, "director sync finished",
		"processed", summary.Processed, "resolved", summary.Resolved,
		"unresolved", summary.Unresolved, "failed", summary.Failed,
		"deadline_exceeded", summary.DeadlineExceeded)

	return summary, nil
}
