// ABOUTME: This file applies film-director submissions: director upsert, attach, edge materialization
package service

import (
	"context"
	"fmt"
	"log/slog"

	"cienaga/domain"
	"cienaga/letterboxd"
	"cienaga/repository"
)

// DirectorSubmission is one resolved film from a director scrape.
type DirectorSubmission struct {
	FilmID        string
	DirectorName  string
	DirectorURL   *string
	DirectorSlug  *string
	PosterURL     *string
	BackdropURL   *string
	Rating        *float64
	Year          *int
	NationalTitle *string
	MovieSlug     *string
}

// SubmissionResult is the per-item outcome of a batch submission.
type SubmissionResult struct {
	FilmID  string
	Success bool
	Error   string
}

// DirectorBatch persists director scrape results. Failures stay per-item.
type DirectorBatch struct {
	films     repository.FilmRepository
	directors repository.DirectorRepository
	users     repository.UserRepository
	logger    *slog.Logger
}

// NewDirectorBatch creates a new director batch service.
func NewDirectorBatch(films repository.FilmRepository, directors repository.DirectorRepository, users repository.UserRepository, logger *slog.Logger) *DirectorBatch {
	return &DirectorBatch{films: films, directors: directors, users: users, logger: logger}
}

// Submit applies each submission and reports per-item results in input order.
func (s *DirectorBatch) Submit(ctx context.Context, items []DirectorSubmission) []SubmissionResult {
	results := make([]SubmissionResult, 0, len(items))
	for _, item := range items {
		result := SubmissionResult{FilmID: item.FilmID, Success: true}
		if err := s.apply(ctx, item); err != nil {
			s.logger.ErrorContext(ctx, "director submission failed", "film_id", item.FilmID, "error", err)
			result.Success = false
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

func (s *DirectorBatch) apply(ctx context.Context, item DirectorSubmission) error {
	if item.FilmID == "" {
		return fmt.Errorf("%w: missing film id", domain.ErrInvalidInput)
	}

	name := letterboxd.CleanDirectorName(item.DirectorName)
	if name == nil {
		return fmt.Errorf("%w: invalid director name %q", domain.ErrInvalidInput, item.DirectorName)
	}

	director := domain.Director{
		Name:        *name,
		Slug:        item.DirectorSlug,
		ExternalURL: item.DirectorURL,
	}
	if err := s.directors.Upsert(ctx, &director); err != nil {
		return err
	}

	transitioned, err := s.films.AttachDirector(ctx, item.FilmID, director.ID)
	if err != nil {
		return err
	}
	if transitioned {
		if _, err := s.users.MaterializeUserDirectors(ctx, item.FilmID, director.ID); err != nil {
			return err
		}
	}

	film := domain.Film{
		ID:            item.FilmID,
		NationalTitle: item.NationalTitle,
		Year:          item.Year,
		PosterURL:     item.PosterURL,
		BackdropURL:   item.BackdropURL,
		Rating:        item.Rating,
		Slug:          item.MovieSlug,
	}
	return s.films.UpdateDetails(ctx, &film)
}
