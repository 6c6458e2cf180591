// ABOUTME: This file persists one venue scrape batch: reconcile each film, then conflict-skip the screening
package service

import (
	"context"
	"fmt"
	"log/slog"

	"cienaga/domain"
	"cienaga/repository"
	"cienaga/scraper"
)

// BatchOutcome reports one screening batch. Successful counts newly created
// screenings; re-submitted duplicates are processed but not successful.
type BatchOutcome struct {
	Processed  int
	Successful int
	Failed     int
}

// ScreeningBatch persists scraped screenings for one cinema.
type ScreeningBatch struct {
	films      repository.FilmRepository
	directors  repository.DirectorRepository
	users      repository.UserRepository
	screenings repository.ScreeningRepository
	logger     *slog.Logger
}

// NewScreeningBatch creates a new screening batch service.
func NewScreeningBatch(films repository.FilmRepository, directors repository.DirectorRepository, users repository.UserRepository, screenings repository.ScreeningRepository, logger *slog.Logger) *ScreeningBatch {
	return &ScreeningBatch{films: films, directors: directors, users: users, screenings: screenings, logger: logger}
}

// Submit reconciles and stores each screening. A fresh reconciler scopes the
// director cache to this batch.
func (s *ScreeningBatch) Submit(ctx context.Context, cinemaID string, items []scraper.Screening) (BatchOutcome, error) {
	if cinemaID == "" {
		return BatchOutcome{}, fmt.Errorf("%w: missing cinema id", domain.ErrInvalidInput)
	}

	reconciler := NewReconciler(s.films, s.directors, s.users, s.logger)

	var outcome BatchOutcome
	for _, item := range items {
		outcome.Processed++

		inserted, err := s.store(ctx, reconciler, cinemaID, item)
		if err != nil {
			s.logger.ErrorContext(ctx, "screening rejected",
				"cinema_id", cinemaID, "title", item.Title, "error", err)
			outcome.Failed++
			continue
		}
		if inserted {
			outcome.Successful++
		}
	}

	s.logger.InfoContext(ctx, "screening batch stored", "cinema_id", cinemaID,
		"processed", outcome.Processed, "successful", outcome.Successful, "failed", outcome.Failed)

	return outcome, nil
}

func (s *ScreeningBatch) store(ctx context.Context, reconciler *Reconciler, cinemaID string, item scraper.Screening) (bool, error) {
	if len(item.Times) == 0 {
		return false, fmt.Errorf("%w: no future times", domain.ErrItemSkipped)
	}

	filmID, err := reconciler.Reconcile(ctx, IncomingFilm{
		Title:         item.Title,
		NationalTitle: item.NationalTitle,
		Director:      item.Director,
		Year:          item.Year,
		Duration:      item.Duration,
	})
	if err != nil {
		return false, err
	}

	screening := domain.Screening{
		FilmID:              filmID,
		CinemaID:            cinemaID,
		ScheduleFingerprint: domain.ScheduleFingerprint(item.ScheduleText),
		EventType:           item.EventType,
		Description:         item.Description,
		Room:                item.Room,
		OriginalURL:         item.OriginalURL,
		ThumbnailURL:        item.ThumbnailURL,
		ScheduleText:        item.ScheduleText,
	}

	inserted, err := s.screenings.Insert(ctx, &screening)
	if err != nil {
		return false, err
	}
	if !inserted {
		// Same fingerprint seen before: the times are already stored.
		return false, nil
	}

	return true, s.screenings.InsertTimes(ctx, screening.ID, item.Times)
}
