// ABOUTME: This file turns a user's Letterboxd export into film and user_film rows
package service

import (
	"context"
	"io"
	"log/slog"

	"cienaga/domain"
	"cienaga/letterboxd"
	"cienaga/repository"
)

// ImportSummary reports one CSV import run.
type ImportSummary struct {
	Films     int
	UserFilms int
	Failed    int
}

// Importer persists Letterboxd CSV exports for one user. Films enter with a
// null director; the director scrape resolves them later.
type Importer struct {
	films  repository.FilmRepository
	users  repository.UserRepository
	logger *slog.Logger
}

// NewImporter creates a new importer.
func NewImporter(films repository.FilmRepository, users repository.UserRepository, logger *slog.Logger) *Importer {
	return &Importer{films: films, users: users, logger: logger}
}

// Import parses the watched and ratings files (either may be nil) and
// upserts a film plus a user_film row per deduplicated entry. Parse failure
// surfaces as ErrInvalidInput; per-row persistence failures are counted.
func (s *Importer) Import(ctx context.Context, userID string, watched, ratings io.Reader) (ImportSummary, error) {
	imported, err := letterboxd.ImportCSV(watched, ratings)
	if err != nil {
		return ImportSummary{}, err
	}

	var summary ImportSummary
	for _, entry := range imported {
		film := domain.Film{Title: entry.Title, Year: entry.Year}
		if entry.URL != "" {
			url := entry.URL
			film.ExternalURL = &url
		}

		if _, err := s.films.Upsert(ctx, &film); err != nil {
			s.logger.ErrorContext(ctx, "failed to persist imported film", "title", entry.Title, "error", err)
			summary.Failed++
			continue
		}
		summary.Films++

		if err := s.users.UpsertUserFilm(ctx, userID, film.ID, entry.Rating); err != nil {
			s.logger.ErrorContext(ctx, "failed to link imported film", "title", entry.Title, "user_id", userID, "error", err)
			summary.Failed++
			continue
		}
		summary.UserFilms++
	}

	s.logger.InfoContext(ctx, "csv import finished",
		"user_id", userID, "films", summary.Films, "user_films", summary.UserFilms, "failed", summary.Failed)

	return summary, nil
}
