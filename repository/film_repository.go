// ABOUTME: This file implements FilmRepository over the driver SQL
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
	"cienaga/driver"
)

type filmRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewFilmRepository creates a new film repository.
func NewFilmRepository(db *pgxpool.Pool, logger *slog.Logger) FilmRepository {
	return &filmRepository{db: db, logger: logger}
}

func (r *filmRepository) Upsert(ctx context.Context, film *domain.Film) (bool, error) {
	inserted, err := driver.UpsertFilm(ctx, r.db, film)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to upsert film", "title", film.Title, "error", err)
		return false, fmt.Errorf("failed to upsert film: %w", err)
	}
	return inserted, nil
}

func (r *filmRepository) FindByExternalURL(ctx context.Context, url string) (*domain.Film, error) {
	film, err := driver.FindFilmByExternalURL(ctx, r.db, url)
	if err != nil {
		return nil, fmt.Errorf("failed to find film by url: %w", err)
	}
	return film, nil
}

func (r *filmRepository) Pending(ctx context.Context, limit int) ([]domain.Film, error) {
	films, err := driver.PendingFilms(ctx, r.db, limit)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to list pending films", "error", err)
		return nil, fmt.Errorf("failed to list pending films: %w", err)
	}

	r.logger.InfoContext(ctx, "listed pending films", "count", len(films))

	return films, nil
}

func (r *filmRepository) CountPending(ctx context.Context) (int, error) {
	count, err := driver.CountPendingFilms(ctx, r.db)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending films: %w", err)
	}
	return count, nil
}

func (r *filmRepository) Candidates(ctx context.Context, normalizedTitle string) ([]driver.FilmCandidate, error) {
	candidates, err := driver.CandidateFilms(ctx, r.db, normalizedTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to query film candidates: %w", err)
	}
	return candidates, nil
}

func (r *filmRepository) AttachDirector(ctx context.Context, filmID, directorID string) (bool, error) {
	transitioned, err := driver.AttachFilmDirector(ctx, r.db, filmID, directorID)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to attach director", "film_id", filmID, "director_id", directorID, "error", err)
		return false, fmt.Errorf("failed to attach director: %w", err)
	}
	return transitioned, nil
}

func (r *filmRepository) UpdateDetails(ctx context.Context, film *domain.Film) error {
	if err := driver.UpdateFilmDetails(ctx, r.db, film); err != nil {
		return fmt.Errorf("failed to update film details: %w", err)
	}
	return nil
}
