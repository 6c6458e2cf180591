// ABOUTME: This file implements ScreeningRepository over the driver SQL
// ABOUTME: Window queries chunk their id sets to at most 50 values per statement
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
	"cienaga/driver"
)

type screeningRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewScreeningRepository creates a new screening repository.
func NewScreeningRepository(db *pgxpool.Pool, logger *slog.Logger) ScreeningRepository {
	return &screeningRepository{db: db, logger: logger}
}

func (r *screeningRepository) Insert(ctx context.Context, screening *domain.Screening) (bool, error) {
	inserted, err := driver.InsertScreening(ctx, r.db, screening)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to insert screening",
			"film_id", screening.FilmID, "cinema_id", screening.CinemaID, "error", err)
		return false, fmt.Errorf("failed to insert screening: %w", err)
	}
	return inserted, nil
}

func (r *screeningRepository) InsertTimes(ctx context.Context, screeningID string, times []time.Time) error {
	if err := driver.InsertScreeningTimes(ctx, r.db, screeningID, times); err != nil {
		return fmt.Errorf("failed to insert screening times: %w", err)
	}
	return nil
}

func (r *screeningRepository) ForFilms(ctx context.Context, filmIDs []string, from, to time.Time) ([]driver.ScreeningHit, error) {
	var hits []driver.ScreeningHit
	for _, ids := range chunk(filmIDs) {
		part, err := driver.ScreeningsForFilms(ctx, r.db, ids, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to query screenings for films: %w", err)
		}
		hits = append(hits, part...)
	}
	return hits, nil
}

func (r *screeningRepository) ForDirectors(ctx context.Context, directorIDs []string, from, to time.Time) ([]driver.ScreeningHit, error) {
	var hits []driver.ScreeningHit
	for _, ids := range chunk(directorIDs) {
		part, err := driver.ScreeningsForDirectors(ctx, r.db, ids, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to query screenings for directors: %w", err)
		}
		hits = append(hits, part...)
	}
	return hits, nil
}

func (r *screeningRepository) Upcoming(ctx context.Context, from, to time.Time) ([]driver.ScreeningHit, error) {
	hits, err := driver.UpcomingScreenings(ctx, r.db, from, to)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to query upcoming screenings", "error", err)
		return nil, fmt.Errorf("failed to query upcoming screenings: %w", err)
	}
	return hits, nil
}
