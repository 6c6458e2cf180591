// ABOUTME: This file implements CinemaRepository over the driver SQL
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
	"cienaga/driver"
)

type cinemaRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewCinemaRepository creates a new cinema repository.
func NewCinemaRepository(db *pgxpool.Pool, logger *slog.Logger) CinemaRepository {
	return &cinemaRepository{db: db, logger: logger}
}

func (r *cinemaRepository) Upsert(ctx context.Context, cinema *domain.Cinema) error {
	if err := driver.UpsertCinema(ctx, r.db, cinema); err != nil {
		return fmt.Errorf("failed to upsert cinema: %w", err)
	}
	return nil
}

func (r *cinemaRepository) Enabled(ctx context.Context) ([]domain.Cinema, error) {
	cinemas, err := driver.EnabledCinemas(ctx, r.db)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to list enabled cinemas", "error", err)
		return nil, fmt.Errorf("failed to list enabled cinemas: %w", err)
	}
	return cinemas, nil
}

func (r *cinemaRepository) FindBySlug(ctx context.Context, slug string) (*domain.Cinema, error) {
	cinema, err := driver.FindCinemaBySlug(ctx, r.db, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to find cinema by slug: %w", err)
	}
	return cinema, nil
}

func (r *cinemaRepository) FindByID(ctx context.Context, id string) (*domain.Cinema, error) {
	cinema, err := driver.FindCinemaByID(ctx, r.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find cinema by id: %w", err)
	}
	return cinema, nil
}
