// ABOUTME: This file implements DirectorRepository over the driver SQL
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
	"cienaga/driver"
)

type directorRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewDirectorRepository creates a new director repository.
func NewDirectorRepository(db *pgxpool.Pool, logger *slog.Logger) DirectorRepository {
	return &directorRepository{db: db, logger: logger}
}

func (r *directorRepository) Upsert(ctx context.Context, director *domain.Director) error {
	if err := driver.UpsertDirector(ctx, r.db, director); err != nil {
		r.logger.ErrorContext(ctx, "failed to upsert director", "name", director.Name, "error", err)
		return fmt.Errorf("failed to upsert director: %w", err)
	}
	return nil
}

func (r *directorRepository) FindByNormalizedName(ctx context.Context, normalized string) (*domain.Director, error) {
	director, err := driver.FindDirectorByNormalizedName(ctx, r.db, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to find director: %w", err)
	}
	return director, nil
}
