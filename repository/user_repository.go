// ABOUTME: This file implements UserRepository over the driver SQL
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
	"cienaga/driver"
)

type userRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *pgxpool.Pool, logger *slog.Logger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := driver.ListUsers(ctx, r.db)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) UpsertUserFilm(ctx context.Context, userID, filmID string, rating *float64) error {
	if err := driver.UpsertUserFilm(ctx, r.db, userID, filmID, rating); err != nil {
		return fmt.Errorf("failed to upsert user film: %w", err)
	}
	return nil
}

func (r *userRepository) FilmIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := driver.UserFilmIDs(ctx, r.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user films: %w", err)
	}
	return ids, nil
}

func (r *userRepository) DirectorIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := driver.UserDirectorIDs(ctx, r.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user directors: %w", err)
	}
	return ids, nil
}

func (r *userRepository) MaterializeUserDirectors(ctx context.Context, filmID, directorID string) (int, error) {
	created, err := driver.MaterializeUserDirectors(ctx, r.db, filmID, directorID)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to materialize user directors",
			"film_id", filmID, "director_id", directorID, "error", err)
		return 0, fmt.Errorf("failed to materialize user directors: %w", err)
	}

	if created > 0 {
		r.logger.InfoContext(ctx, "materialized user directors",
			"film_id", filmID, "director_id", directorID, "edges", created)
	}

	return created, nil
}

func (r *userRepository) DirectorFollowers(ctx context.Context, directorIDs []string) ([]driver.FollowerEdge, error) {
	var edges []driver.FollowerEdge
	for _, ids := range chunk(directorIDs) {
		part, err := driver.DirectorFollowers(ctx, r.db, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to list director followers: %w", err)
		}
		edges = append(edges, part...)
	}
	return edges, nil
}
