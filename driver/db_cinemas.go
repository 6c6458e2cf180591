// ABOUTME: This file holds the raw SQL for the cinemas allow-list
package driver

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
)

const cinemaColumns = `id, slug, name, base_url, image_url, enabled, created_at`

func scanCinema(row pgx.Row) (*domain.Cinema, error) {
	var cinema domain.Cinema
	err := row.Scan(&cinema.ID, &cinema.Slug, &cinema.Name, &cinema.BaseURL,
		&cinema.ImageURL, &cinema.Enabled, &cinema.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cinema, nil
}

// UpsertCinema inserts or refreshes one allow-list entry keyed on slug.
func UpsertCinema(ctx context.Context, db *pgxpool.Pool, cinema *domain.Cinema) error {
	query := `
	INSERT INTO cinemas (slug, name, base_url, image_url, enabled)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (slug) DO UPDATE SET
		name      = EXCLUDED.name,
		base_url  = EXCLUDED.base_url,
		image_url = COALESCE(EXCLUDED.image_url, cinemas.image_url),
		enabled   = EXCLUDED.enabled
	RETURNING id
	`

	err := db.QueryRow(ctx, query, cinema.Slug, cinema.Name, cinema.BaseURL,
		cinema.ImageURL, cinema.Enabled).Scan(&cinema.ID)
	return classifyError(err)
}

// EnabledCinemas lists the venues the screening scrape should visit.
func EnabledCinemas(ctx context.Context, db *pgxpool.Pool) ([]domain.Cinema, error) {
	query := `SELECT ` + cinemaColumns + ` FROM cinemas WHERE enabled ORDER BY slug ASC`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cinemas []domain.Cinema
	for rows.Next() {
		cinema, err := scanCinema(rows)
		if err != nil {
			return nil, err
		}
		cinemas = append(cinemas, *cinema)
	}

	return cinemas, rows.Err()
}

// FindCinemaBySlug returns (nil, nil) when the slug is unknown.
func FindCinemaBySlug(ctx context.Context, db *pgxpool.Pool, slug string) (*domain.Cinema, error) {
	query := `SELECT ` + cinemaColumns + ` FROM cinemas WHERE slug = $1`

	cinema, err := scanCinema(db.QueryRow(ctx, query, slug))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cinema, nil
}

// FindCinemaByID returns (nil, nil) when the id is unknown.
func FindCinemaByID(ctx context.Context, db *pgxpool.Pool, id string) (*domain.Cinema, error) {
	query := `SELECT ` + cinemaColumns + ` FROM cinemas WHERE id = $1`

	cinema, err := scanCinema(db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cinema, nil
}
