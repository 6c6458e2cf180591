// ABOUTME: This file holds the raw SQL for the directors table
// ABOUTME: Uniqueness is (name_normalized, slug) with nulls not distinct
package driver

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
)

// UpsertDirector inserts a director or reuses the row with the same
// (name_normalized, slug), filling the director's ID either way.
func UpsertDirector(ctx context.Context, db *pgxpool.Pool, director *domain.Director) error {
	query := `
	INSERT INTO directors (name, name_normalized, slug, external_url, avatar_url, bio, external_catalog_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (name_normalized, slug) DO UPDATE SET
		external_url        = COALESCE(EXCLUDED.external_url, directors.external_url),
		avatar_url          = COALESCE(EXCLUDED.avatar_url, directors.avatar_url),
		bio                 = COALESCE(EXCLUDED.bio, directors.bio),
		external_catalog_id = COALESCE(EXCLUDED.external_catalog_id, directors.external_catalog_id)
	RETURNING id
	`

	err := retryDBOperation(ctx, func() error {
		return db.QueryRow(ctx, query,
			director.Name, domain.Normalize(director.Name), director.Slug,
			director.ExternalURL, director.AvatarURL, director.Bio, director.ExternalCatalogID,
		).Scan(&director.ID)
	})
	return classifyError(err)
}

// FindDirectorByNormalizedName returns the oldest director row with that
// normalized name, or (nil, nil) when none exists. Venue scrapes carry no
// slug, so find-or-create keys on the name alone.
func FindDirectorByNormalizedName(ctx context.Context, db *pgxpool.Pool, normalized string) (*domain.Director, error) {
	query := `
	SELECT id, name, slug, external_url, avatar_url, bio, external_catalog_id, created_at
	FROM directors
	WHERE name_normalized = $1
	ORDER BY created_at ASC, id ASC
	LIMIT 1
	`

	var director domain.Director
	err := db.QueryRow(ctx, query, normalized).Scan(&director.ID, &director.Name,
		&director.Slug, &director.ExternalURL, &director.AvatarURL, &director.Bio,
		&director.ExternalCatalogID, &director.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &director, nil
}
