// ABOUTME: This file bootstraps the eight pipeline tables plus the user slice
// ABOUTME: Every statement is idempotent so Bootstrap can run on every start
package driver

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
)

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS users (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		email      text NOT NULL UNIQUE,
		full_name  text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS directors (
		id                  uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name                text NOT NULL,
		name_normalized     text NOT NULL,
		slug                text,
		external_url        text,
		avatar_url          text,
		bio                 text,
		external_catalog_id text,
		created_at          timestamptz NOT NULL DEFAULT now(),
		UNIQUE NULLS NOT DISTINCT (name_normalized, slug)
	)`,

	`CREATE TABLE IF NOT EXISTS films (
		id                        uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		title                     text NOT NULL,
		title_normalized          text NOT NULL,
		national_title            text,
		national_title_normalized text,
		year                      int,
		external_url              text UNIQUE,
		director_id               uuid REFERENCES directors(id),
		poster_url                text,
		backdrop_url              text,
		rating                    real,
		duration                  int,
		slug                      text,
		created_at                timestamptz NOT NULL DEFAULT now(),
		updated_at                timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS films_identity_idx
		ON films (title_normalized, year, director_id)
		WHERE director_id IS NOT NULL`,

	`CREATE INDEX IF NOT EXISTS films_pending_idx
		ON films (created_at)
		WHERE external_url IS NOT NULL AND director_id IS NULL`,

	`CREATE TABLE IF NOT EXISTS cinemas (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		slug       text NOT NULL UNIQUE,
		name       text NOT NULL,
		base_url   text NOT NULL,
		image_url  text,
		enabled    boolean NOT NULL DEFAULT true,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS screenings (
		id                   uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		film_id              uuid NOT NULL REFERENCES films(id),
		cinema_id            uuid NOT NULL REFERENCES cinemas(id),
		schedule_fingerprint text NOT NULL,
		event_type           text,
		description          text,
		room                 text,
		original_url         text NOT NULL DEFAULT '',
		thumbnail_url        text,
		schedule_text        text NOT NULL DEFAULT '',
		created_at           timestamptz NOT NULL DEFAULT now(),
		UNIQUE (film_id, cinema_id, schedule_fingerprint)
	)`,

	`CREATE TABLE IF NOT EXISTS screening_times (
		id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		screening_id uuid NOT NULL REFERENCES screenings(id) ON DELETE CASCADE,
		instant      timestamptz NOT NULL,
		UNIQUE (screening_id, instant)
	)`,

	`CREATE INDEX IF NOT EXISTS screening_times_instant_idx ON screening_times (instant)`,

	`CREATE TABLE IF NOT EXISTS user_films (
		user_id    uuid NOT NULL REFERENCES users(id),
		film_id    uuid NOT NULL REFERENCES films(id),
		rating     real,
		created_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, film_id)
	)`,

	`CREATE TABLE IF NOT EXISTS user_directors (
		user_id     uuid NOT NULL REFERENCES users(id),
		director_id uuid NOT NULL REFERENCES directors(id),
		created_at  timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, director_id)
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id       uuid NOT NULL REFERENCES users(id),
		screening_ids uuid[] NOT NULL,
		subject       text NOT NULL,
		sent_at       timestamptz NOT NULL DEFAULT now()
	)`,
}

// Bootstrap creates the schema if it does not exist yet.
func Bootstrap(ctx context.Context, db *pgxpool.Pool) error {
	for _, statement := range schemaStatements {
		if _, err := db.Exec(ctx, statement); err != nil {
			return fmt.Errorf("%w: bootstrapping schema: %v", domain.ErrFatal, err)
		}
	}
	return nil
}
