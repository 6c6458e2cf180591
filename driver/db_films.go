// ABOUTME: This file holds the raw SQL for the films table
// ABOUTME: Upserts key on external_url; normalized title columns back the reconciliation candidate query
package driver

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
)

const filmColumns = `id, title, national_title, year, external_url, director_id,
	poster_url, backdrop_url, rating, duration, slug, created_at`

func scanFilm(row pgx.Row) (*domain.Film, error) {
	var film domain.Film
	err := row.Scan(&film.ID, &film.Title, &film.NationalTitle, &film.Year,
		&film.ExternalURL, &film.DirectorID, &film.PosterURL, &film.BackdropURL,
		&film.Rating, &film.Duration, &film.Slug, &film.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &film, nil
}

// UpsertFilm inserts a film or, when external_url already exists, updates the
// fields whose incoming value is non-null. An existing director_id is never
// overwritten. The film's ID is filled in either way; the return value
// reports whether a new row was created.
func UpsertFilm(ctx context.Context, db *pgxpool.Pool, film *domain.Film) (bool, error) {
	query := `
	INSERT INTO films (title, title_normalized, national_title, national_title_normalized,
		year, external_url, director_id, poster_url, backdrop_url, rating, duration, slug)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (external_url) DO UPDATE SET
		national_title            = COALESCE(EXCLUDED.national_title, films.national_title),
		national_title_normalized = COALESCE(EXCLUDED.national_title_normalized, films.national_title_normalized),
		year         = COALESCE(EXCLUDED.year, films.year),
		director_id  = COALESCE(films.director_id, EXCLUDED.director_id),
		poster_url   = COALESCE(EXCLUDED.poster_url, films.poster_url),
		backdrop_url = COALESCE(EXCLUDED.backdrop_url, films.backdrop_url),
		rating       = COALESCE(EXCLUDED.rating, films.rating),
		duration     = COALESCE(EXCLUDED.duration, films.duration),
		slug         = COALESCE(EXCLUDED.slug, films.slug),
		updated_at   = now()
	RETURNING id, (xmax = 0)
	`

	var nationalNormalized *string
	if film.NationalTitle != nil {
		normalized := domain.Normalize(*film.NationalTitle)
		nationalNormalized = &normalized
	}

	var inserted bool
	err := retryDBOperation(ctx, func() error {
		return db.QueryRow(ctx, query,
			film.Title, domain.Normalize(film.Title), film.NationalTitle, nationalNormalized,
			film.Year, film.ExternalURL, film.DirectorID, film.PosterURL, film.BackdropURL,
			film.Rating, film.Duration, film.Slug,
		).Scan(&film.ID, &inserted)
	})
	if err != nil {
		return false, classifyError(err)
	}

	return inserted, nil
}

// FindFilmByExternalURL returns (nil, nil) when no film has that URL.
func FindFilmByExternalURL(ctx context.Context, db *pgxpool.Pool, url string) (*domain.Film, error) {
	query := `SELECT ` + filmColumns + ` FROM films WHERE external_url = $1`

	film, err := scanFilm(db.QueryRow(ctx, query, url))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return film, nil
}

// PendingFilms returns films that have a page URL but no director yet,
// oldest first.
func PendingFilms(ctx context.Context, db *pgxpool.Pool, limit int) ([]domain.Film, error) {
	query := `
	SELECT ` + filmColumns + `
	FROM films
	WHERE external_url IS NOT NULL AND director_id IS NULL
	ORDER BY created_at ASC, id ASC
	LIMIT $1
	`

	rows, err := db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var films []domain.Film
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		films = append(films, *film)
	}

	return films, rows.Err()
}

// CountPendingFilms returns how many films still lack a director.
func CountPendingFilms(ctx context.Context, db *pgxpool.Pool) (int, error) {
	query := `SELECT count(*) FROM films WHERE external_url IS NOT NULL AND director_id IS NULL`

	var count int
	if err := db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// FilmCandidate is a film row joined with its director's name for scoring.
type FilmCandidate struct {
	Film         domain.Film
	DirectorName *string
}

// CandidateFilms returns films whose normalized title or national title
// contains the given normalized title, in stable insertion order.
func CandidateFilms(ctx context.Context, db *pgxpool.Pool, normalizedTitle string) ([]FilmCandidate, error) {
	query := `
	SELECT f.id, f.title, f.national_title, f.year, f.external_url, f.director_id,
		f.poster_url, f.backdrop_url, f.rating, f.duration, f.slug, f.created_at,
		d.name
	FROM films f
	LEFT JOIN directors d ON d.id = f.director_id
	WHERE position($1 in f.title_normalized) > 0
		OR position($1 in coalesce(f.national_title_normalized, '')) > 0
	ORDER BY f.created_at ASC, f.id ASC
	`

	rows, err := db.Query(ctx, query, normalizedTitle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []FilmCandidate
	for rows.Next() {
		var c FilmCandidate
		err := rows.Scan(&c.Film.ID, &c.Film.Title, &c.Film.NationalTitle, &c.Film.Year,
			&c.Film.ExternalURL, &c.Film.DirectorID, &c.Film.PosterURL, &c.Film.BackdropURL,
			&c.Film.Rating, &c.Film.Duration, &c.Film.Slug, &c.Film.CreatedAt, &c.DirectorName)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

// AttachFilmDirector sets director_id only when it is currently null and
// reports whether the transition happened. Materialization of user_directors
// keys off that report.
func AttachFilmDirector(ctx context.Context, db *pgxpool.Pool, filmID, directorID string) (bool, error) {
	query := `UPDATE films SET director_id = $2, updated_at = now() WHERE id = $1 AND director_id IS NULL`

	tag, err := db.Exec(ctx, query, filmID, directorID)
	if err != nil {
		return false, classifyError(err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateFilmDetails writes the fields a director scrape produces, leaving
// non-null existing values in place for everything except rating and year.
func UpdateFilmDetails(ctx context.Context, db *pgxpool.Pool, film *domain.Film) error {
	query := `
	UPDATE films SET
		national_title            = COALESCE($2, national_title),
		national_title_normalized = COALESCE($3, national_title_normalized),
		year         = COALESCE($4, year),
		poster_url   = COALESCE($5, poster_url),
		backdrop_url = COALESCE($6, backdrop_url),
		rating       = COALESCE($7, rating),
		slug         = COALESCE($8, slug),
		updated_at   = now()
	WHERE id = $1
	`

	var nationalNormalized *string
	if film.NationalTitle != nil {
		normalized := domain.Normalize(*film.NationalTitle)
		nationalNormalized = &normalized
	}

	_, err := db.Exec(ctx, query, film.ID, film.NationalTitle, nationalNormalized,
		film.Year, film.PosterURL, film.BackdropURL, film.Rating, film.Slug)
	return classifyError(err)
}
