// ABOUTME: This file holds the raw SQL for screenings and screening_times
// ABOUTME: Screenings conflict-skip on (film_id, cinema_id, schedule_fingerprint); times only follow fresh inserts
package driver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
)

// InsertScreening inserts a screening, or reports it as already present when
// the (film, cinema, fingerprint) key exists. The screening's ID is filled
// in either way; times must only be written when inserted is true.
func InsertScreening(ctx context.Context, db *pgxpool.Pool, screening *domain.Screening) (bool, error) {
	insert := `
	INSERT INTO screenings (film_id, cinema_id, schedule_fingerprint, event_type,
		description, room, original_url, thumbnail_url, schedule_text)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (film_id, cinema_id, schedule_fingerprint) DO NOTHING
	RETURNING id
	`

	err := db.QueryRow(ctx, insert,
		screening.FilmID, screening.CinemaID, screening.ScheduleFingerprint,
		screening.EventType, screening.Description, screening.Room,
		screening.OriginalURL, screening.ThumbnailURL, screening.ScheduleText,
	).Scan(&screening.ID)
	if err == nil {
		return true, nil
	}
	if err != pgx.ErrNoRows {
		return false, classifyError(err)
	}

	// Conflict path: DO NOTHING returns no row, so look the id up.
	lookup := `SELECT id FROM screenings WHERE film_id = $1 AND cinema_id = $2 AND schedule_fingerprint = $3`
	if err := db.QueryRow(ctx, lookup, screening.FilmID, screening.CinemaID, screening.ScheduleFingerprint).Scan(&screening.ID); err != nil {
		return false, err
	}
	return false, nil
}

// InsertScreeningTimes writes the screening's instants as one batch,
// normalized to UTC.
func InsertScreeningTimes(ctx context.Context, db *pgxpool.Pool, screeningID string, times []time.Time) error {
	if len(times) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, instant := range times {
		batch.Queue(
			`INSERT INTO screening_times (id, screening_id, instant) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			uuid.NewString(), screeningID, instant.UTC(),
		)
	}

	return retryDBOperation(ctx, func() error {
		results := db.SendBatch(ctx, batch)
		defer results.Close()

		for range times {
			if _, err := results.Exec(); err != nil {
				return classifyError(err)
			}
		}
		return nil
	})
}

// ScreeningHit is one (screening, instant) row from a window query, joined
// with the film facts the match and notification layers need.
type ScreeningHit struct {
	Screening  domain.Screening
	FilmTitle  string
	DirectorID *string
	Instant    time.Time
}

const screeningHitColumns = `
	s.id, s.film_id, s.cinema_id, s.schedule_fingerprint, s.event_type,
	s.description, s.room, s.original_url, s.thumbnail_url, s.schedule_text, s.created_at,
	f.title, f.director_id, st.instant`

func scanScreeningHits(rows pgx.Rows) ([]ScreeningHit, error) {
	defer rows.Close()

	var hits []ScreeningHit
	for rows.Next() {
		var h ScreeningHit
		err := rows.Scan(&h.Screening.ID, &h.Screening.FilmID, &h.Screening.CinemaID,
			&h.Screening.ScheduleFingerprint, &h.Screening.EventType, &h.Screening.Description,
			&h.Screening.Room, &h.Screening.OriginalURL, &h.Screening.ThumbnailURL,
			&h.Screening.ScheduleText, &h.Screening.CreatedAt,
			&h.FilmTitle, &h.DirectorID, &h.Instant)
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}

	return hits, rows.Err()
}

// ScreeningsForFilms returns the (screening, instant) rows in (from, to]
// whose film is one of the given ids.
func ScreeningsForFilms(ctx context.Context, db *pgxpool.Pool, filmIDs []string, from, to time.Time) ([]ScreeningHit, error) {
	if len(filmIDs) == 0 {
		return nil, nil
	}

	query := `
	SELECT ` + screeningHitColumns + `
	FROM screenings s
	JOIN films f ON f.id = s.film_id
	JOIN screening_times st ON st.screening_id = s.id
	WHERE s.film_id = ANY($1)
		AND st.instant > $2 AND st.instant <= $3
	ORDER BY st.instant ASC
	`

	rows, err := db.Query(ctx, query, filmIDs, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	return scanScreeningHits(rows)
}

// ScreeningsForDirectors returns the (screening, instant) rows in (from, to]
// whose film is directed by one of the given directors.
func ScreeningsForDirectors(ctx context.Context, db *pgxpool.Pool, directorIDs []string, from, to time.Time) ([]ScreeningHit, error) {
	if len(directorIDs) == 0 {
		return nil, nil
	}

	query := `
	SELECT ` + screeningHitColumns + `
	FROM screenings s
	JOIN films f ON f.id = s.film_id
	JOIN screening_times st ON st.screening_id = s.id
	WHERE f.director_id = ANY($1)
		AND st.instant > $2 AND st.instant <= $3
	ORDER BY st.instant ASC
	`

	rows, err := db.Query(ctx, query, directorIDs, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	return scanScreeningHits(rows)
}

// UpcomingScreenings returns every (screening, instant) row in (from, to].
func UpcomingScreenings(ctx context.Context, db *pgxpool.Pool, from, to time.Time) ([]ScreeningHit, error) {
	query := `
	SELECT ` + screeningHitColumns + `
	FROM screenings s
	JOIN films f ON f.id = s.film_id
	JOIN screening_times st ON st.screening_id = s.id
	WHERE st.instant > $1 AND st.instant <= $2
	ORDER BY st.instant ASC
	`

	rows, err := db.Query(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	return scanScreeningHits(rows)
}
