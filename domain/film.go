package domain

import (
	"time"
)

// Film represents a film entity. Films enter with DirectorID nil when they
// come from a CSV import; the director scrape fills it in later.
type Film struct {
	CreatedAt     time.Time `db:"created_at"`
	ID            string    `db:"id"`
	Title         string    `db:"title"`
	NationalTitle *string   `db:"national_title"`
	Year          *int      `db:"year"`
	ExternalURL   *string   `db:"external_url"`
	DirectorID    *string   `db:"director_id"`
	PosterURL     *string   `db:"poster_url"`
	BackdropURL   *string   `db:"backdrop_url"`
	Rating        *float64  `db:"rating"`
	Duration      *int      `db:"duration"`
	Slug          *string   `db:"slug"`
}

// Director represents a film director. Slug is nil for names harvested
// only via venue scrapes.
type Director struct {
	CreatedAt         time.Time `db:"created_at"`
	ID                string    `db:"id"`
	Name              string    `db:"name"`
	Slug              *string   `db:"slug"`
	ExternalURL       *string   `db:"external_url"`
	AvatarURL         *string   `db:"avatar_url"`
	Bio               *string   `db:"bio"`
	ExternalCatalogID *string   `db:"external_catalog_id"`
}

// UserFilm links a user to a film imported from their Letterboxd export.
type UserFilm struct {
	CreatedAt time.Time `db:"created_at"`
	UserID    string    `db:"user_id"`
	FilmID    string    `db:"film_id"`
	Rating    *float64  `db:"rating"`
}

// UserDirector is the materialized follow edge: a user follows a director
// iff at least one of their films is linked to that director.
type UserDirector struct {
	CreatedAt  time.Time `db:"created_at"`
	UserID     string    `db:"user_id"`
	DirectorID string    `db:"director_id"`
}
