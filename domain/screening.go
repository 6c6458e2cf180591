package domain

import (
	"time"
)

// Cinema represents a venue on the curated allow-list. Slug selects the
// scraper adapter.
type Cinema struct {
	CreatedAt time.Time `db:"created_at"`
	ID        string    `db:"id"`
	Slug      string    `db:"slug"`
	Name      string    `db:"name"`
	BaseURL   string    `db:"base_url"`
	ImageURL  *string   `db:"image_url"`
	Enabled   bool      `db:"enabled"`
}

// Screening represents a scheduled projection of a film at a cinema.
// (FilmID, CinemaID, ScheduleFingerprint) is unique.
type Screening struct {
	CreatedAt           time.Time `db:"created_at"`
	ID                  string    `db:"id"`
	FilmID              string    `db:"film_id"`
	CinemaID            string    `db:"cinema_id"`
	ScheduleFingerprint string    `db:"schedule_fingerprint"`
	EventType           *string   `db:"event_type"`
	Description         *string   `db:"description"`
	Room                *string   `db:"room"`
	OriginalURL         string    `db:"original_url"`
	ThumbnailURL        *string   `db:"thumbnail_url"`
	ScheduleText        string    `db:"schedule_text"`
}

// ScreeningTime is one concrete instant of a screening, stored in UTC.
type ScreeningTime struct {
	ID          string    `db:"id"`
	ScreeningID string    `db:"screening_id"`
	Instant     time.Time `db:"instant"`
}

// Notification is the immutable audit record of one dispatched email.
type Notification struct {
	SentAt       time.Time `db:"sent_at"`
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	ScreeningIDs []string  `db:"screening_ids"`
	Subject      string    `db:"subject"`
}

// User is the slice of the account record the pipeline needs for
// notifications. Account management itself lives outside this service.
type User struct {
	ID       string `db:"id"`
	Email    string `db:"email"`
	FullName string `db:"full_name"`
}
