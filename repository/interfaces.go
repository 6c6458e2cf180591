// ABOUTME: This file declares the persistence interfaces the services depend on
// ABOUTME: Implementations wrap the driver package; tests substitute hand-rolled fakes
package repository

import (
	"context"
	"time"

	"cienaga/domain"
	"cienaga/driver"
)

// FilmRepository handles film persistence and the reconciliation candidate
// query.
type FilmRepository interface {
	Upsert(ctx context.Context, film *domain.Film) (inserted bool, err error)
	FindByExternalURL(ctx context.Context, url string) (*domain.Film, error)
	Pending(ctx context.Context, limit int) ([]domain.Film, error)
	CountPending(ctx context.Context) (int, error)
	Candidates(ctx context.Context, normalizedTitle string) ([]driver.FilmCandidate, error)
	AttachDirector(ctx context.Context, filmID, directorID string) (transitioned bool, err error)
	UpdateDetails(ctx context.Context, film *domain.Film) error
}

// DirectorRepository handles director persistence.
type DirectorRepository interface {
	Upsert(ctx context.Context, director *domain.Director) error
	FindByNormalizedName(ctx context.Context, normalized string) (*domain.Director, error)
}

// CinemaRepository handles the venue allow-list.
type CinemaRepository interface {
	Upsert(ctx context.Context, cinema *domain.Cinema) error
	Enabled(ctx context.Context) ([]domain.Cinema, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Cinema, error)
	FindByID(ctx context.Context, id string) (*domain.Cinema, error)
}

// ScreeningRepository handles screenings and their times.
type ScreeningRepository interface {
	Insert(ctx context.Context, screening *domain.Screening) (inserted bool, err error)
	InsertTimes(ctx context.Context, screeningID string, times []time.Time) error
	ForFilms(ctx context.Context, filmIDs []string, from, to time.Time) ([]driver.ScreeningHit, error)
	ForDirectors(ctx context.Context, directorIDs []string, from, to time.Time) ([]driver.ScreeningHit, error)
	Upcoming(ctx context.Context, from, to time.Time) ([]driver.ScreeningHit, error)
}

// UserRepository handles users, their imported films and the materialized
// follow edges.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpsertUserFilm(ctx context.Context, userID, filmID string, rating *float64) error
	FilmIDs(ctx context.Context, userID string) ([]string, error)
	DirectorIDs(ctx context.Context, userID string) ([]string, error)
	MaterializeUserDirectors(ctx context.Context, filmID, directorID string) (int, error)
	DirectorFollowers(ctx context.Context, directorIDs []string) ([]driver.FollowerEdge, error)
}

// NotificationRepository handles the dispatch audit log.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	NotifiedScreeningIDs(ctx context.Context, userID string, since time.Time) ([]string, error)
}
