// ABOUTME: This file holds the in-memory repository fakes the service tests share
package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"cienaga/domain"
	"cienaga/driver"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(s string) *string     { return &s }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func timeAt(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// fakeFilmRepo stores films in insertion order, mirroring the stable
// candidate ordering of the real query.
type fakeFilmRepo struct {
	films     []*domain.Film
	directors *fakeDirectorRepo
	nextID    int
	upsertErr error
	attachErr error
}

func newFakeFilmRepo(directors *fakeDirectorRepo) *fakeFilmRepo {
	return &fakeFilmRepo{directors: directors}
}

func (f *fakeFilmRepo) add(film domain.Film) *domain.Film {
	f.nextID++
	film.ID = fmt.Sprintf("film-%d", f.nextID)
	stored := film
	f.films = append(f.films, &stored)
	return &stored
}

func (f *fakeFilmRepo) Upsert(_ context.Context, film *domain.Film) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}

	if film.ExternalURL != nil {
		for _, stored := range f.films {
			if stored.ExternalURL != nil && *stored.ExternalURL == *film.ExternalURL {
				mergeNullable(stored, film)
				film.ID = stored.ID
				return false, nil
			}
		}
	}

	film.ID = f.add(*film).ID
	return true, nil
}

func mergeNullable(stored, incoming *domain.Film) {
	if stored.NationalTitle == nil {
		stored.NationalTitle = incoming.NationalTitle
	}
	if stored.Year == nil {
		stored.Year = incoming.Year
	}
	if stored.DirectorID == nil {
		stored.DirectorID = incoming.DirectorID
	}
	if stored.PosterURL == nil {
		stored.PosterURL = incoming.PosterURL
	}
	if stored.Rating == nil {
		stored.Rating = incoming.Rating
	}
	if stored.Duration == nil {
		stored.Duration = incoming.Duration
	}
}

func (f *fakeFilmRepo) FindByExternalURL(_ context.Context, url string) (*domain.Film, error) {
	for _, stored := range f.films {
		if stored.ExternalURL != nil && *stored.ExternalURL == url {
			return stored, nil
		}
	}
	return nil, nil
}

func (f *fakeFilmRepo) Pending(_ context.Context, limit int) ([]domain.Film, error) {
	var pending []domain.Film
	for _, stored := range f.films {
		if stored.ExternalURL != nil && stored.DirectorID == nil {
			pending = append(pending, *stored)
			if len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

func (f *fakeFilmRepo) CountPending(ctx context.Context) (int, error) {
	pending, _ := f.Pending(ctx, len(f.films)+1)
	return len(pending), nil
}

func (f *fakeFilmRepo) Candidates(_ context.Context, normalizedTitle string) ([]driver.FilmCandidate, error) {
	var candidates []driver.FilmCandidate
	for _, stored := range f.films {
		title := domain.Normalize(stored.Title)
		var national string
		if stored.NationalTitle != nil {
			national = domain.Normalize(*stored.NationalTitle)
		}
		if !strings.Contains(title, normalizedTitle) && !strings.Contains(national, normalizedTitle) {
			continue
		}

		candidate := driver.FilmCandidate{Film: *stored}
		if stored.DirectorID != nil {
			if director := f.directors.byID(*stored.DirectorID); director != nil {
				candidate.DirectorName = &director.Name
			}
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func (f *fakeFilmRepo) AttachDirector(_ context.Context, filmID, directorID string) (bool, error) {
	if f.attachErr != nil {
		return false, f.attachErr
	}
	for _, stored := range f.films {
		if stored.ID == filmID && stored.DirectorID == nil {
			id := directorID
			stored.DirectorID = &id
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFilmRepo) UpdateDetails(_ context.Context, film *domain.Film) error {
	for _, stored := range f.films {
		if stored.ID != film.ID {
			continue
		}
		if film.NationalTitle != nil {
			stored.NationalTitle = film.NationalTitle
		}
		if film.Year != nil {
			stored.Year = film.Year
		}
		if film.PosterURL != nil {
			stored.PosterURL = film.PosterURL
		}
		if film.BackdropURL != nil {
			stored.BackdropURL = film.BackdropURL
		}
		if film.Rating != nil {
			stored.Rating = film.Rating
		}
		if film.Slug != nil {
			stored.Slug = film.Slug
		}
	}
	return nil
}

func (f *fakeFilmRepo) byID(id string) *domain.Film {
	for _, stored := range f.films {
		if stored.ID == id {
			return stored
		}
	}
	return nil
}

type fakeDirectorRepo struct {
	directors []*domain.Director
	nextID    int
}

func (f *fakeDirectorRepo) Upsert(_ context.Context, director *domain.Director) error {
	normalized := domain.Normalize(director.Name)
	for _, stored := range f.directors {
		if domain.Normalize(stored.Name) == normalized && equalPtr(stored.Slug, director.Slug) {
			director.ID = stored.ID
			return nil
		}
	}

	f.nextID++
	director.ID = fmt.Sprintf("director-%d", f.nextID)
	stored := *director
	f.directors = append(f.directors, &stored)
	return nil
}

func (f *fakeDirectorRepo) FindByNormalizedName(_ context.Context, normalized string) (*domain.Director, error) {
	for _, stored := range f.directors {
		if domain.Normalize(stored.Name) == normalized {
			return stored, nil
		}
	}
	return nil, nil
}

func (f *fakeDirectorRepo) byID(id string) *domain.Director {
	for _, stored := range f.directors {
		if stored.ID == id {
			return stored
		}
	}
	return nil
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type fakeUserRepo struct {
	users     []domain.User
	userFilms map[string]map[string]*float64 // user -> film -> rating
	edges     map[string]map[string]bool     // user -> director set
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		userFilms: make(map[string]map[string]*float64),
		edges:     make(map[string]map[string]bool),
	}
}

func (f *fakeUserRepo) ListUsers(_ context.Context) ([]domain.User, error) {
	return f.users, nil
}

func (f *fakeUserRepo) UpsertUserFilm(_ context.Context, userID, filmID string, rating *float64) error {
	if f.userFilms[userID] == nil {
		f.userFilms[userID] = make(map[string]*float64)
	}
	if existing, ok := f.userFilms[userID][filmID]; !ok || existing == nil {
		f.userFilms[userID][filmID] = rating
	}
	return nil
}

func (f *fakeUserRepo) FilmIDs(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for filmID := range f.userFilms[userID] {
		ids = append(ids, filmID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeUserRepo) DirectorIDs(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for directorID := range f.edges[userID] {
		ids = append(ids, directorID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeUserRepo) follow(userID, directorID string) {
	if f.edges[userID] == nil {
		f.edges[userID] = make(map[string]bool)
	}
	f.edges[userID][directorID] = true
}

func (f *fakeUserRepo) MaterializeUserDirectors(_ context.Context, filmID, directorID string) (int, error) {
	created := 0
	for userID, films := range f.userFilms {
		if _, ok := films[filmID]; !ok {
			continue
		}
		if !f.edges[userID][directorID] {
			f.follow(userID, directorID)
			created++
		}
	}
	return created, nil
}

func (f *fakeUserRepo) DirectorFollowers(_ context.Context, directorIDs []string) ([]driver.FollowerEdge, error) {
	wanted := make(map[string]bool, len(directorIDs))
	for _, id := range directorIDs {
		wanted[id] = true
	}

	var userIDs []string
	for userID := range f.edges {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	var result []driver.FollowerEdge
	for _, userID := range userIDs {
		for directorID := range wanted {
			if f.edges[userID][directorID] {
				result = append(result, driver.FollowerEdge{DirectorID: directorID, UserID: userID})
			}
		}
	}
	return result, nil
}

type fakeScreeningRepo struct {
	films      *fakeFilmRepo
	screenings []*domain.Screening
	times      map[string][]time.Time
	nextID     int
	insertErr  error
}

func newFakeScreeningRepo(films *fakeFilmRepo) *fakeScreeningRepo {
	return &fakeScreeningRepo{films: films, times: make(map[string][]time.Time)}
}

func (f *fakeScreeningRepo) Insert(_ context.Context, screening *domain.Screening) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}

	for _, stored := range f.screenings {
		if stored.FilmID == screening.FilmID && stored.CinemaID == screening.CinemaID &&
			stored.ScheduleFingerprint == screening.ScheduleFingerprint {
			screening.ID = stored.ID
			return false, nil
		}
	}

	f.nextID++
	screening.ID = fmt.Sprintf("screening-%d", f.nextID)
	stored := *screening
	f.screenings = append(f.screenings, &stored)
	return true, nil
}

func (f *fakeScreeningRepo) InsertTimes(_ context.Context, screeningID string, times []time.Time) error {
	f.times[screeningID] = append(f.times[screeningID], times...)
	return nil
}

func (f *fakeScreeningRepo) hits(filter func(film *domain.Film) bool, from, to time.Time) []driver.ScreeningHit {
	var hits []driver.ScreeningHit
	for _, stored := range f.screenings {
		film := f.films.byID(stored.FilmID)
		if film == nil || !filter(film) {
			continue
		}
		for _, instant := range f.times[stored.ID] {
			if instant.After(from) && !instant.After(to) {
				hits = append(hits, driver.ScreeningHit{
					Screening:  *stored,
					FilmTitle:  film.Title,
					DirectorID: film.DirectorID,
					Instant:    instant,
				})
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Instant.Before(hits[j].Instant) })
	return hits
}

func (f *fakeScreeningRepo) ForFilms(_ context.Context, filmIDs []string, from, to time.Time) ([]driver.ScreeningHit, error) {
	wanted := make(map[string]bool, len(filmIDs))
	for _, id := range filmIDs {
		wanted[id] = true
	}
	return f.hits(func(film *domain.Film) bool { return wanted[film.ID] }, from, to), nil
}

func (f *fakeScreeningRepo) ForDirectors(_ context.Context, directorIDs []string, from, to time.Time) ([]driver.ScreeningHit, error) {
	wanted := make(map[string]bool, len(directorIDs))
	for _, id := range directorIDs {
		wanted[id] = true
	}
	return f.hits(func(film *domain.Film) bool {
		return film.DirectorID != nil && wanted[*film.DirectorID]
	}, from, to), nil
}

func (f *fakeScreeningRepo) Upcoming(_ context.Context, from, to time.Time) ([]driver.ScreeningHit, error) {
	return f.hits(func(*domain.Film) bool { return true }, from, to), nil
}

type fakeNotificationRepo struct {
	notifications []domain.Notification
	createErr     error
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	notification.ID = fmt.Sprintf("notification-%d", len(f.notifications)+1)
	notification.SentAt = time.Now()
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotificationRepo) NotifiedScreeningIDs(_ context.Context, userID string, since time.Time) ([]string, error) {
	var ids []string
	for _, n := range f.notifications {
		if n.UserID == userID && n.SentAt.After(since) {
			ids = append(ids, n.ScreeningIDs...)
		}
	}
	return ids, nil
}

type fakeCinemaRepo struct {
	cinemas []domain.Cinema
}

func (f *fakeCinemaRepo) Upsert(_ context.Context, cinema *domain.Cinema) error {
	for _, stored := range f.cinemas {
		if stored.Slug == cinema.Slug {
			cinema.ID = stored.ID
			return nil
		}
	}
	cinema.ID = fmt.Sprintf("cinema-%d", len(f.cinemas)+1)
	f.cinemas = append(f.cinemas, *cinema)
	return nil
}

func (f *fakeCinemaRepo) Enabled(_ context.Context) ([]domain.Cinema, error) {
	var enabled []domain.Cinema
	for _, stored := range f.cinemas {
		if stored.Enabled {
			enabled = append(enabled, stored)
		}
	}
	return enabled, nil
}

func (f *fakeCinemaRepo) FindBySlug(_ context.Context, slug string) (*domain.Cinema, error) {
	for _, stored := range f.cinemas {
		if stored.Slug == slug {
			cinema := stored
			return &cinema, nil
		}
	}
	return nil, nil
}

func (f *fakeCinemaRepo) FindByID(_ context.Context, id string) (*domain.Cinema, error) {
	for _, stored := range f.cinemas {
		if stored.ID == id {
			cinema := stored
			return &cinema, nil
		}
	}
	return nil, nil
}

// fakeMailer records sent emails and can fail for chosen recipients.
type fakeMailer struct {
	sent    []sentMail
	failFor map[string]bool
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if f.failFor[to] {
		return fmt.Errorf("smtp refused %s", to)
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}
