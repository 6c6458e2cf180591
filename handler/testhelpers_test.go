// ABOUTME: This file provides the repository and service fakes the handler tests run against
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"cienaga/domain"
	"cienaga/driver"
	"cienaga/scraper"
	"cienaga/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func timeAt(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

// newTestContext builds an echo context around a recorded request.
func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type fakeFilmRepo struct {
	pending []domain.Film
	err     error
}

func (f *fakeFilmRepo) Upsert(context.Context, *domain.Film) (bool, error) { return false, nil }

func (f *fakeFilmRepo) FindByExternalURL(context.Context, string) (*domain.Film, error) {
	return nil, nil
}

func (f *fakeFilmRepo) Pending(_ context.Context, limit int) ([]domain.Film, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	return f.pending[:limit], nil
}

func (f *fakeFilmRepo) CountPending(context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.pending), nil
}

func (f *fakeFilmRepo) Candidates(context.Context, string) ([]driver.FilmCandidate, error) {
	return nil, nil
}

func (f *fakeFilmRepo) AttachDirector(context.Context, string, string) (bool, error) {
	return false, nil
}

func (f *fakeFilmRepo) UpdateDetails(context.Context, *domain.Film) error { return nil }

type fakeCinemaRepo struct {
	cinemas map[string]domain.Cinema
}

func (f *fakeCinemaRepo) Upsert(context.Context, *domain.Cinema) error { return nil }

func (f *fakeCinemaRepo) Enabled(context.Context) ([]domain.Cinema, error) { return nil, nil }

func (f *fakeCinemaRepo) FindBySlug(context.Context, string) (*domain.Cinema, error) {
	return nil, nil
}

func (f *fakeCinemaRepo) FindByID(_ context.Context, id string) (*domain.Cinema, error) {
	cinema, ok := f.cinemas[id]
	if !ok {
		return nil, nil
	}
	return &cinema, nil
}

type fakeScreeningRepo struct {
	hits []driver.ScreeningHit
}

func (f *fakeScreeningRepo) Insert(context.Context, *domain.Screening) (bool, error) {
	return false, nil
}

func (f *fakeScreeningRepo) InsertTimes(context.Context, string, []time.Time) error { return nil }

func (f *fakeScreeningRepo) ForFilms(context.Context, []string, time.Time, time.Time) ([]driver.ScreeningHit, error) {
	return nil, nil
}

func (f *fakeScreeningRepo) ForDirectors(context.Context, []string, time.Time, time.Time) ([]driver.ScreeningHit, error) {
	return nil, nil
}

func (f *fakeScreeningRepo) Upcoming(_ context.Context, from, to time.Time) ([]driver.ScreeningHit, error) {
	var out []driver.ScreeningHit
	for _, hit := range f.hits {
		if hit.Instant.After(from) && !hit.Instant.After(to) {
			out = append(out, hit)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	edges []driver.FollowerEdge
}

func (f *fakeUserRepo) ListUsers(context.Context) ([]domain.User, error) { return nil, nil }

func (f *fakeUserRepo) UpsertUserFilm(context.Context, string, string, *float64) error { return nil }

func (f *fakeUserRepo) FilmIDs(context.Context, string) ([]string, error) { return nil, nil }

func (f *fakeUserRepo) DirectorIDs(context.Context, string) ([]string, error) { return nil, nil }

func (f *fakeUserRepo) MaterializeUserDirectors(context.Context, string, string) (int, error) {
	return 0, nil
}

func (f *fakeUserRepo) DirectorFollowers(_ context.Context, directorIDs []string) ([]driver.FollowerEdge, error) {
	wanted := make(map[string]struct{}, len(directorIDs))
	for _, id := range directorIDs {
		wanted[id] = struct{}{}
	}
	var out []driver.FollowerEdge
	for _, edge := range f.edges {
		if _, ok := wanted[edge.DirectorID]; ok {
			out = append(out, edge)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	created []domain.Notification
	err     error
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	notification.ID = "notif-1"
	notification.SentAt = timeAt("2025-09-01T15:00:00Z")
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeNotificationRepo) NotifiedScreeningIDs(context.Context, string, time.Time) ([]string, error) {
	return nil, nil
}

type fakeDirectorSubmitter struct {
	received []service.DirectorSubmission
	results  []service.SubmissionResult
}

func (f *fakeDirectorSubmitter) Submit(_ context.Context, items []service.DirectorSubmission) []service.SubmissionResult {
	f.received = items
	return f.results
}

type fakeScreeningSubmitter struct {
	cinemaID string
	received []scraper.Screening
	outcome  service.BatchOutcome
	err      error
}

func (f *fakeScreeningSubmitter) Submit(_ context.Context, cinemaID string, items []scraper.Screening) (service.BatchOutcome, error) {
	f.cinemaID = cinemaID
	f.received = items
	return f.outcome, f.err
}

type fakeFeedBuilder struct {
	userID  string
	horizon time.Duration
	matches []service.Match
	err     error
}

func (f *fakeFeedBuilder) MatchesForUser(_ context.Context, userID string, horizon time.Duration) ([]service.Match, error) {
	f.userID = userID
	f.horizon = horizon
	return f.matches, f.err
}
