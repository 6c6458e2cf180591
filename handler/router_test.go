// ABOUTME: This file tests route registration and the bearer guard around the control plane
package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cienaga/domain"
)

func testHandlers() Handlers {
	logger := testLogger()
	films := &fakeFilmRepo{}
	cinemas := &fakeCinemaRepo{cinemas: map[string]domain.Cinema{}}
	return Handlers{
		Health:        NewHealthHandler(),
		Films:         NewFilmsHandler(films, logger),
		Directors:     NewDirectorsHandler(&fakeDirectorSubmitter{}, logger),
		Screenings:    NewScreeningsHandler(cinemas, &fakeScreeningSubmitter{}, logger),
		Notifications: NewNotificationsHandler(&fakeScreeningRepo{}, &fakeUserRepo{}, &fakeNotificationRepo{}, logger),
		Feed:          NewFeedHandler(&fakeFeedBuilder{}, logger),
	}
}

func TestRouterHealthIsOpen(t *testing.T) {
	e := echo.New()
	Register(e, testHandlers(), "sesamo", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRouterGuardsControlPlane(t *testing.T) {
	e := echo.New()
	Register(e, testHandlers(), "sesamo", testLogger())

	tests := map[string]struct {
		method string
		target string
	}{
		"pending films":   {http.MethodGet, "/api/v1/films/pending"},
		"pending count":   {http.MethodGet, "/api/v1/films/pending/count"},
		"director batch":  {http.MethodPost, "/api/v1/directors/batch"},
		"screening batch": {http.MethodPost, "/api/v1/screenings/batch"},
		"matches":         {http.MethodGet, "/api/v1/notifications/matches"},
		"log":             {http.MethodPost, "/api/v1/notifications/log"},
		"feed":            {http.MethodGet, "/api/v1/users/u1/feed"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouterAcceptsBearerToken(t *testing.T) {
	e := echo.New()
	Register(e, testHandlers(), "sesamo", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/films/pending/count", nil)
	req.Header.Set("Authorization", "Bearer sesamo")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "has_work")
}
