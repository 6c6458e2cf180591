// ABOUTME: This file tests the notification preview and audit log endpoints
package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cienaga/domain"
	"cienaga/driver"
)

func notificationsTestHandler(screenings *fakeScreeningRepo, users *fakeUserRepo, notifications *fakeNotificationRepo) *NotificationsHandler {
	now := func() time.Time { return timeAt("2025-09-01T12:00:00Z") }
	return NewNotificationsHandlerAt(screenings, users, notifications, testLogger(), now)
}

func martelHit(instant time.Time) driver.ScreeningHit {
	return driver.ScreeningHit{
		Screening: domain.Screening{
			ID:          "s1",
			FilmID:      "f1",
			CinemaID:    "cin-malba",
			OriginalURL: "https://malba.org.ar/evento/la-cienaga/",
		},
		FilmTitle:  "La Ciénaga",
		DirectorID: strPtr("dir-martel"),
		Instant:    instant,
	}
}

func TestNotificationMatches(t *testing.T) {
	screenings := &fakeScreeningRepo{hits: []driver.ScreeningHit{
		martelHit(timeAt("2025-09-04T23:00:00Z")),
		martelHit(timeAt("2025-09-05T23:00:00Z")),
		{
			Screening:  domain.Screening{ID: "s2", FilmID: "f2", CinemaID: "cin-malba"},
			FilmTitle:  "Orphan Film",
			DirectorID: nil,
			Instant:    timeAt("2025-09-06T23:00:00Z"),
		},
	}}
	users := &fakeUserRepo{edges: []driver.FollowerEdge{
		{DirectorID: "dir-martel", UserID: "user-ana"},
		{DirectorID: "dir-martel", UserID: "user-bruno"},
	}}
	h := notificationsTestHandler(screenings, users, &fakeNotificationRepo{})

	c, rec := newTestContext(http.MethodGet, "/api/v1/notifications/matches?cutoff=2025-09-15T00:00:00Z", "")
	require.NoError(t, h.Matches(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Matches []matchResponse `json:"matches"`
		Count   int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)

	first := resp.Matches[0]
	assert.Equal(t, "s1", first.ScreeningID)
	assert.Equal(t, "La Ciénaga", first.FilmTitle)
	assert.Len(t, first.Times, 2)
	assert.ElementsMatch(t, []string{"user-ana", "user-bruno"}, first.FollowerUserIDs)

	second := resp.Matches[1]
	assert.Equal(t, "s2", second.ScreeningID)
	assert.Empty(t, second.FollowerUserIDs)
}

func TestNotificationMatchesHonorsCutoff(t *testing.T) {
	screenings := &fakeScreeningRepo{hits: []driver.ScreeningHit{
		martelHit(timeAt("2025-09-20T23:00:00Z")),
	}}
	h := notificationsTestHandler(screenings, &fakeUserRepo{}, &fakeNotificationRepo{})

	c, rec := newTestContext(http.MethodGet, "/api/v1/notifications/matches?cutoff=2025-09-10T00:00:00Z", "")
	require.NoError(t, h.Matches(c))

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}

func TestNotificationMatchesRejectsBadCutoff(t *testing.T) {
	h := notificationsTestHandler(&fakeScreeningRepo{}, &fakeUserRepo{}, &fakeNotificationRepo{})

	tests := map[string]string{
		"missing":     "/api/v1/notifications/matches",
		"not rfc3339": "/api/v1/notifications/matches?cutoff=tomorrow",
		"in the past": "/api/v1/notifications/matches?cutoff=2025-01-01T00:00:00Z",
	}

	for name, target := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, target, "")
			err := h.Matches(c)
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		})
	}
}

func TestNotificationLog(t *testing.T) {
	notifications := &fakeNotificationRepo{}
	h := notificationsTestHandler(&fakeScreeningRepo{}, &fakeUserRepo{}, notifications)

	body := `{"user_id":"user-ana","screening_ids":["s1","s2"],"subject":"2 películas de tus directores en cartelera"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/notifications/log", body)
	require.NoError(t, h.Log(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, notifications.created, 1)
	assert.Equal(t, "user-ana", notifications.created[0].UserID)
	assert.Equal(t, []string{"s1", "s2"}, notifications.created[0].ScreeningIDs)

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "notif-1", resp.ID)
}

func TestNotificationLogValidation(t *testing.T) {
	h := notificationsTestHandler(&fakeScreeningRepo{}, &fakeUserRepo{}, &fakeNotificationRepo{})

	tests := map[string]string{
		"missing user":     `{"screening_ids":["s1"],"subject":"x"}`,
		"empty screenings": `{"user_id":"user-ana","screening_ids":[],"subject":"x"}`,
		"missing subject":  `{"user_id":"user-ana","screening_ids":["s1"]}`,
		"unparseable body": `{"user_id":`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodPost, "/api/v1/notifications/log", body)
			err := h.Log(c)
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		})
	}
}
