// ABOUTME: This file tests the personalized feed endpoint
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
	"cienaga/service"
)

func TestFeed(t *testing.T) {
	builder := &fakeFeedBuilder{matches: []service.Match{
		{
			Screening: domain.Screening{ID: "s1", FilmID: "f1", CinemaID: "cin-malba", OriginalURL: "https://malba.org.ar/evento/la-cienaga/"},
			FilmTitle: "La Ciénaga",
			Times:     []time.Time{timeAt("2025-09-04T23:00:00Z")},
		},
	}}
	h := NewFeedHandler(builder, testLogger())

	c, rec := newTestContext(http.MethodGet, "/api/v1/users/user-ana/feed", "")
	c.SetParamNames("id")
	c.SetParamValues("user-ana")
	require.NoError(t, h.Feed(c))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "user-ana", builder.userID)
	assert.Equal(t, 14*24*time.Hour, builder.horizon)

	var resp struct {
		UserID string             `json:"user_id"`
		Items  []feedItemResponse `json:"items"`
		Count  int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user-ana", resp.UserID)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "La Ciénaga", resp.Items[0].FilmTitle)
	assert.Equal(t, "cin-malba", resp.Items[0].CinemaID)
}

func TestFeedCustomHorizon(t *testing.T) {
	builder := &fakeFeedBuilder{}
	h := NewFeedHandler(builder, testLogger())

	c, _ := newTestContext(http.MethodGet, "/api/v1/users/user-ana/feed?horizon_days=7", "")
	c.SetParamNames("id")
	c.SetParamValues("user-ana")
	require.NoError(t, h.Feed(c))

	assert.Equal(t, 7*24*time.Hour, builder.horizon)
}

func TestFeedCapsHorizon(t *testing.T) {
	builder := &fakeFeedBuilder{}
	h := NewFeedHandler(builder, testLogger())

	c, _ := newTestContext(http.MethodGet, "/api/v1/users/user-ana/feed?horizon_days=365", "")
	c.SetParamNames("id")
	c.SetParamValues("user-ana")
	require.NoError(t, h.Feed(c))

	assert.Equal(t, time.Duration(maxFeedHorizonDays)*24*time.Hour, builder.horizon)
}

func TestFeedRejectsBadHorizon(t *testing.T) {
	h := NewFeedHandler(&fakeFeedBuilder{}, testLogger())

	c, _ := newTestContext(http.MethodGet, "/api/v1/users/user-ana/feed?horizon_days=soon", "")
	c.SetParamNames("id")
	c.SetParamValues("user-ana")
	err := h.Feed(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
