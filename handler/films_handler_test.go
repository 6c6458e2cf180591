// ABOUTME: This file tests the pending-film queue endpoints
package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cienaga/domain"
)

func TestFilmsPending(t *testing.T) {
	repo := &fakeFilmRepo{pending: []domain.Film{
		{ID: "f1", Title: "La Ciénaga", Year: intPtrTest(2001), CreatedAt: timeAt("2025-08-01T10:00:00Z")},
		{ID: "f2", Title: "Zama", CreatedAt: timeAt("2025-08-02T10:00:00Z")},
	}}
	h := NewFilmsHandler(repo, testLogger())

	c, rec := newTestContext(http.MethodGet, "/api/v1/films/pending", "")
	require.NoError(t, h.Pending(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Films []filmResponse `json:"films"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Films, 2)
	assert.Equal(t, "f1", body.Films[0].ID)
	assert.Equal(t, "La Ciénaga", body.Films[0].Title)
	require.NotNil(t, body.Films[0].Year)
	assert.Equal(t, 2001, *body.Films[0].Year)
}

func TestFilmsPendingLimit(t *testing.T) {
	repo := &fakeFilmRepo{pending: []domain.Film{
		{ID: "f1", Title: "A"}, {ID: "f2", Title: "B"}, {ID: "f3", Title: "C"},
	}}
	h := NewFilmsHandler(repo, testLogger())

	c, rec := newTestContext(http.MethodGet, "/api/v1/films/pending?limit=2", "")
	require.NoError(t, h.Pending(c))

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
}

func TestFilmsPendingRejectsBadLimit(t *testing.T) {
	h := NewFilmsHandler(&fakeFilmRepo{}, testLogger())

	tests := map[string]string{
		"zero":        "/api/v1/films/pending?limit=0",
		"negative":    "/api/v1/films/pending?limit=-3",
		"non numeric": "/api/v1/films/pending?limit=many",
	}

	for name, target := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, target, "")
			err := h.Pending(c)
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		})
	}
}

func TestFilmsPendingCount(t *testing.T) {
	repo := &fakeFilmRepo{pending: []domain.Film{{ID: "f1", Title: "A"}}}
	h := NewFilmsHandler(repo, testLogger())

	c, rec := newTestContext(http.MethodGet, "/api/v1/films/pending/count", "")
	require.NoError(t, h.PendingCount(c))

	var body struct {
		Pending int  `json:"pending"`
		HasWork bool `json:"has_work"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Pending)
	assert.True(t, body.HasWork)
}

func TestFilmsPendingCountEmptyQueue(t *testing.T) {
	h := NewFilmsHandler(&fakeFilmRepo{}, testLogger())

	c, rec := newTestContext(http.MethodGet, "/api/v1/films/pending/count", "")
	require.NoError(t, h.PendingCount(c))

	var body struct {
		Pending int  `json:"pending"`
		HasWork bool `json:"has_work"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Pending)
	assert.False(t, body.HasWork)
}

func intPtrTest(v int) *int { return &v }
