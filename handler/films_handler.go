// ABOUTME: This file serves the pending-film queue endpoints the director scraper polls
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"cienaga/domain"
	"cienaga/repository"
)

const (
	defaultPendingLimit = 50
	maxPendingLimit     = 200
)

type FilmsHandler struct {
	films  repository.FilmRepository
	logger *slog.Logger
}

func NewFilmsHandler(films repository.FilmRepository, logger *slog.Logger) *FilmsHandler {
	return &FilmsHandler{films: films, logger: logger}
}

type filmResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	NationalTitle *string `json:"national_title,omitempty"`
	Year          *int    `json:"year,omitempty"`
	ExternalURL   *string `json:"external_url,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// Pending returns films still waiting for a director, oldest first.
func (h *FilmsHandler) Pending(c echo.Context) error {
	ctx := c.Request().Context()

	limit := defaultPendingLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}
	if limit > maxPendingLimit {
		limit = maxPendingLimit
	}

	films, err := h.films.Pending(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list pending films", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list pending films")
	}

	items := make([]filmResponse, 0, len(films))
	for _, film := range films {
		items = append(items, toFilmResponse(film))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"films": items,
		"count": len(items),
	})
}

// PendingCount reports queue depth so callers can skip an empty scrape run.
func (h *FilmsHandler) PendingCount(c echo.Context) error {
	ctx := c.Request().Context()

	count, err := h.films.CountPending(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count pending films", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to count pending films")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"pending":  count,
		"has_work": count > 0,
	})
}

func toFilmResponse(film domain.Film) filmResponse {
	return filmResponse{
		ID:            film.ID,
		Title:         film.Title,
		NationalTitle: film.NationalTitle,
		Year:          film.Year,
		ExternalURL:   film.ExternalURL,
		CreatedAt:     film.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
