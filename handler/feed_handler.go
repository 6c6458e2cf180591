// ABOUTME: This file serves the personalized cartelera feed for one user
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	defaultFeedHorizonDays = 14
	maxFeedHorizonDays     = 60
)

type FeedHandler struct {
	matcher FeedBuilder
	logger  *slog.Logger
}

func NewFeedHandler(matcher FeedBuilder, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{matcher: matcher, logger: logger}
}

type feedItemResponse struct {
	ScreeningID string      `json:"screening_id"`
	FilmID      string      `json:"film_id"`
	FilmTitle   string      `json:"film_title"`
	CinemaID    string      `json:"cinema_id"`
	OriginalURL string      `json:"original_url"`
	Times       []time.Time `json:"times"`
}

// Feed lists the user's upcoming matched screenings, earliest first.
func (h *FeedHandler) Feed(c echo.Context) error {
	ctx := c.Request().Context()

	userID := c.Param("id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user id is required")
	}

	days := defaultFeedHorizonDays
	if raw := c.QueryParam("horizon_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "horizon_days must be a positive integer")
		}
		days = parsed
	}
	if days > maxFeedHorizonDays {
		days = maxFeedHorizonDays
	}

	matches, err := h.matcher.MatchesForUser(ctx, userID, time.Duration(days)*24*time.Hour)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build feed", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build feed")
	}

	items := make([]feedItemResponse, 0, len(matches))
	for _, match := range matches {
		items = append(items, feedItemResponse{
			ScreeningID: match.Screening.ID,
			FilmID:      match.Screening.FilmID,
			FilmTitle:   match.FilmTitle,
			CinemaID:    match.Screening.CinemaID,
			OriginalURL: match.Screening.OriginalURL,
			Times:       match.Times,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user_id": userID,
		"items":   items,
		"count":   len(items),
	})
}
