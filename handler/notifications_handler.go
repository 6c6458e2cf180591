// ABOUTME: This file exposes the notification fan-out preview and the dispatch audit log
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"cienaga/domain"
	"cienaga/repository"
	"cienaga/service"
)

type NotificationsHandler struct {
	screenings    repository.ScreeningRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	logger        *slog.Logger
	now           func() time.Time
}

func NewNotificationsHandler(screenings repository.ScreeningRepository, users repository.UserRepository, notifications repository.NotificationRepository, logger *slog.Logger) *NotificationsHandler {
	return NewNotificationsHandlerAt(screenings, users, notifications, logger, time.Now)
}

// NewNotificationsHandlerAt pins the clock for tests.
func NewNotificationsHandlerAt(screenings repository.ScreeningRepository, users repository.UserRepository, notifications repository.NotificationRepository, logger *slog.Logger, now func() time.Time) *NotificationsHandler {
	return &NotificationsHandler{
		screenings:    screenings,
		users:         users,
		notifications: notifications,
		logger:        logger,
		now:           now,
	}
}

type matchResponse struct {
	ScreeningID     string      `json:"screening_id"`
	FilmID          string      `json:"film_id"`
	CinemaID        string      `json:"cinema_id"`
	FilmTitle       string      `json:"film_title"`
	OriginalURL     string      `json:"original_url"`
	Times           []time.Time `json:"times"`
	FollowerUserIDs []string    `json:"follower_user_ids"`
}

// Matches lists screenings up to the cutoff together with the users who
// follow the screened film's director.
func (h *NotificationsHandler) Matches(c echo.Context) error {
	ctx := c.Request().Context()

	raw := c.QueryParam("cutoff")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "cutoff is required")
	}
	cutoff, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cutoff must be RFC 3339")
	}
	from := h.now()
	if !cutoff.After(from) {
		return echo.NewHTTPError(http.StatusBadRequest, "cutoff must be in the future")
	}

	hits, err := h.screenings.Upcoming(ctx, from, cutoff)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load upcoming screenings", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load upcoming screenings")
	}

	directorByScreening := make(map[string]string)
	directorIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, hit := range hits {
		if hit.DirectorID == nil {
			continue
		}
		directorByScreening[hit.Screening.ID] = *hit.DirectorID
		if _, ok := seen[*hit.DirectorID]; !ok {
			seen[*hit.DirectorID] = struct{}{}
			directorIDs = append(directorIDs, *hit.DirectorID)
		}
	}

	followersByDirector := make(map[string][]string)
	if len(directorIDs) > 0 {
		edges, err := h.users.DirectorFollowers(ctx, directorIDs)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to load director followers", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load director followers")
		}
		for _, edge := range edges {
			followersByDirector[edge.DirectorID] = append(followersByDirector[edge.DirectorID], edge.UserID)
		}
	}

	matches := make([]matchResponse, 0)
	for _, match := range service.GroupHits(hits) {
		followers := []string{}
		if directorID, ok := directorByScreening[match.Screening.ID]; ok {
			if users := followersByDirector[directorID]; users != nil {
				followers = users
			}
		}
		matches = append(matches, matchResponse{
			ScreeningID:     match.Screening.ID,
			FilmID:          match.Screening.FilmID,
			CinemaID:        match.Screening.CinemaID,
			FilmTitle:       match.FilmTitle,
			OriginalURL:     match.Screening.OriginalURL,
			Times:           match.Times,
			FollowerUserIDs: followers,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"matches": matches,
		"count":   len(matches),
	})
}

type notificationLogRequest struct {
	UserID       string   `json:"user_id"`
	ScreeningIDs []string `json:"screening_ids"`
	Subject      string   `json:"subject"`
}

// Log records one dispatched notification in the audit log.
func (h *NotificationsHandler) Log(c echo.Context) error {
	ctx := c.Request().Context()

	var req notificationLogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || len(req.ScreeningIDs) == 0 || req.Subject == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id, screening_ids and subject are required")
	}

	notification := domain.Notification{
		UserID:       req.UserID,
		ScreeningIDs: req.ScreeningIDs,
		Subject:      req.Subject,
	}
	if err := h.notifications.Create(ctx, &notification); err != nil {
		h.logger.ErrorContext(ctx, "failed to record notification", "user_id", req.UserID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record notification")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"id":      notification.ID,
		"sent_at": notification.SentAt,
	})
}
