// ABOUTME: This file accepts scraped screening batches for one cinema and reports batch counters
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"cienaga/domain"
	"cienaga/repository"
	"cienaga/scraper"
)

type ScreeningsHandler struct {
	cinemas   repository.CinemaRepository
	submitter ScreeningSubmitter
	logger    *slog.Logger
}

func NewScreeningsHandler(cinemas repository.CinemaRepository, submitter ScreeningSubmitter, logger *slog.Logger) *ScreeningsHandler {
	return &ScreeningsHandler{cinemas: cinemas, submitter: submitter, logger: logger}
}

type screeningItemRequest struct {
	Title         string      `json:"title"`
	NationalTitle *string     `json:"national_title,omitempty"`
	Director      *string     `json:"director,omitempty"`
	Times         []time.Time `json:"times"`
	ScheduleText  string      `json:"schedule_text"`
	EventType     *string     `json:"event_type,omitempty"`
	Description   *string     `json:"description,omitempty"`
	Room          *string     `json:"room,omitempty"`
	OriginalURL   string      `json:"original_url"`
	ThumbnailURL  *string     `json:"thumbnail_url,omitempty"`
	Country       *string     `json:"country,omitempty"`
	Genre         *string     `json:"genre,omitempty"`
	Duration      *int        `json:"duration,omitempty"`
	Year          *int        `json:"year,omitempty"`
}

type screeningBatchRequest struct {
	CinemaID   string                 `json:"cinema_id"`
	Screenings []screeningItemRequest `json:"screenings"`
}

// SubmitBatch reconciles and stores one cinema's scraped screenings.
func (h *ScreeningsHandler) SubmitBatch(c echo.Context) error {
	ctx := c.Request().Context()

	var req screeningBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CinemaID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "cinema_id is required")
	}
	if len(req.Screenings) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "screenings must not be empty")
	}

	cinema, err := h.cinemas.FindByID(ctx, req.CinemaID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to look up cinema", "cinema_id", req.CinemaID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up cinema")
	}
	if cinema == nil {
		return echo.NewHTTPError(http.StatusNotFound, "unknown cinema")
	}

	items := make([]scraper.Screening, 0, len(req.Screenings))
	for _, item := range req.Screenings {
		items = append(items, scraper.Screening{
			Title:         item.Title,
			NationalTitle: item.NationalTitle,
			Director:      item.Director,
			Times:         item.Times,
			ScheduleText:  item.ScheduleText,
			EventType:     item.EventType,
			Description:   item.Description,
			Room:          item.Room,
			OriginalURL:   item.OriginalURL,
			ThumbnailURL:  item.ThumbnailURL,
			Country:       item.Country,
			Genre:         item.Genre,
			Duration:      item.Duration,
			Year:          item.Year,
		})
	}

	outcome, err := h.submitter.Submit(ctx, cinema.ID, items)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.ErrorContext(ctx, "failed to process screening batch", "cinema_id", cinema.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process screening batch")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"cinema_id":  cinema.ID,
		"processed":  outcome.Processed,
		"successful": outcome.Successful,
		"failed":     outcome.Failed,
	})
}
