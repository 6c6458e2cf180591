// ABOUTME: This file accepts director scrape results in batch and reports per-item outcomes
package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"cienaga/service"
)

type DirectorsHandler struct {
	submitter DirectorSubmitter
	logger    *slog.Logger
}

func NewDirectorsHandler(submitter DirectorSubmitter, logger *slog.Logger) *DirectorsHandler {
	return &DirectorsHandler{submitter: submitter, logger: logger}
}

type directorItemRequest struct {
	FilmID        string   `json:"film_id"`
	DirectorName  string   `json:"director_name"`
	DirectorURL   *string  `json:"director_url,omitempty"`
	DirectorSlug  *string  `json:"director_slug,omitempty"`
	PosterURL     *string  `json:"poster_url,omitempty"`
	BackdropURL   *string  `json:"backdrop_url,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	Year          *int     `json:"year,omitempty"`
	NationalTitle *string  `json:"national_title,omitempty"`
	MovieSlug     *string  `json:"movie_slug,omitempty"`
}

type directorBatchRequest struct {
	Items []directorItemRequest `json:"items"`
}

type submissionResultResponse struct {
	FilmID  string `json:"film_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SubmitBatch applies a batch of film-director resolutions. One bad item
// never fails the batch.
func (h *DirectorsHandler) SubmitBatch(c echo.Context) error {
	ctx := c.Request().Context()

	var req directorBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "items must not be empty")
	}

	submissions := make([]service.DirectorSubmission, 0, len(req.Items))
	for _, item := range req.Items {
		submissions = append(submissions, service.DirectorSubmission{
			FilmID:        item.FilmID,
			DirectorName:  item.DirectorName,
			DirectorURL:   item.DirectorURL,
			DirectorSlug:  item.DirectorSlug,
			PosterURL:     item.PosterURL,
			BackdropURL:   item.BackdropURL,
			Rating:        item.Rating,
			Year:          item.Year,
			NationalTitle: item.NationalTitle,
			MovieSlug:     item.MovieSlug,
		})
	}

	results := h.submitter.Submit(ctx, submissions)

	succeeded := 0
	responses := make([]submissionResultResponse, 0, len(results))
	for _, result := range results {
		if result.Success {
			succeeded++
		}
		responses = append(responses, submissionResultResponse{
			FilmID:  result.FilmID,
			Success: result.Success,
			Error:   result.Error,
		})
	}
	h.logger.InfoContext(ctx, "director batch processed", "items", len(results), "succeeded", succeeded)

	return c.JSON(http.StatusOK, map[string]any{
		"results":   responses,
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
}
