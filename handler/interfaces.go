// ABOUTME: This file declares the service interfaces the HTTP handlers consume
package handler

import (
	"context"
	"time"

	"cienaga/scraper"
	"cienaga/service"
)

// DirectorSubmitter applies film-director submissions.
type DirectorSubmitter interface {
	Submit(ctx context.Context, items []service.DirectorSubmission) []service.SubmissionResult
}

// ScreeningSubmitter persists one cinema's screening batch.
type ScreeningSubmitter interface {
	Submit(ctx context.Context, cinemaID string, items []scraper.Screening) (service.BatchOutcome, error)
}

// FeedBuilder answers personalized feed queries.
type FeedBuilder interface {
	MatchesForUser(ctx context.Context, userID string, horizon time.Duration) ([]service.Match, error)
}
