// ABOUTME: This file wires the HTTP routes: open health check, bearer-guarded control plane
package handler

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"cienaga/middleware"
)

// Handlers bundles the constructed handlers for route registration.
type Handlers struct {
	Health        *HealthHandler
	Films         *FilmsHandler
	Directors     *DirectorsHandler
	Screenings    *ScreeningsHandler
	Notifications *NotificationsHandler
	Feed          *FeedHandler
}

// Register mounts all routes on the echo instance. Everything under
// /api/v1 requires the shared-secret bearer token.
func Register(e *echo.Echo, h Handlers, secret string, logger *slog.Logger) {
	e.GET("/v1/health", h.Health.Check)

	api := e.Group("/api/v1", middleware.RequireBearer(secret, logger))
	api.GET("/films/pending", h.Films.Pending)
	api.GET("/films/pending/count", h.Films.PendingCount)
	api.POST("/directors/batch", h.Directors.SubmitBatch)
	api.POST("/screenings/batch", h.Screenings.SubmitBatch)
	api.GET("/notifications/matches", h.Notifications.Matches)
	api.POST("/notifications/log", h.Notifications.Log)
	api.GET("/users/:id/feed", h.Feed.Feed)
}
