// ABOUTME: This file implements the shared-secret bearer auth for the control plane
package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireBearer rejects requests whose Authorization header does not carry
// the shared secret. Comparison is constant-time.
func RequireBearer(secret string, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				logger.WarnContext(c.Request().Context(), "rejected request with bad token",
					"path", c.Path(), "remote", c.RealIP())
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			return next(c)
		}
	}
}
