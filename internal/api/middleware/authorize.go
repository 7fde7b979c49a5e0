package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/huahuacuna/fundacion-api/internal/core/policy"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

// Authorize lets the request through only when the session role holds the
// capability. It must run after Auth.
func Authorize(action policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, _ := c.Get(ContextKeySession).(*ports.Session)
			if session == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if !policy.Allowed(session.Role, action) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
