package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/huahuacuna/fundacion-api/internal/api/middleware"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

// currentSession returns the session injected by middleware.Auth. Its
// absence means the route was mounted without Auth.
func currentSession(c echo.Context) (*ports.Session, error) {
	session, _ := c.Get(middleware.ContextKeySession).(*ports.Session)
	if session == nil || session.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return session, nil
}

// optionalSession is currentSession for routes behind middleware.OptionalAuth.
func optionalSession(c echo.Context) *ports.Session {
	session, _ := c.Get(middleware.ContextKeySession).(*ports.Session)
	return session
}

// bindAndValidate decodes the request and runs the struct validation tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
