package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

// Context keys set by Auth and OptionalAuth.
const (
	ContextKeyUser    = "user"
	ContextKeySession = "session"
)

// Auth resolves the bearer token to the caller's current user record and
// stores it with the session in the request context.
func Auth(accounts ports.AccountService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request())
			if err != nil {
				return err
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			if err := authenticate(c, accounts, token); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// OptionalAuth behaves like Auth when a token is present and lets anonymous
// requests through untouched.
func OptionalAuth(accounts ports.AccountService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request())
			if err != nil {
				return err
			}
			if token != "" {
				if err := authenticate(c, accounts, token); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}

func authenticate(c echo.Context, accounts ports.AccountService, token string) error {
	user, session, err := accounts.Authenticate(c.Request().Context(), token)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	if err != nil {
		return err
	}
	c.Set(ContextKeyUser, user)
	c.Set(ContextKeySession, session)
	return nil
}

// bearerToken returns "" when no Authorization header is sent.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
