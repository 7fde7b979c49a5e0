package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders {"error": "<message>"}. Anything it
// does not recognise is logged and reported as a 500 without details.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, rootMessage(err)
	case errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, rootMessage(err)
	case errors.Is(err, domain.ErrChildUnavailable),
		errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrAlreadyEnrolled),
		errors.Is(err, domain.ErrEventClosed),
		errors.Is(err, domain.ErrProjectClosed):
		return http.StatusConflict, rootMessage(err)
	case errors.Is(err, domain.ErrInvalidDonationPayload),
		errors.Is(err, domain.ErrInvalidResetCode):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, rootMessage(err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// rootMessage strips the "op: " prefixes services add while wrapping, so
// clients see the domain message only.
func rootMessage(err error) string {
	for _, sentinel := range knownErrors {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// Ordered most specific first: the not-found variants before ErrNotFound.
var knownErrors = []error{
	domain.ErrUserNotFound,
	domain.ErrChildNotFound,
	domain.ErrSponsorshipNotFound,
	domain.ErrDonationNotFound,
	domain.ErrLogEntryNotFound,
	domain.ErrEventNotFound,
	domain.ErrRegistrationNotFound,
	domain.ErrProjectNotFound,
	domain.ErrNotFound,
	domain.ErrInvalidRole,
	domain.ErrForbidden,
	domain.ErrChildUnavailable,
	domain.ErrUserExists,
	domain.ErrAlreadyEnrolled,
	domain.ErrEventClosed,
	domain.ErrProjectClosed,
	domain.ErrInvalidDonationPayload,
	domain.ErrInvalidResetCode,
	domain.ErrInvalidTransition,
}
