package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"wrapped not found", fmt.Errorf("finalize: %w", domain.ErrSponsorshipNotFound), http.StatusNotFound, "sponsorship not found"},
		{"invalid role", domain.ErrInvalidRole, http.StatusForbidden, domain.ErrInvalidRole.Error()},
		{"child unavailable", fmt.Errorf("create sponsorship: %w", domain.ErrChildUnavailable), http.StatusConflict, domain.ErrChildUnavailable.Error()},
		{"donation payload", domain.ErrInvalidDonationPayload, http.StatusBadRequest, domain.ErrInvalidDonationPayload.Error()},
		{"validation keeps reason", domain.Invalid("name is required"), http.StatusBadRequest, "validation failed: name is required"},
		{"transition", domain.ErrInvalidTransition, http.StatusUnprocessableEntity, domain.ErrInvalidTransition.Error()},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"already enrolled", domain.ErrAlreadyEnrolled, http.StatusConflict, domain.ErrAlreadyEnrolled.Error()},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			assert.Equal(t, tc.code, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.message, body.Error)
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, c.String(http.StatusOK, "done"))

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late failure"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
