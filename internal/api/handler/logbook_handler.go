package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

// LogbookHandler serves the bitácora, which is kept per child.
type LogbookHandler struct {
	entries ports.LogbookService
}

func NewLogbookHandler(entries ports.LogbookService) *LogbookHandler {
	return &LogbookHandler{entries: entries}
}

type createLogEntryRequest struct {
	Date        *flexTime `json:"date" swaggertype:"string"`
	Description string    `json:"description" validate:"required"`
	PhotoURL    string    `json:"photo_url" validate:"omitempty,url"`
	VideoURL    string    `json:"video_url" validate:"omitempty,url"`
}

type updateLogEntryRequest struct {
	Date        *flexTime `json:"date" swaggertype:"string"`
	Description *string   `json:"description"`
	PhotoURL    *string   `json:"photo_url" validate:"omitempty,url"`
	VideoURL    *string   `json:"video_url" validate:"omitempty,url"`
}

// ListByChild returns a child's entries, newest first. Padrinos only see
// children they actively sponsor.
//
// @Summary      List a child's log entries
// @Tags         logbook
// @Security     BearerAuth
// @Produce      json
// @Param        ninoId  path      string  true  "Child ID"
// @Success      200     {array}   domain.LogEntry
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /api/bitacora/nino/{ninoId} [get]
func (h *LogbookHandler) ListByChild(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	entries, err := h.entries.ListByChild(c.Request().Context(), *session, c.Param("ninoId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// Create adds an entry to a child's log. The date defaults to now.
//
// @Summary      Add a log entry
// @Tags         logbook
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        ninoId  path      string                 true  "Child ID"
// @Param        body    body      createLogEntryRequest  true  "Entry"
// @Success      201     {object}  domain.LogEntry
// @Failure      400     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /api/bitacora/nino/{ninoId} [post]
func (h *LogbookHandler) Create(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	var req createLogEntryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	entry := domain.LogEntry{
		ChildID:     c.Param("ninoId"),
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
		VideoURL:    req.VideoURL,
	}
	if req.Date != nil {
		entry.Date = req.Date.Time
	}

	created, err := h.entries.Create(c.Request().Context(), session.UserID, entry)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Get returns one entry.
//
// @Summary      Get a log entry
// @Tags         logbook
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Entry ID"
// @Success      200  {object}  domain.LogEntry
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/bitacora/{id} [get]
func (h *LogbookHandler) Get(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	entry, err := h.entries.Get(c.Request().Context(), *session, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// Update edits an entry.
//
// @Summary      Update a log entry
// @Tags         logbook
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Entry ID"
// @Param        body  body      updateLogEntryRequest  true  "Fields to change"
// @Success      200   {object}  domain.LogEntry
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/bitacora/{id} [patch]
func (h *LogbookHandler) Update(c echo.Context) error {
	var req updateLogEntryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	entry, err := h.entries.Update(c.Request().Context(), c.Param("id"), domain.LogEntryPatch{
		Date:        req.Date.ptr(),
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
		VideoURL:    req.VideoURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// Delete removes an entry.
//
// @Summary      Delete a log entry
// @Tags         logbook
// @Security     BearerAuth
// @Param        id   path  string  true  "Entry ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/bitacora/{id} [delete]
func (h *LogbookHandler) Delete(c echo.Context) error {
	if err := h.entries.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
