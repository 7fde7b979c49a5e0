package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

// EventHandler serves events and their public registrations.
type EventHandler struct {
	events ports.EventService
}

func NewEventHandler(events ports.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type eventRequest struct {
	Title               string   `json:"title" validate:"required"`
	Description         string   `json:"description"`
	Schedule            string   `json:"schedule"`
	Place               string   `json:"place"`
	ImageURL            string   `json:"image_url" validate:"omitempty,url"`
	DetailedDescription string   `json:"detailed_description"`
	Date                flexTime `json:"date" swaggertype:"string" example:"2026-12-05T10:00:00Z"`
	Active              *bool    `json:"active"`
}

func (r eventRequest) toDomain() domain.Event {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return domain.Event{
		Title:               r.Title,
		Description:         r.Description,
		Schedule:            r.Schedule,
		Place:               r.Place,
		ImageURL:            r.ImageURL,
		DetailedDescription: r.DetailedDescription,
		Date:                r.Date.Time,
		Active:              active,
	}
}

type registrationRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
}

type updateRegistrationStateRequest struct {
	State domain.RegistrationState `json:"state" validate:"required,oneof=CONFIRMADO CANCELADO"`
}

// List returns events; ?filtro=activos keeps active ones and
// ?filtro=proximos the active ones still ahead, soonest first.
//
// @Summary      List events
// @Tags         events
// @Produce      json
// @Param        filtro  query     string  false  "activos or proximos"
// @Success      200     {array}   domain.Event
// @Failure      400     {object}  errorResponse
// @Router       /api/eventos [get]
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.events.List(c.Request().Context(), domain.EventFilter(c.QueryParam("filtro")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// Get returns one event.
//
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  domain.Event
// @Failure      404  {object}  errorResponse
// @Router       /api/eventos/{id} [get]
func (h *EventHandler) Get(c echo.Context) error {
	event, err := h.events.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// Create publishes an event. It is active unless stated otherwise.
//
// @Summary      Create an event
// @Tags         events
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      eventRequest  true  "Event"
// @Success      201   {object}  domain.Event
// @Failure      400   {object}  errorResponse
// @Router       /api/eventos [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req eventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	event, err := h.events.Create(c.Request().Context(), req.toDomain())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, event)
}

// Update replaces an event's editable fields.
//
// @Summary      Update an event
// @Tags         events
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Event ID"
// @Param        body  body      eventRequest  true  "Event"
// @Success      200   {object}  domain.Event
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/eventos/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	var req eventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	event, err := h.events.Update(c.Request().Context(), c.Param("id"), req.toDomain())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// Delete removes an event.
//
// @Summary      Delete an event
// @Tags         events
// @Security     BearerAuth
// @Param        id   path  string  true  "Event ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/eventos/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.events.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Register signs a person up for an active event and queues a confirmation.
//
// @Summary      Register for an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Event ID"
// @Param        body  body      registrationRequest  true  "Attendee"
// @Success      201   {object}  domain.Registration
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/eventos/{id}/inscripciones [post]
func (h *EventHandler) Register(c echo.Context) error {
	var req registrationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	reg, err := h.events.Register(c.Request().Context(), c.Param("id"), ports.RegisterForEventInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, reg)
}

// ListRegistrations returns the registrations of one event, or of every
// event when mounted without an :id.
//
// @Summary      List registrations
// @Tags         events
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Event ID"
// @Success      200  {array}   domain.Registration
// @Failure      404  {object}  errorResponse
// @Router       /api/eventos/{id}/inscripciones [get]
// @Router       /api/inscripciones [get]
func (h *EventHandler) ListRegistrations(c echo.Context) error {
	regs, err := h.events.ListRegistrations(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, regs)
}

// UpdateRegistrationState confirms or cancels a registration.
//
// @Summary      Change registration state
// @Tags         events
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                          true  "Registration ID"
// @Param        body  body      updateRegistrationStateRequest  true  "New state"
// @Success      200   {object}  domain.Registration
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/inscripciones/{id}/estado [patch]
func (h *EventHandler) UpdateRegistrationState(c echo.Context) error {
	var req updateRegistrationStateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	reg, err := h.events.UpdateRegistrationState(c.Request().Context(), c.Param("id"), req.State)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reg)
}
