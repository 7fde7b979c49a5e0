package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

type ChildHandler struct {
	children ports.ChildService
}

func NewChildHandler(children ports.ChildService) *ChildHandler {
	return &ChildHandler{children: children}
}

type createChildRequest struct {
	Name        string   `json:"name" validate:"required"`
	BirthDate   flexTime `json:"birth_date" swaggertype:"string" example:"2016-04-21"`
	Gender      string   `json:"gender" validate:"required"`
	Description string   `json:"description"`
	PhotoURL    string   `json:"photo_url" validate:"omitempty,url"`
}

type updateChildRequest struct {
	Name        *string            `json:"name"`
	BirthDate   *flexTime          `json:"birth_date" swaggertype:"string"`
	Gender      *string            `json:"gender"`
	Description *string            `json:"description"`
	PhotoURL    *string            `json:"photo_url" validate:"omitempty,url"`
	State       *domain.ChildState `json:"state" validate:"omitempty,oneof=Disponible Inactivo Apadrinado"`
}

// List returns the registered children. Padrinos only see children that
// are still available for sponsorship.
//
// @Summary      List children
// @Tags         children
// @Security     BearerAuth
// @Produce      json
// @Param        estado  query     string  false  "Disponible, Apadrinado or Inactivo"
// @Success      200     {array}   domain.Child
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /api/ninos [get]
func (h *ChildHandler) List(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	state := domain.ChildState(c.QueryParam("estado"))
	if session.Role == domain.RoleSponsor {
		state = domain.ChildAvailable
	}

	children, err := h.children.List(c.Request().Context(), state)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, children)
}

// Get returns the full child record.
//
// @Summary      Get a child
// @Tags         children
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Child ID"
// @Success      200  {object}  domain.Child
// @Failure      404  {object}  errorResponse
// @Router       /api/ninos/{id} [get]
func (h *ChildHandler) Get(c echo.Context) error {
	child, err := h.children.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, child)
}

// PublicProfile returns the reduced profile shown on the public site.
//
// @Summary      Public child profile
// @Tags         children
// @Produce      json
// @Param        id   path      string  true  "Child ID"
// @Success      200  {object}  ports.PublicChild
// @Failure      404  {object}  errorResponse
// @Router       /api/ninos/publico/{id} [get]
func (h *ChildHandler) PublicProfile(c echo.Context) error {
	profile, err := h.children.PublicProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Create registers a child as Disponible.
//
// @Summary      Register a child
// @Tags         children
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      createChildRequest  true  "Child details"
// @Success      201   {object}  domain.Child
// @Failure      400   {object}  errorResponse
// @Router       /api/ninos [post]
func (h *ChildHandler) Create(c echo.Context) error {
	var req createChildRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	child, err := h.children.Create(c.Request().Context(), ports.CreateChildInput{
		Name:        req.Name,
		BirthDate:   req.BirthDate.Time,
		Gender:      req.Gender,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, child)
}

// Update applies a partial edit. The state may only move between
// Disponible and Inactivo here; Apadrinado belongs to the sponsorship flow.
//
// @Summary      Update a child
// @Tags         children
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Child ID"
// @Param        body  body      updateChildRequest  true  "Fields to change"
// @Success      200   {object}  domain.Child
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/ninos/{id} [patch]
func (h *ChildHandler) Update(c echo.Context) error {
	var req updateChildRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	child, err := h.children.Update(c.Request().Context(), c.Param("id"), domain.ChildPatch{
		Name:        req.Name,
		BirthDate:   req.BirthDate.ptr(),
		Gender:      req.Gender,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
		State:       req.State,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, child)
}

// Delete removes a child that is not actively sponsored.
//
// @Summary      Delete a child
// @Tags         children
// @Security     BearerAuth
// @Param        id   path  string  true  "Child ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/ninos/{id} [delete]
func (h *ChildHandler) Delete(c echo.Context) error {
	if err := h.children.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
