package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

type ProjectHandler struct {
	projects ports.ProjectService
}

func NewProjectHandler(projects ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	Name        string              `json:"name" validate:"required"`
	Description string              `json:"description"`
	StartDate   *flexTime           `json:"start_date" swaggertype:"string"`
	EndDate     *flexTime           `json:"end_date" swaggertype:"string"`
	State       domain.ProjectState `json:"state" validate:"omitempty,oneof=ACTIVO INACTIVO FINALIZADO"`
}

type updateProjectRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	StartDate   *flexTime            `json:"start_date" swaggertype:"string"`
	EndDate     *flexTime            `json:"end_date" swaggertype:"string"`
	State       *domain.ProjectState `json:"state" validate:"omitempty,oneof=ACTIVO INACTIVO FINALIZADO"`
}

type enrollRequest struct {
	Role string `json:"role"`
}

// List returns projects; ?filtro=activos keeps the ACTIVO ones.
//
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Param        filtro  query     string  false  "activos"
// @Success      200     {array}   domain.Project
// @Router       /api/proyectos [get]
func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.projects.List(c.Request().Context(), c.QueryParam("filtro") == "activos")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

// Get returns one project.
//
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  domain.Project
// @Failure      404  {object}  errorResponse
// @Router       /api/proyectos/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	project, err := h.projects.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

// Create adds a project, ACTIVO unless stated otherwise.
//
// @Summary      Create a project
// @Tags         projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      createProjectRequest  true  "Project"
// @Success      201   {object}  domain.Project
// @Failure      400   {object}  errorResponse
// @Router       /api/proyectos [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	var req createProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	project, err := h.projects.Create(c.Request().Context(), domain.Project{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate.ptr(),
		EndDate:     req.EndDate.ptr(),
		State:       req.State,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, project)
}

// Update applies a partial edit.
//
// @Summary      Update a project
// @Tags         projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Project ID"
// @Param        body  body      updateProjectRequest  true  "Fields to change"
// @Success      200   {object}  domain.Project
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/proyectos/{id} [patch]
func (h *ProjectHandler) Update(c echo.Context) error {
	var req updateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	project, err := h.projects.Update(c.Request().Context(), c.Param("id"), domain.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate.ptr(),
		EndDate:     req.EndDate.ptr(),
		State:       req.State,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

// Delete removes a project.
//
// @Summary      Delete a project
// @Tags         projects
// @Security     BearerAuth
// @Param        id   path  string  true  "Project ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/proyectos/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	if err := h.projects.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Enroll signs the caller up as a volunteer of an ACTIVO project.
//
// @Summary      Volunteer for a project
// @Tags         projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string         true   "Project ID"
// @Param        body  body      enrollRequest  false  "Volunteer role"
// @Success      201   {object}  domain.Volunteering
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/proyectos/{id}/voluntarios [post]
func (h *ProjectHandler) Enroll(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	var req enrollRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	v, err := h.projects.Enroll(c.Request().Context(), session.UserID, c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

// ListVolunteers returns the enrollments of a project.
//
// @Summary      List project volunteers
// @Tags         projects
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {array}   domain.Volunteering
// @Failure      404  {object}  errorResponse
// @Router       /api/proyectos/{id}/voluntarios [get]
func (h *ProjectHandler) ListVolunteers(c echo.Context) error {
	list, err := h.projects.ListVolunteers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
