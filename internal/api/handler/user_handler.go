package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

// UserHandler serves the caller's profile and the administrative user registry.
type UserHandler struct {
	users ports.UserService
	log   zerolog.Logger
}

func NewUserHandler(users ports.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

type createUserRequest struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"omitempty,min=8"`
	Phone    string      `json:"phone"`
	Address  string      `json:"address"`
	Role     domain.Role `json:"role" validate:"omitempty,oneof=administrador voluntario padrino"`
}

// createUserResponse carries a warning when the account exists but the
// generated credentials could not be mailed.
type createUserResponse struct {
	User    *domain.User `json:"user"`
	Warning string       `json:"warning,omitempty"`
}

type updateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type setAccessRequest struct {
	Role   *domain.Role       `json:"role" validate:"omitempty,oneof=administrador voluntario padrino"`
	Status *domain.UserStatus `json:"status" validate:"omitempty,oneof=activo inactivo"`
}

// Profile returns the caller's own record.
//
// @Summary      Get own profile
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /api/usuarios/perfil [get]
func (h *UserHandler) Profile(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.Request().Context(), session.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile edits the caller's name, phone and address.
//
// @Summary      Update own profile
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/usuarios/perfil [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), session.UserID, ports.ProfileInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// List returns every account.
//
// @Summary      List users
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /api/usuarios [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Create registers an account with any role. Without a password one is
// generated and mailed to the new user.
//
// @Summary      Create a user
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  createUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/usuarios [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Create(c.Request().Context(), ports.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     req.Role,
	})
	if err != nil && user == nil {
		return err
	}
	resp := createUserResponse{User: user}
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", user.ID).Msg("user created but credentials mail failed")
		resp.Warning = "la cuenta fue creada pero no se pudo enviar el correo con la contraseña"
	}
	return c.JSON(http.StatusCreated, resp)
}

// SetAccess changes a user's role or status.
//
// @Summary      Change role or status
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "User ID"
// @Param        body  body      setAccessRequest  true  "New role and/or status"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/usuarios/{id} [patch]
func (h *UserHandler) SetAccess(c echo.Context) error {
	var req setAccessRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Role == nil && req.Status == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "role or status is required")
	}

	user, err := h.users.SetAccess(c.Request().Context(), c.Param("id"), req.Role, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
