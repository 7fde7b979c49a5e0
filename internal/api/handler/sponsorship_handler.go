package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/huahuacuna/fundacion-api/internal/api/metrics"
	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

// SponsorshipHandler exposes the sponsorship lifecycle.
type SponsorshipHandler struct {
	sponsorships ports.SponsorshipService
}

func NewSponsorshipHandler(sponsorships ports.SponsorshipService) *SponsorshipHandler {
	return &SponsorshipHandler{sponsorships: sponsorships}
}

// createSponsorshipRequest: padrinos sponsor for themselves; an
// administrator must name the sponsor.
type createSponsorshipRequest struct {
	ChildID   string `json:"child_id" validate:"required"`
	SponsorID string `json:"sponsor_id"`
}

// Create links a padrino to an available child.
//
// @Summary      Sponsor a child
// @Tags         sponsorships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      createSponsorshipRequest  true  "Child and, for administrators, the sponsor"
// @Success      201   {object}  domain.Sponsorship
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/apadrinamientos [post]
func (h *SponsorshipHandler) Create(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	var req createSponsorshipRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sponsorID := session.UserID
	if session.Role == domain.RoleAdmin {
		if req.SponsorID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "sponsor_id is required")
		}
		sponsorID = req.SponsorID
	}

	sponsorship, err := h.sponsorships.Create(c.Request().Context(), sponsorID, req.ChildID)
	if err != nil {
		recordRejection(err)
		return err
	}
	metrics.SponsorshipsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, sponsorship)
}

// Mine lists the caller's sponsorships; ?estado=activo keeps only active ones.
//
// @Summary      List own sponsorships
// @Tags         sponsorships
// @Security     BearerAuth
// @Produce      json
// @Param        estado  query     string  false  "activo"
// @Success      200     {array}   domain.Sponsorship
// @Failure      403     {object}  errorResponse
// @Router       /api/apadrinamientos/mis-ahijados [get]
func (h *SponsorshipHandler) Mine(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	activeOnly := c.QueryParam("estado") == "activo"

	list, err := h.sponsorships.ListBySponsor(c.Request().Context(), session.UserID, activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// List returns every sponsorship.
//
// @Summary      List sponsorships
// @Tags         sponsorships
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   domain.Sponsorship
// @Failure      403  {object}  errorResponse
// @Router       /api/apadrinamientos [get]
func (h *SponsorshipHandler) List(c echo.Context) error {
	list, err := h.sponsorships.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Get returns one sponsorship.
//
// @Summary      Get a sponsorship
// @Tags         sponsorships
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Sponsorship ID"
// @Success      200  {object}  domain.Sponsorship
// @Failure      404  {object}  errorResponse
// @Router       /api/apadrinamientos/{id} [get]
func (h *SponsorshipHandler) Get(c echo.Context) error {
	sponsorship, err := h.sponsorships.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sponsorship)
}

// Finalize ends a sponsorship and makes the child available again.
//
// @Summary      Finalize a sponsorship
// @Tags         sponsorships
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Sponsorship ID"
// @Success      200  {object}  domain.Sponsorship
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /api/apadrinamientos/{id}/finalizar [post]
func (h *SponsorshipHandler) Finalize(c echo.Context) error {
	sponsorship, err := h.sponsorships.Finalize(c.Request().Context(), c.Param("id"))
	if err != nil {
		recordRejection(err)
		return err
	}
	metrics.SponsorshipsFinalizedTotal.Inc()
	return c.JSON(http.StatusOK, sponsorship)
}

func recordRejection(err error) {
	var reason string
	switch {
	case errors.Is(err, domain.ErrChildUnavailable):
		reason = "child_unavailable"
	case errors.Is(err, domain.ErrInvalidRole):
		reason = "invalid_role"
	case errors.Is(err, domain.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		reason = "invalid_transition"
	default:
		return
	}
	metrics.SponsorshipsRejectedTotal.WithLabelValues(reason).Inc()
}
