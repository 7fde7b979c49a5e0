package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/huahuacuna/fundacion-api/internal/api/metrics"
	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
	"github.com/huahuacuna/fundacion-api/internal/infrastructure/report"
)

type DonationHandler struct {
	donations ports.DonationService
}

func NewDonationHandler(donations ports.DonationService) *DonationHandler {
	return &DonationHandler{donations: donations}
}

type createDonationRequest struct {
	Type            domain.DonationType `json:"type" validate:"omitempty,oneof=MONETARIA MATERIAL"`
	Amount          float64             `json:"amount" validate:"gte=0"`
	Description     string              `json:"description"`
	Bank            string              `json:"bank"`
	Email           string              `json:"email" validate:"omitempty,email"`
	TaxID           string              `json:"tax_id"`
	MaterialSubtype string              `json:"material_subtype"`
}

type updateDonationStateRequest struct {
	State domain.DonationState `json:"state" validate:"required,oneof=PENDIENTE COMPLETADA CANCELADA"`
}

// Create records a donation. Authenticated callers are stored as the donor;
// anonymous donations are accepted too.
//
// @Summary      Record a donation
// @Tags         donations
// @Accept       json
// @Produce      json
// @Param        body  body      createDonationRequest  true  "Donation; type is inferred when omitted"
// @Success      201   {object}  domain.Donation
// @Failure      400   {object}  errorResponse
// @Router       /api/donaciones [post]
func (h *DonationHandler) Create(c echo.Context) error {
	var req createDonationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.CreateDonationInput{
		Type:            req.Type,
		Amount:          req.Amount,
		Description:     req.Description,
		Bank:            req.Bank,
		Email:           req.Email,
		TaxID:           req.TaxID,
		MaterialSubtype: req.MaterialSubtype,
	}
	if session := optionalSession(c); session != nil {
		in.DonorID = session.UserID
	}

	donation, err := h.donations.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	metrics.DonationsCreatedTotal.WithLabelValues(string(donation.Type)).Inc()
	return c.JSON(http.StatusCreated, donation)
}

// List returns donations, optionally filtered by state and donor e-mail.
//
// @Summary      List donations
// @Tags         donations
// @Security     BearerAuth
// @Produce      json
// @Param        estado  query     string  false  "PENDIENTE, COMPLETADA or CANCELADA"
// @Param        correo  query     string  false  "Donor e-mail"
// @Success      200     {array}   domain.Donation
// @Failure      400     {object}  errorResponse
// @Router       /api/donaciones [get]
func (h *DonationHandler) List(c echo.Context) error {
	state := domain.DonationState(c.QueryParam("estado"))
	if state != "" && !state.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown donation state %q", state))
	}

	donations, err := h.donations.List(c.Request().Context(), domain.DonationFilter{
		State: state,
		Email: c.QueryParam("correo"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, donations)
}

// Get returns one donation.
//
// @Summary      Get a donation
// @Tags         donations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Donation ID"
// @Success      200  {object}  domain.Donation
// @Failure      404  {object}  errorResponse
// @Router       /api/donaciones/{id} [get]
func (h *DonationHandler) Get(c echo.Context) error {
	donation, err := h.donations.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, donation)
}

// UpdateState sets the donation state. Any state may follow any other.
//
// @Summary      Change donation state
// @Tags         donations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                      true  "Donation ID"
// @Param        body  body      updateDonationStateRequest  true  "New state"
// @Success      200   {object}  domain.Donation
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/donaciones/{id}/estado [patch]
func (h *DonationHandler) UpdateState(c echo.Context) error {
	var req updateDonationStateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	donation, err := h.donations.UpdateState(c.Request().Context(), c.Param("id"), req.State)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, donation)
}

// Delete removes a donation.
//
// @Summary      Delete a donation
// @Tags         donations
// @Security     BearerAuth
// @Param        id   path  string  true  "Donation ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/donaciones/{id} [delete]
func (h *DonationHandler) Delete(c echo.Context) error {
	if err := h.donations.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Report aggregates donations per donor. Every filter is optional.
//
// @Summary      Donor report
// @Tags         donations
// @Security     BearerAuth
// @Produce      json
// @Produce      text/csv
// @Param        from             query     string  false  "Start, inclusive (YYYY-MM-DD or RFC 3339)"
// @Param        to               query     string  false  "End, inclusive (YYYY-MM-DD or RFC 3339)"
// @Param        tipo             query     string  false  "MONETARIA or MATERIAL"
// @Param        tipoDotacion     query     string  false  "Material subtype"
// @Param        format           query     string  false  "csv (default) or json"
// @Success      200              {array}   domain.DonorSummary
// @Failure      400              {object}  errorResponse
// @Router       /api/donaciones/reporte [get]
func (h *DonationHandler) Report(c echo.Context) error {
	filter, err := reportFilter(c)
	if err != nil {
		return err
	}
	format := c.QueryParam("format")
	if format != "" && format != "csv" && format != "json" {
		return echo.NewHTTPError(http.StatusBadRequest, "format must be csv or json")
	}

	rows, err := h.donations.Report(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if format == "json" {
		return c.JSON(http.StatusOK, rows)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, report.ContentTypeCSV)
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", report.DonorFilename(filter.Type, filter.MaterialSubtype)))
	res.WriteHeader(http.StatusOK)
	return report.WriteDonorCSV(res, rows)
}

func reportFilter(c echo.Context) (domain.ReportFilter, error) {
	var f domain.ReportFilter
	if v := c.QueryParam("from"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "from: "+err.Error())
		}
		f.From = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "to: "+err.Error())
		}
		f.To = endOfDayIfDate(v, t)
	}
	f.Type = domain.DonationType(firstQuery(c, "tipo", "type"))
	f.MaterialSubtype = firstQuery(c, "tipoDotacion", "materialSubtype")
	return f, nil
}

func firstQuery(c echo.Context, names ...string) string {
	for _, name := range names {
		if v := c.QueryParam(name); v != "" {
			return v
		}
	}
	return ""
}
