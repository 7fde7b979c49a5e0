package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
	"github.com/huahuacuna/fundacion-api/internal/infrastructure/http/handlers"
)

// tokens maps bearer tokens to the users they authenticate.
var tokens = map[string]*domain.User{
	"admin-token":     {ID: "admin-1", Role: domain.RoleAdmin, Status: domain.UserActive},
	"sponsor-token":   {ID: "sponsor-1", Role: domain.RoleSponsor, Status: domain.UserActive},
	"volunteer-token": {ID: "volunteer-1", Role: domain.RoleVolunteer, Status: domain.UserActive},
}

type stubAccounts struct {
	ports.AccountService
}

func (stubAccounts) Authenticate(_ context.Context, token string) (*domain.User, *ports.Session, error) {
	u, ok := tokens[token]
	if !ok {
		return nil, nil, domain.ErrInvalidCredentials
	}
	return u, &ports.Session{UserID: u.ID, Role: u.Role, TokenID: "jti-" + u.ID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type stubSponsorships struct {
	ports.SponsorshipService
	sponsorID, childID string
	err                error
}

func (s *stubSponsorships) Create(_ context.Context, sponsorID, childID string) (*domain.Sponsorship, error) {
	s.sponsorID, s.childID = sponsorID, childID
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Sponsorship{ID: "sp-1", SponsorID: sponsorID, ChildID: childID, State: domain.SponsorshipActive}, nil
}

type stubDonations struct {
	ports.DonationService
	created ports.CreateDonationInput
	filter  domain.ReportFilter
	rows    []domain.DonorSummary
}

func (s *stubDonations) Create(_ context.Context, in ports.CreateDonationInput) (*domain.Donation, error) {
	s.created = in
	typ, err := domain.InferDonationType(in.Type, in.Amount, in.MaterialSubtype)
	if err != nil {
		return nil, err
	}
	return &domain.Donation{ID: "d-1", DonorID: in.DonorID, Type: typ, Amount: in.Amount, State: domain.DonationPending}, nil
}

func (s *stubDonations) Report(_ context.Context, f domain.ReportFilter) ([]domain.DonorSummary, error) {
	s.filter = f
	return s.rows, nil
}

type fixture struct {
	e            *echo.Echo
	sponsorships *stubSponsorships
	donations    *stubDonations
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sponsorships: &stubSponsorships{},
		donations:    &stubDonations{},
	}
	f.e = NewRouter(Services{
		Accounts:     stubAccounts{},
		Sponsorships: f.sponsorships,
		Donations:    f.donations,
	}, Options{
		Log:        zerolog.Nop(),
		Checks:     map[string]handlers.Check{"store": func(context.Context) error { return nil }},
		Registerer: prometheus.NewRegistry(),
	})
	return f
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_SponsorCreatesForThemselves(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/apadrinamientos", "sponsor-token", `{"child_id":"c-1","sponsor_id":"someone-else"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "sponsor-1", f.sponsorships.sponsorID)
	assert.Equal(t, "c-1", f.sponsorships.childID)
}

func TestRouter_AdminCreatesOnBehalf(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/apadrinamientos", "admin-token", `{"child_id":"c-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/apadrinamientos", "admin-token", `{"child_id":"c-1","sponsor_id":"sponsor-9"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "sponsor-9", f.sponsorships.sponsorID)
}

func TestRouter_VolunteerCannotSponsor(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/apadrinamientos", "volunteer-token", `{"child_id":"c-1"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.sponsorships.childID)
}

func TestRouter_ChildUnavailableIsConflict(t *testing.T) {
	f := newFixture(t)
	f.sponsorships.err = domain.ErrChildUnavailable

	rec := f.do(http.MethodPost, "/api/apadrinamientos", "sponsor-token", `{"child_id":"c-1"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrChildUnavailable.Error())
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/usuarios", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/usuarios", "forged", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/usuarios", "sponsor-token", "").Code)
}

func TestRouter_DonationDonorFromToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/donaciones", "", `{"amount":100}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, f.donations.created.DonorID)

	var d domain.Donation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, domain.DonationMonetary, d.Type)

	rec = f.do(http.MethodPost, "/api/donaciones", "sponsor-token", `{"material_subtype":"Alimentos"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "sponsor-1", f.donations.created.DonorID)

	rec = f.do(http.MethodPost, "/api/donaciones", "", `{"description":"nada"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_DonorReportCSV(t *testing.T) {
	f := newFixture(t)
	f.donations.rows = []domain.DonorSummary{
		{DonorID: "u1", Email: "ana@example.org", TotalAmount: 150, DonationCount: 2,
			LastDonationAt: time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)},
	}

	rec := f.do(http.MethodGet, "/api/donaciones/reporte?tipo=MONETARIA&from=2024-01-01&to=2024-12-31", "admin-token", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.DonationMonetary, f.donations.filter.Type)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), f.donations.filter.From)
	assert.Equal(t, time.Date(2024, time.December, 31, 23, 59, 59, 999999999, time.UTC), f.donations.filter.To)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "reporte_donantes_MONETARIA.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\ufeffidUsuario,"))
	assert.Contains(t, rec.Body.String(), "u1,ana@example.org,150,2,2024-05-02T10:00:00Z")
}

func TestRouter_DonorReportAcceptsLocalDateTime(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/donaciones/reporte?format=json&from=2025-01-01T00:00:00&to=2025-01-31T18:30:00", "admin-token", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), f.donations.filter.From)
	assert.Equal(t, time.Date(2025, time.January, 31, 18, 30, 0, 0, time.UTC), f.donations.filter.To)
}

func TestRouter_DonorReportRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/donaciones/reporte?format=xml", "admin-token", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/donaciones/reporte?from=yesterday", "admin-token", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/donaciones/reporte?from=2025-01-01T00:00", "admin-token", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/donaciones/reporte", "sponsor-token", "").Code)
}

func TestRouter_HealthProbes(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health/ready", "", "").Code)
}
