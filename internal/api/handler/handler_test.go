package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

type stubUserService struct {
	ports.UserService
	createFn func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
}

func (s *stubUserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

type stubChildService struct {
	ports.ChildService
	listedState domain.ChildState
	patch       domain.ChildPatch
}

func (s *stubChildService) List(_ context.Context, state domain.ChildState) ([]*domain.Child, error) {
	s.listedState = state
	return []*domain.Child{}, nil
}

func (s *stubChildService) Update(_ context.Context, id string, patch domain.ChildPatch) (*domain.Child, error) {
	s.patch = patch
	return &domain.Child{ID: id}, nil
}

type stubLogbookService struct {
	ports.LogbookService
	author string
	entry  domain.LogEntry
}

func (s *stubLogbookService) Create(_ context.Context, authorID string, e domain.LogEntry) (*domain.LogEntry, error) {
	s.author, s.entry = authorID, e
	e.ID = "log-1"
	e.AuthorID = authorID
	return &e, nil
}

type stubProjectService struct {
	ports.ProjectService
	userID, projectID, role string
	err                     error
}

func (s *stubProjectService) Enroll(_ context.Context, userID, projectID, role string) (*domain.Volunteering, error) {
	s.userID, s.projectID, s.role = userID, projectID, role
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Volunteering{ID: "v-1", UserID: userID, ProjectID: projectID, Role: role}, nil
}

func TestUserHandler_Create_MailFailureStillCreated(t *testing.T) {
	stub := &stubUserService{
		createFn: func(_ context.Context, in ports.CreateUserInput) (*domain.User, error) {
			assert.Equal(t, domain.RoleSponsor, in.Role)
			assert.Empty(t, in.Password)
			return &domain.User{ID: "u9", Email: in.Email, Role: in.Role}, errors.New("mailgun: 502")
		},
	}
	c, rec := newContext(http.MethodPost, "/api/usuarios", `{"name":"Luis","email":"luis@example.org","role":"padrino"}`)

	require.NoError(t, NewUserHandler(stub, zerolog.Nop()).Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp createUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u9", resp.User.ID)
	assert.NotEmpty(t, resp.Warning)
}

func TestUserHandler_Create_RejectsUnknownRole(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/api/usuarios", `{"name":"Luis","email":"luis@example.org","role":"superusuario"}`)

	err := NewUserHandler(&stubUserService{}, zerolog.Nop()).Create(c)
	assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestChildHandler_List_SponsorSeesAvailableOnly(t *testing.T) {
	stub := &stubChildService{}
	c, rec := newContext(http.MethodGet, "/api/ninos?estado=Apadrinado", "")
	withSession(c, "s1", domain.RoleSponsor)

	require.NoError(t, NewChildHandler(stub).List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ChildAvailable, stub.listedState)

	c, _ = newContext(http.MethodGet, "/api/ninos?estado=Apadrinado", "")
	withSession(c, "a1", domain.RoleAdmin)
	require.NoError(t, NewChildHandler(stub).List(c))
	assert.Equal(t, domain.ChildSponsored, stub.listedState)
}

func TestChildHandler_Update_PartialPatch(t *testing.T) {
	stub := &stubChildService{}
	c, _ := newContext(http.MethodPatch, "/api/ninos/c1", `{"state":"Inactivo","birth_date":"2016-04-21"}`)
	c.SetParamNames("id")
	c.SetParamValues("c1")

	require.NoError(t, NewChildHandler(stub).Update(c))
	require.NotNil(t, stub.patch.State)
	assert.Equal(t, domain.ChildInactive, *stub.patch.State)
	require.NotNil(t, stub.patch.BirthDate)
	assert.Equal(t, time.Date(2016, time.April, 21, 0, 0, 0, 0, time.UTC), *stub.patch.BirthDate)
	assert.Nil(t, stub.patch.Name)
}

func TestLogbookHandler_Create(t *testing.T) {
	stub := &stubLogbookService{}
	c, rec := newContext(http.MethodPost, "/api/bitacora/nino/c1", `{"description":"Primer día de clases","date":"2024-02-05T08:00:00-05:00"}`)
	c.SetParamNames("ninoId")
	c.SetParamValues("c1")
	withSession(c, "admin-1", domain.RoleAdmin)

	require.NoError(t, NewLogbookHandler(stub).Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "admin-1", stub.author)
	assert.Equal(t, "c1", stub.entry.ChildID)
	assert.Equal(t, time.Date(2024, time.February, 5, 13, 0, 0, 0, time.UTC), stub.entry.Date)
}

func TestProjectHandler_Enroll(t *testing.T) {
	stub := &stubProjectService{}
	c, rec := newContext(http.MethodPost, "/api/proyectos/p1/voluntarios", "")
	c.SetParamNames("id")
	c.SetParamValues("p1")
	withSession(c, "vol-1", domain.RoleVolunteer)

	require.NoError(t, NewProjectHandler(stub).Enroll(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "vol-1", stub.userID)
	assert.Equal(t, "p1", stub.projectID)
	assert.Empty(t, stub.role)
}

func TestProjectHandler_Enroll_Duplicate(t *testing.T) {
	stub := &stubProjectService{err: domain.ErrAlreadyEnrolled}
	c, _ := newContext(http.MethodPost, "/api/proyectos/p1/voluntarios", `{"role":"Tutor"}`)
	c.SetParamNames("id")
	c.SetParamValues("p1")
	withSession(c, "vol-1", domain.RoleVolunteer)

	err := NewProjectHandler(stub).Enroll(c)
	assert.ErrorIs(t, err, domain.ErrAlreadyEnrolled)
	assert.Equal(t, "Tutor", stub.role)
}

func TestParseTime(t *testing.T) {
	got, err := parseTime("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = parseTime("2024-03-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 1, 8, 30, 0, 0, time.UTC), got)

	got, err = parseTime("2025-01-01T00:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, got, endOfDayIfDate("2025-01-01T00:00:00", got))

	got, err = parseTime("2024-03-01T10:30:00+02:00")
	require.NoError(t, err)

	_, err = parseTime("01/03/2024")
	assert.Error(t, err)

	assert.Equal(t, got, endOfDayIfDate("2024-03-01T10:30:00+02:00", got))
}
