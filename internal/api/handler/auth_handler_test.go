package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/huahuacuna/fundacion-api/internal/api/middleware"
	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

type stubAccountService struct {
	ports.AccountService
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
	logoutFn   func(ctx context.Context, s ports.Session) error
	recoveryFn func(ctx context.Context, email string) error
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAccountService) Logout(ctx context.Context, session ports.Session) error {
	return s.logoutFn(ctx, session)
}

func (s *stubAccountService) StartRecovery(ctx context.Context, email string) error {
	return s.recoveryFn(ctx, email)
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withSession(c echo.Context, userID string, role domain.Role) {
	c.Set(middleware.ContextKeySession, &ports.Session{UserID: userID, Role: role, TokenID: "jti-" + userID})
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAccountService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Name != "Ana" || in.Email != "ana@example.org" || in.Password != "secreto123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Name: in.Name, Email: in.Email, Role: domain.RoleVolunteer}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/auth/register", `{"name":"Ana","email":"ana@example.org","password":"secreto123"}`)

	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("user missing in response: %v", resp)
	}
	if user["role"] != "voluntario" {
		t.Fatalf("unexpected role: %v", user["role"])
	}
	if _, leaked := user["PasswordHash"]; leaked {
		t.Fatalf("password hash leaked")
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	stub := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}
	c, _ := newContext(http.MethodPost, "/auth/register", `{"name":"Ana","email":"not-an-email","password":"short"}`)

	err := NewAuthHandler(stub).Register(c)
	if code := httpCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	msg := err.(*echo.HTTPError).Message.(string)
	if !strings.Contains(msg, "email must be a valid email") || !strings.Contains(msg, "password must be at least 8") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestAuthHandler_Register_DuplicatePropagates(t *testing.T) {
	stub := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	c, _ := newContext(http.MethodPost, "/auth/register", `{"name":"Ana","email":"ana@example.org","password":"secreto123"}`)

	if err := NewAuthHandler(stub).Register(c); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	stub := &stubAccountService{
		loginFn: func(_ context.Context, email, password string) (string, *domain.User, error) {
			if password != "secreto123" {
				return "", nil, domain.ErrInvalidCredentials
			}
			return "signed.jwt", &domain.User{ID: "u1", Email: email}, nil
		},
	}

	c, rec := newContext(http.MethodPost, "/auth/login", `{"email":"ana@example.org","password":"secreto123"}`)
	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "signed.jwt" || resp.User == nil || resp.User.ID != "u1" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	c, _ = newContext(http.MethodPost, "/auth/login", `{"email":"ana@example.org","password":"wrong"}`)
	if err := NewAuthHandler(stub).Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Logout_UsesSession(t *testing.T) {
	var revoked string
	stub := &stubAccountService{
		logoutFn: func(_ context.Context, s ports.Session) error {
			revoked = s.TokenID
			return nil
		},
	}
	c, rec := newContext(http.MethodPost, "/auth/logout", "")
	withSession(c, "u1", domain.RoleSponsor)

	if err := NewAuthHandler(stub).Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if revoked != "jti-u1" {
		t.Fatalf("expected token jti-u1 revoked, got %q", revoked)
	}
}

func TestAuthHandler_Logout_WithoutSession(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/auth/logout", "")
	err := NewAuthHandler(&stubAccountService{}).Logout(c)
	if code := httpCode(t, err); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthHandler_StartRecovery_SameAnswer(t *testing.T) {
	stub := &stubAccountService{
		recoveryFn: func(context.Context, string) error { return nil },
	}
	var bodies []string
	for _, email := range []string{"ana@example.org", "nadie@example.org"} {
		c, rec := newContext(http.MethodPost, "/api/usuarios/recuperar", `{"email":"`+email+`"}`)
		if err := NewAuthHandler(stub).StartRecovery(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("responses differ: %q vs %q", bodies[0], bodies[1])
	}
}
