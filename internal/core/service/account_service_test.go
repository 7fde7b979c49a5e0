package service

//go:generate mockgen -source=../ports/notification.go -destination=../ports/mocks/notification_mocks.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
	"github.com/huahuacuna/fundacion-api/internal/core/ports/mocks"
)

const testSecret = "test-secret"

type AccountServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	users   *stubUserRepo
	codes   *mocks.MockResetCodeStore
	revoked *mocks.MockTokenRevoker
	mailer  *mocks.MockMailer
	svc     *AccountService
}

func TestAccountServiceSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceSuite))
}

func (s *AccountServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = newStubUserRepo()
	s.codes = mocks.NewMockResetCodeStore(s.ctrl)
	s.revoked = mocks.NewMockTokenRevoker(s.ctrl)
	s.mailer = mocks.NewMockMailer(s.ctrl)
	s.svc = NewAccountService(s.users, s.codes, s.revoked, s.mailer, testSecret, time.Hour, zerolog.Nop())
}

func (s *AccountServiceSuite) register(email, password string) *domain.User {
	u, err := s.svc.Register(context.Background(), ports.RegisterInput{Name: "Ana", Email: email, Password: password})
	s.Require().NoError(err)
	return u
}

func (s *AccountServiceSuite) TestRegister() {
	s.Run("normalizes email and defaults role", func() {
		u := s.register("  Ana@Example.COM ", "password1")
		s.Equal("ana@example.com", u.Email)
		s.Equal(domain.RoleVolunteer, u.Role)
		s.Equal(domain.UserActive, u.Status)
		s.NotEqual("password1", u.PasswordHash)
		s.NoError(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password1")))
	})

	s.Run("duplicate email", func() {
		_, err := s.svc.Register(context.Background(), ports.RegisterInput{Name: "Otra", Email: "ANA@example.com", Password: "password2"})
		s.ErrorIs(err, domain.ErrUserExists)
	})

	s.Run("short password", func() {
		_, err := s.svc.Register(context.Background(), ports.RegisterInput{Name: "Luis", Email: "luis@example.com", Password: "short"})
		s.ErrorIs(err, domain.ErrValidation)
	})

	s.Run("bad email", func() {
		_, err := s.svc.Register(context.Background(), ports.RegisterInput{Name: "Luis", Email: "luis", Password: "password1"})
		s.ErrorIs(err, domain.ErrValidation)
	})
}

func (s *AccountServiceSuite) TestLogin() {
	u := s.register("carol@example.com", "s3cretpass")

	s.Run("issues a token with subject, role and id", func() {
		token, user, err := s.svc.Login(context.Background(), "Carol@example.com", "s3cretpass")
		s.Require().NoError(err)
		s.Equal(u.ID, user.ID)

		claims := &tokenClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return []byte(testSecret), nil
		})
		s.Require().NoError(err)
		s.True(parsed.Valid)
		s.Equal(u.ID, claims.Subject)
		s.Equal(string(domain.RoleVolunteer), claims.Role)
		s.NotEmpty(claims.ID)
	})

	s.Run("wrong password and unknown email look the same", func() {
		_, _, err := s.svc.Login(context.Background(), "carol@example.com", "nope-nope")
		s.ErrorIs(err, domain.ErrInvalidCredentials)
		_, _, err = s.svc.Login(context.Background(), "nobody@example.com", "s3cretpass")
		s.ErrorIs(err, domain.ErrInvalidCredentials)
	})

	s.Run("inactive account", func() {
		stored, _ := s.users.FindByID(context.Background(), u.ID)
		stored.Status = domain.UserInactive
		s.Require().NoError(s.users.Update(context.Background(), stored))

		_, _, err := s.svc.Login(context.Background(), "carol@example.com", "s3cretpass")
		s.ErrorIs(err, domain.ErrInvalidCredentials)
	})
}

func (s *AccountServiceSuite) TestAuthenticate() {
	u := s.register("dora@example.com", "password1")
	token, _, err := s.svc.Login(context.Background(), "dora@example.com", "password1")
	s.Require().NoError(err)

	s.Run("valid token resolves the stored user", func() {
		s.revoked.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(false, nil)

		user, session, err := s.svc.Authenticate(context.Background(), token)
		s.Require().NoError(err)
		s.Equal(u.ID, user.ID)
		s.Equal(u.ID, session.UserID)
		s.NotEmpty(session.TokenID)
	})

	s.Run("role change applies to issued tokens", func() {
		stored, _ := s.users.FindByID(context.Background(), u.ID)
		stored.Role = domain.RoleSponsor
		s.Require().NoError(s.users.Update(context.Background(), stored))
		s.revoked.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(false, nil)

		_, session, err := s.svc.Authenticate(context.Background(), token)
		s.Require().NoError(err)
		s.Equal(domain.RoleSponsor, session.Role)
	})

	s.Run("revoked token", func() {
		s.revoked.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(true, nil)
		_, _, err := s.svc.Authenticate(context.Background(), token)
		s.ErrorIs(err, domain.ErrInvalidCredentials)
	})

	s.Run("revocation store down", func() {
		s.revoked.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))
		_, _, err := s.svc.Authenticate(context.Background(), token)
		s.Error(err)
		s.NotErrorIs(err, domain.ErrInvalidCredentials)
	})

	s.Run("garbage token", func() {
		_, _, err := s.svc.Authenticate(context.Background(), "not-a-jwt")
		s.ErrorIs(err, domain.ErrInvalidCredentials)
	})

	s.Run("foreign signature", func() {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
			Role: string(domain.RoleAdmin),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   u.ID,
				ID:        "x",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := forged.SignedString([]byte("other-secret"))
		s.Require().NoError(err)
		_, _, err = s.svc.Authenticate(context.Background(), signed)
		s.ErrorIs(err, domain.ErrInvalidCredentials)
	})

	s.Run("inactive user", func() {
		stored, _ := s.users.FindByID(context.Background(), u.ID)
		stored.Status = domain.UserInactive
		s.Require().NoError(s.users.Update(context.Background(), stored))
		s.revoked.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(false, nil)

		_, _, err := s.svc.Authenticate(context.Background(), token)
		s.ErrorIs(err, domain.ErrInvalidCredentials)
	})
}

func (s *AccountServiceSuite) TestLogout() {
	expires := time.Now().Add(time.Hour)
	s.revoked.EXPECT().Revoke(gomock.Any(), "jti-1", expires).Return(nil)
	s.NoError(s.svc.Logout(context.Background(), ports.Session{UserID: "u", TokenID: "jti-1", ExpiresAt: expires}))

	s.ErrorIs(s.svc.Logout(context.Background(), ports.Session{UserID: "u"}), domain.ErrInvalidCredentials)
}

func (s *AccountServiceSuite) TestRecoveryFlow() {
	s.register("eva@example.com", "password1")
	var code string

	s.codes.EXPECT().
		Save(gomock.Any(), "eva@example.com", gomock.Any(), resetCodeTTL).
		DoAndReturn(func(_ context.Context, _ string, c string, _ time.Duration) error {
			code = c
			return nil
		})
	s.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m ports.Mail) error {
			s.Equal("eva@example.com", m.To)
			s.Contains(m.Body, code)
			return nil
		})
	s.Require().NoError(s.svc.StartRecovery(context.Background(), " EVA@example.com"))
	s.Len(code, 6)

	s.codes.EXPECT().Get(gomock.Any(), "eva@example.com").Return(code, nil).Times(2)
	s.NoError(s.svc.VerifyCode(context.Background(), "eva@example.com", code))

	s.codes.EXPECT().Delete(gomock.Any(), "eva@example.com").Return(nil)
	s.Require().NoError(s.svc.ResetPassword(context.Background(), "eva@example.com", code, "newpassword"))

	_, _, err := s.svc.Login(context.Background(), "eva@example.com", "newpassword")
	s.NoError(err)
}

func (s *AccountServiceSuite) TestStartRecovery_UnknownEmailIsSilent() {
	// No expectations on codes or mailer: nothing may be stored or sent.
	s.NoError(s.svc.StartRecovery(context.Background(), "ghost@example.com"))
}

func (s *AccountServiceSuite) TestStartRecovery_MailFailure() {
	s.register("fer@example.com", "password1")
	s.codes.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("mailgun 503"))

	err := s.svc.StartRecovery(context.Background(), "fer@example.com")
	s.Error(err)
}

func (s *AccountServiceSuite) TestVerifyCode_Mismatch() {
	s.codes.EXPECT().Get(gomock.Any(), "gus@example.com").Return("123456", nil)
	s.codes.EXPECT().RecordFailure(gomock.Any(), "gus@example.com").Return(1, nil)
	s.ErrorIs(s.svc.VerifyCode(context.Background(), "gus@example.com", "654321"), domain.ErrInvalidResetCode)

	s.codes.EXPECT().Get(gomock.Any(), "gus@example.com").Return("", domain.ErrInvalidResetCode)
	s.ErrorIs(s.svc.VerifyCode(context.Background(), "gus@example.com", "123456"), domain.ErrInvalidResetCode)
}

func (s *AccountServiceSuite) TestVerifyCode_VoidsCodeAfterRepeatedFailures() {
	ctx := context.Background()
	gomock.InOrder(
		s.codes.EXPECT().Get(gomock.Any(), "ivo@example.com").Return("123456", nil),
		s.codes.EXPECT().RecordFailure(gomock.Any(), "ivo@example.com").Return(maxResetAttempts-1, nil),
		s.codes.EXPECT().Get(gomock.Any(), "ivo@example.com").Return("123456", nil),
		s.codes.EXPECT().RecordFailure(gomock.Any(), "ivo@example.com").Return(maxResetAttempts, nil),
		s.codes.EXPECT().Delete(gomock.Any(), "ivo@example.com").Return(nil),
	)

	s.ErrorIs(s.svc.VerifyCode(ctx, "ivo@example.com", "000001"), domain.ErrInvalidResetCode)
	s.ErrorIs(s.svc.VerifyCode(ctx, "ivo@example.com", "000002"), domain.ErrInvalidResetCode)
}

func (s *AccountServiceSuite) TestVerifyCode_FailureCountErrorIsNotInvalidCode() {
	s.codes.EXPECT().Get(gomock.Any(), "jo@example.com").Return("123456", nil)
	s.codes.EXPECT().RecordFailure(gomock.Any(), "jo@example.com").Return(0, errors.New("redis down"))

	err := s.svc.VerifyCode(context.Background(), "jo@example.com", "000000")
	s.Error(err)
	s.NotErrorIs(err, domain.ErrInvalidResetCode)
}

func (s *AccountServiceSuite) TestChangePassword() {
	u := s.register("hugo@example.com", "password1")

	s.ErrorIs(s.svc.ChangePassword(context.Background(), u.ID, "wrong-pass", "password2"), domain.ErrInvalidCredentials)
	s.ErrorIs(s.svc.ChangePassword(context.Background(), u.ID, "password1", "short"), domain.ErrValidation)
	s.Require().NoError(s.svc.ChangePassword(context.Background(), u.ID, "password1", "password2"))

	_, _, err := s.svc.Login(context.Background(), "hugo@example.com", "password2")
	s.NoError(err)
}

// memResetCodes is an in-memory ResetCodeStore for exhaustive guessing tests.
type memResetCodes struct {
	codes    map[string]string
	failures map[string]int
}

func (m *memResetCodes) Save(_ context.Context, email, code string, _ time.Duration) error {
	m.codes[email] = code
	delete(m.failures, email)
	return nil
}

func (m *memResetCodes) Get(_ context.Context, email string) (string, error) {
	code, ok := m.codes[email]
	if !ok {
		return "", domain.ErrInvalidResetCode
	}
	return code, nil
}

func (m *memResetCodes) RecordFailure(_ context.Context, email string) (int, error) {
	if _, ok := m.codes[email]; !ok {
		return 0, nil
	}
	m.failures[email]++
	return m.failures[email], nil
}

func (m *memResetCodes) Delete(_ context.Context, email string) error {
	delete(m.codes, email)
	delete(m.failures, email)
	return nil
}

func TestAccountService_ResetCodeCannotBeGuessed(t *testing.T) {
	ctx := context.Background()
	codes := &memResetCodes{codes: map[string]string{}, failures: map[string]int{}}
	svc := NewAccountService(newStubUserRepo(), codes, nil, nil, testSecret, time.Hour, zerolog.Nop())
	const live = "837412"
	if err := codes.Save(ctx, "kim@example.com", live, resetCodeTTL); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 1000000; i++ {
		guess := fmt.Sprintf("%06d", i)
		if guess == live {
			continue
		}
		err := svc.VerifyCode(ctx, "kim@example.com", guess)
		if !errors.Is(err, domain.ErrInvalidResetCode) {
			t.Fatalf("guess %s: err = %v, want ErrInvalidResetCode", guess, err)
		}
		if _, ok := codes.codes["kim@example.com"]; !ok {
			if i+1 != maxResetAttempts {
				t.Fatalf("code voided after %d guesses, want %d", i+1, maxResetAttempts)
			}
			break
		}
	}

	if err := svc.VerifyCode(ctx, "kim@example.com", live); !errors.Is(err, domain.ErrInvalidResetCode) {
		t.Fatalf("live code after lockout: err = %v, want ErrInvalidResetCode", err)
	}
}
