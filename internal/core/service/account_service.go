package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

const (
	resetCodeTTL = 15 * time.Minute
	// maxResetAttempts wrong guesses void the pending code.
	maxResetAttempts = 5
)

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AccountService implements registration, sessions and password recovery.
type AccountService struct {
	users    ports.UserRepository
	codes    ports.ResetCodeStore
	revoked  ports.TokenRevoker
	mailer   ports.Mailer
	secret   []byte
	tokenTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewAccountService(
	users ports.UserRepository,
	codes ports.ResetCodeStore,
	revoked ports.TokenRevoker,
	mailer ports.Mailer,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AccountService{
		users:    users,
		codes:    codes,
		revoked:  revoked,
		mailer:   mailer,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		Role:         domain.RoleVolunteer,
		Status:       domain.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login verifies the credentials and issues a session token. Unknown emails,
// wrong passwords and inactive accounts all fail the same way.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if !passwordMatches(user.PasswordHash, password) || !user.Active() {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AccountService) Logout(ctx context.Context, session ports.Session) error {
	if session.TokenID == "" {
		return domain.ErrInvalidCredentials
	}
	if err := s.revoked.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to the caller's current user record.
// The role of the returned session is the stored one, so role changes apply
// to tokens already issued.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*domain.User, *ports.Session, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}
	if revoked {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}
	if !user.Active() {
		return nil, nil, domain.ErrInvalidCredentials
	}

	return user, &ports.Session{
		UserID:    user.ID,
		Role:      user.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// StartRecovery mails a reset code when the address belongs to an account.
// It succeeds silently for unknown addresses.
func (s *AccountService) StartRecovery(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.Debug().Msg("recovery requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("start recovery: %w", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return err
	}
	if err := s.codes.Save(ctx, email, code, resetCodeTTL); err != nil {
		return fmt.Errorf("start recovery: save code: %w", err)
	}

	err = s.mailer.Send(ctx, ports.Mail{
		To:      user.Email,
		Subject: "Código de recuperación de contraseña",
		Body: fmt.Sprintf("Hola %s,\n\nTu código de recuperación es: %s\nEl código vence en %d minutos.\n",
			user.Name, code, int(resetCodeTTL.Minutes())),
	})
	if err != nil {
		return fmt.Errorf("start recovery: send code: %w", err)
	}
	return nil
}

func (s *AccountService) VerifyCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	stored, err := s.codes.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidResetCode) {
			return err
		}
		return fmt.Errorf("verify code: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) == 1 {
		return nil
	}

	failures, err := s.codes.RecordFailure(ctx, email)
	if err != nil {
		return fmt.Errorf("verify code: %w", err)
	}
	if failures >= maxResetAttempts {
		if err := s.codes.Delete(ctx, email); err != nil {
			return fmt.Errorf("verify code: void code: %w", err)
		}
		s.log.Warn().Int("failures", failures).Msg("reset code voided after repeated wrong guesses")
	}
	return domain.ErrInvalidResetCode
}

func (s *AccountService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if err := s.VerifyCode(ctx, email, code); err != nil {
		return err
	}

	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrInvalidResetCode
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if err := s.codes.Delete(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to consume reset code")
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !passwordMatches(user.PasswordHash, current) {
		return domain.ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (s *AccountService) generateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
