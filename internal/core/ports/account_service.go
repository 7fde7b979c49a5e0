package ports

import (
	"context"
	"time"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

// Session is what a signed token proves: who the caller is and which role
// they held when it was issued.
type Session struct {
	UserID    string
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

// RegisterInput is the public self-registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// AccountService covers sign-up, sessions and password management.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context, s Session) error
	// Authenticate validates a token and returns the caller's current record.
	// Revoked tokens and missing or inactive users yield ErrInvalidCredentials.
	Authenticate(ctx context.Context, token string) (*domain.User, *Session, error)

	StartRecovery(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	ChangePassword(ctx context.Context, userID, current, newPassword string) error
}

// CreateUserInput is the administrative user creation payload. An empty
// Password makes the service generate one and mail it to the user.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Role     domain.Role
}

// ProfileInput carries the self-editable profile fields. Nil means unchanged.
type ProfileInput struct {
	Name    *string
	Phone   *string
	Address *string
}

type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (*domain.User, error)
	// SetAccess changes role and/or status; nil arguments are left unchanged.
	SetAccess(ctx context.Context, id string, role *domain.Role, status *domain.UserStatus) (*domain.User, error)
}
