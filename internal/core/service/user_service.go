package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

// UserService implements account administration and profile edits.
type UserService struct {
	users  ports.UserRepository
	mailer ports.Mailer
	log    zerolog.Logger
}

func NewUserService(users ports.UserRepository, mailer ports.Mailer, log zerolog.Logger) *UserService {
	return &UserService{users: users, mailer: mailer, log: log}
}

// Create registers an account with any role. When no password is given one
// is generated and mailed to the user; a delivery failure is returned after
// the account already exists.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleVolunteer
	}
	if !role.Valid() {
		return nil, domain.Invalid("unknown role %q", role)
	}

	password := in.Password
	generated := password == ""
	if generated {
		var err error
		if password, err = GeneratePassword(defaultPasswordLength); err != nil {
			return nil, err
		}
	} else if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		Role:         role,
		Status:       domain.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info().Str("user_id", created.ID).Str("role", string(role)).Msg("user created by administrator")

	if generated {
		err := s.mailer.Send(ctx, ports.Mail{
			To:      created.Email,
			Subject: "Tu cuenta en la Fundación Huahuacuna",
			Body: fmt.Sprintf("Hola %s,\n\nSe creó una cuenta para ti.\nUsuario: %s\nContraseña: %s\n\nTe recomendamos cambiarla al ingresar.\n",
				created.Name, created.Email, password),
		})
		if err != nil {
			return created, fmt.Errorf("create user: send credentials: %w", err)
		}
	}
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in ports.ProfileInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name must not be empty")
		}
		user.Name = name
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		user.Address = strings.TrimSpace(*in.Address)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *UserService) SetAccess(ctx context.Context, id string, role *domain.Role, status *domain.UserStatus) (*domain.User, error) {
	if role == nil && status == nil {
		return nil, domain.Invalid("role or status is required")
	}
	if role != nil && !role.Valid() {
		return nil, domain.Invalid("unknown role %q", *role)
	}
	if status != nil && !status.Valid() {
		return nil, domain.Invalid("unknown status %q", *status)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != nil {
		user.Role = *role
	}
	if status != nil {
		user.Status = *status
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("set access: %w", err)
	}
	s.log.Info().Str("user_id", id).Str("role", string(user.Role)).Str("status", string(user.Status)).Msg("user access changed")
	return user, nil
}
