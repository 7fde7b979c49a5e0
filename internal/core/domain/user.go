package domain

import "time"

// Role is the capability group a user belongs to.
type Role string

const (
	RoleAdmin     Role = "administrador"
	RoleVolunteer Role = "voluntario"
	RoleSponsor   Role = "padrino"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVolunteer, RoleSponsor:
		return true
	}
	return false
}

// UserStatus tells whether an account may sign in.
type UserStatus string

const (
	UserActive   UserStatus = "activo"
	UserInactive UserStatus = "inactivo"
)

func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserInactive
}

// User models an account of the foundation platform. PasswordHash never
// leaves the service layer.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Active reports whether the account may authenticate.
func (u *User) Active() bool {
	return u.Status == UserActive
}
