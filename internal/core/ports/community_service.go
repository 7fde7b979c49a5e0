package ports

import (
	"context"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

// RegisterForEventInput is the public sign-up payload.
type RegisterForEventInput struct {
	FullName string
	Email    string
	Phone    string
}

type EventService interface {
	Create(ctx context.Context, e domain.Event) (*domain.Event, error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error)
	Update(ctx context.Context, id string, e domain.Event) (*domain.Event, error)
	Delete(ctx context.Context, id string) error

	Register(ctx context.Context, eventID string, in RegisterForEventInput) (*domain.Registration, error)
	ListRegistrations(ctx context.Context, eventID string) ([]*domain.Registration, error)
	UpdateRegistrationState(ctx context.Context, id string, state domain.RegistrationState) (*domain.Registration, error)
}

type ProjectService interface {
	Create(ctx context.Context, p domain.Project) (*domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Project, error)
	Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, id string) error

	Enroll(ctx context.Context, userID, projectID, role string) (*domain.Volunteering, error)
	ListVolunteers(ctx context.Context, projectID string) ([]*domain.Volunteering, error)
}
