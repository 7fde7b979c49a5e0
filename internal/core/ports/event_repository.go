package ports

import (
	"context"
	"time"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

// EventRepository defines persistence operations for public events.
type EventRepository interface {
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	// List returns events ordered by date. activeOnly drops inactive events;
	// a non-zero from drops events dated before it.
	List(ctx context.Context, activeOnly bool, from time.Time) ([]*domain.Event, error)
	Update(ctx context.Context, e *domain.Event) error
	Delete(ctx context.Context, id string) error
}

// RegistrationRepository persists event registrations.
type RegistrationRepository interface {
	Create(ctx context.Context, r *domain.Registration) (*domain.Registration, error)
	FindByID(ctx context.Context, id string) (*domain.Registration, error)
	// List returns registrations newest first; empty eventID lists all.
	List(ctx context.Context, eventID string) ([]*domain.Registration, error)
	UpdateState(ctx context.Context, id string, state domain.RegistrationState) (*domain.Registration, error)
}
