package ports

import (
	"context"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	// List returns all projects, or only those in state when non-empty.
	List(ctx context.Context, state domain.ProjectState) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

// VolunteeringRepository persists project enrollments. Create returns
// ErrAlreadyEnrolled when the (user, project) pair already exists.
type VolunteeringRepository interface {
	Create(ctx context.Context, v *domain.Volunteering) (*domain.Volunteering, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Volunteering, error)
}
