package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

type ProjectService struct {
	projects   ports.ProjectRepository
	volunteers ports.VolunteeringRepository
	log        zerolog.Logger
}

func NewProjectService(projects ports.ProjectRepository, volunteers ports.VolunteeringRepository, log zerolog.Logger) *ProjectService {
	return &ProjectService{projects: projects, volunteers: volunteers, log: log}
}

func validateProject(p *domain.Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return domain.Invalid("name is required")
	}
	if !p.State.Valid() {
		return domain.Invalid("unknown project state %q", p.State)
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return domain.Invalid("end date must not be before start date")
	}
	return nil
}

func (s *ProjectService) Create(ctx context.Context, p domain.Project) (*domain.Project, error) {
	p.ID = ""
	p.Name = strings.TrimSpace(p.Name)
	if p.State == "" {
		p.State = domain.ProjectActive
	}
	if err := validateProject(&p); err != nil {
		return nil, err
	}
	created, err := s.projects.Create(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return created, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.FindByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context, activeOnly bool) ([]*domain.Project, error) {
	if activeOnly {
		return s.projects.List(ctx, domain.ProjectActive)
	}
	return s.projects.List(ctx, "")
}

func (s *ProjectService) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(p)
	p.Name = strings.TrimSpace(p.Name)
	if err := validateProject(p); err != nil {
		return nil, err
	}
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.projects.Delete(ctx, id)
}

// Enroll signs the user up for an active project. The repository rejects a
// second enrollment of the same user with ErrAlreadyEnrolled.
func (s *ProjectService) Enroll(ctx context.Context, userID, projectID, role string) (*domain.Volunteering, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.State != domain.ProjectActive {
		return nil, domain.ErrProjectClosed
	}
	role = strings.TrimSpace(role)
	if role == "" {
		role = domain.DefaultVolunteerRole
	}

	v, err := s.volunteers.Create(ctx, &domain.Volunteering{
		UserID:     userID,
		ProjectID:  p.ID,
		Role:       role,
		EnrolledAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("enroll volunteer: %w", err)
	}
	s.log.Info().Str("user_id", userID).Str("project_id", p.ID).Msg("volunteer enrolled")
	return v, nil
}

func (s *ProjectService) ListVolunteers(ctx context.Context, projectID string) ([]*domain.Volunteering, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.volunteers.ListByProject(ctx, projectID)
}
