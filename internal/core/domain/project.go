package domain

import "time"

type ProjectState string

const (
	ProjectActive    ProjectState = "ACTIVO"
	ProjectInactive  ProjectState = "INACTIVO"
	ProjectFinalized ProjectState = "FINALIZADO"
)

func (s ProjectState) Valid() bool {
	switch s {
	case ProjectActive, ProjectInactive, ProjectFinalized:
		return true
	}
	return false
}

// Project is a foundation initiative volunteers can join.
type Project struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	StartDate   *time.Time   `json:"start_date,omitempty"`
	EndDate     *time.Time   `json:"end_date,omitempty"`
	State       ProjectState `json:"state"`
}

// ProjectPatch carries the fields of a partial project update.
type ProjectPatch struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	State       *ProjectState
}

func (p ProjectPatch) Apply(pr *Project) {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.StartDate != nil {
		pr.StartDate = p.StartDate
	}
	if p.EndDate != nil {
		pr.EndDate = p.EndDate
	}
	if p.State != nil {
		pr.State = *p.State
	}
}

// DefaultVolunteerRole is assigned when an enrollment does not name a role.
const DefaultVolunteerRole = "Voluntario"

// Volunteering records a user's enrollment in a project.
type Volunteering struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ProjectID  string    `json:"project_id"`
	Role       string    `json:"role"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
