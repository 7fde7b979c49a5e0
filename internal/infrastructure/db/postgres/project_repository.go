package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, name, description, start_date, end_date, state`

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p          domain.Project
		start, end sql.NullTime
		state      string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &start, &end, &state); err != nil {
		return nil, err
	}
	p.StartDate = timeFromNull(start)
	p.EndDate = timeFromNull(end)
	p.State = domain.ProjectState(state)
	return &p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *p
	created.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		created.ID, created.Name, created.Description, nullTime(created.StartDate), nullTime(created.EndDate),
		string(created.State),
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return &created, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	pid, err := parseID(id, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	p, err := scanProject(r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, pid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) List(ctx context.Context, state domain.ProjectState) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE ($1 = '' OR state = $1)
		ORDER BY name`, string(state))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	pid, err := parseID(p.ID, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET name = $2, description = $3, start_date = $4, end_date = $5, state = $6
		WHERE id = $1`,
		pid, p.Name, p.Description, nullTime(p.StartDate), nullTime(p.EndDate), string(p.State),
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return affectedOne(res, domain.ErrProjectNotFound)
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	pid, err := parseID(id, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, pid)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return affectedOne(res, domain.ErrProjectNotFound)
}

type VolunteeringRepository struct {
	db *sql.DB
}

func NewVolunteeringRepository(db *sql.DB) *VolunteeringRepository {
	return &VolunteeringRepository{db: db}
}

func (r *VolunteeringRepository) Create(ctx context.Context, v *domain.Volunteering) (*domain.Volunteering, error) {
	pid, err := parseID(v.ProjectID, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	uid, err := parseID(v.UserID, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *v
	created.ID = uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO volunteers (id, user_id, project_id, role, enrolled_at)
		VALUES ($1, $2, $3, $4, $5)`,
		created.ID, uid, pid, created.Role, created.EnrolledAt,
	)
	if isUniqueViolation(err, "") {
		return nil, domain.ErrAlreadyEnrolled
	}
	if err != nil {
		return nil, fmt.Errorf("insert volunteering: %w", err)
	}
	return &created, nil
}

func (r *VolunteeringRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Volunteering, error) {
	out := make([]*domain.Volunteering, 0)
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return out, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, project_id, role, enrolled_at FROM volunteers
		WHERE project_id = $1
		ORDER BY enrolled_at`, pid.String())
	if err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Volunteering
		if err := rows.Scan(&v.ID, &v.UserID, &v.ProjectID, &v.Role, &v.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan volunteering: %w", err)
		}
		v.EnrolledAt = v.EnrolledAt.UTC()
		out = append(out, &v)
	}
	return out, rows.Err()
}
