package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

type ChildRepository struct {
	db *sql.DB
}

func NewChildRepository(db *sql.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

const childColumns = `id, name, birth_date, gender, description, photo_url, state, registered_at`

func scanChild(row rowScanner) (*domain.Child, error) {
	var (
		c     domain.Child
		state string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.BirthDate, &c.Gender, &c.Description, &c.PhotoURL,
		&state, &c.RegisteredAt); err != nil {
		return nil, err
	}
	c.State = domain.ChildState(state)
	c.BirthDate = c.BirthDate.UTC()
	c.RegisteredAt = c.RegisteredAt.UTC()
	return &c, nil
}

func (r *ChildRepository) Create(ctx context.Context, c *domain.Child) (*domain.Child, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *c
	created.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO children (`+childColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		created.ID, created.Name, created.BirthDate, created.Gender, created.Description,
		created.PhotoURL, string(created.State), created.RegisteredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	return &created, nil
}

func (r *ChildRepository) FindByID(ctx context.Context, id string) (*domain.Child, error) {
	cid, err := parseID(id, domain.ErrChildNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c, err := scanChild(r.db.QueryRowContext(ctx, `SELECT `+childColumns+` FROM children WHERE id = $1`, cid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrChildNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find child: %w", err)
	}
	return c, nil
}

func (r *ChildRepository) List(ctx context.Context, state domain.ChildState) ([]*domain.Child, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+childColumns+` FROM children
		WHERE ($1 = '' OR state = $1)
		ORDER BY name`, string(state))
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Child, 0)
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
