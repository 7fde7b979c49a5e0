package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, description, schedule, place, image_url, detailed_description, date, active, created_at, updated_at`

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Schedule, &e.Place, &e.ImageURL,
		&e.DetailedDescription, &e.Date, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Date = e.Date.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *e
	created.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		created.ID, created.Title, created.Description, created.Schedule, created.Place, created.ImageURL,
		created.DetailedDescription, created.Date, created.Active, created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &created, nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	eid, err := parseID(id, domain.ErrEventNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, eid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) List(ctx context.Context, activeOnly bool, from time.Time) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE (NOT $1 OR active) AND ($2::timestamptz IS NULL OR date >= $2)
		ORDER BY date ASC`,
		activeOnly, nullTime(&from),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventRepository) Update(ctx context.Context, e *domain.Event) error {
	eid, err := parseID(e.ID, domain.ErrEventNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET title = $2, description = $3, schedule = $4, place = $5, image_url = $6,
		    detailed_description = $7, date = $8, active = $9, updated_at = $10
		WHERE id = $1`,
		eid, e.Title, e.Description, e.Schedule, e.Place, e.ImageURL,
		e.DetailedDescription, e.Date, e.Active, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return affectedOne(res, domain.ErrEventNotFound)
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	eid, err := parseID(id, domain.ErrEventNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, eid)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return affectedOne(res, domain.ErrEventNotFound)
}

type RegistrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, event_id, full_name, email, phone, state, registered_at`

func scanRegistration(row rowScanner) (*domain.Registration, error) {
	var (
		reg   domain.Registration
		state string
	)
	if err := row.Scan(&reg.ID, &reg.EventID, &reg.FullName, &reg.Email, &reg.Phone, &state, &reg.RegisteredAt); err != nil {
		return nil, err
	}
	reg.State = domain.RegistrationState(state)
	reg.RegisteredAt = reg.RegisteredAt.UTC()
	return &reg, nil
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *domain.Registration) (*domain.Registration, error) {
	eid, err := parseID(reg.EventID, domain.ErrEventNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *reg
	created.ID = uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO event_registrations (`+registrationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		created.ID, eid, created.FullName, created.Email, created.Phone, string(created.State), created.RegisteredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	return &created, nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*domain.Registration, error) {
	rid, err := parseID(id, domain.ErrRegistrationNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	reg, err := scanRegistration(r.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations WHERE id = $1`, rid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) List(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations`
	var args []any
	if eventID != "" {
		eid, err := uuid.Parse(eventID)
		if err != nil {
			return []*domain.Registration{}, nil
		}
		query += ` WHERE event_id = $1`
		args = append(args, eid.String())
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query+` ORDER BY registered_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (r *RegistrationRepository) UpdateState(ctx context.Context, id string, state domain.RegistrationState) (*domain.Registration, error) {
	rid, err := parseID(id, domain.ErrRegistrationNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	reg, err := scanRegistration(r.db.QueryRowContext(ctx,
		`UPDATE event_registrations SET state = $2 WHERE id = $1 RETURNING `+registrationColumns, rid, string(state)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update registration state: %w", err)
	}
	return reg, nil
}
