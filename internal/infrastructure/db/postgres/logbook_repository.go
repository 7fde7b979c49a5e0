package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

type LogbookRepository struct {
	db *sql.DB
}

func NewLogbookRepository(db *sql.DB) *LogbookRepository {
	return &LogbookRepository{db: db}
}

const logEntryColumns = `id, child_id, date, description, photo_url, video_url, author_id`

func scanLogEntry(row rowScanner) (*domain.LogEntry, error) {
	var e domain.LogEntry
	if err := row.Scan(&e.ID, &e.ChildID, &e.Date, &e.Description, &e.PhotoURL, &e.VideoURL, &e.AuthorID); err != nil {
		return nil, err
	}
	e.Date = e.Date.UTC()
	return &e, nil
}

func (r *LogbookRepository) Create(ctx context.Context, e *domain.LogEntry) (*domain.LogEntry, error) {
	cid, err := parseID(e.ChildID, domain.ErrChildNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *e
	created.ID = uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO logbook_entries (`+logEntryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		created.ID, cid, created.Date, created.Description, created.PhotoURL, created.VideoURL, created.AuthorID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert logbook entry: %w", err)
	}
	return &created, nil
}

func (r *LogbookRepository) FindByID(ctx context.Context, id string) (*domain.LogEntry, error) {
	eid, err := parseID(id, domain.ErrLogEntryNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	e, err := scanLogEntry(r.db.QueryRowContext(ctx, `SELECT `+logEntryColumns+` FROM logbook_entries WHERE id = $1`, eid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLogEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find logbook entry: %w", err)
	}
	return e, nil
}

func (r *LogbookRepository) ListByChild(ctx context.Context, childID string) ([]*domain.LogEntry, error) {
	out := make([]*domain.LogEntry, 0)
	cid, err := uuid.Parse(childID)
	if err != nil {
		return out, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+logEntryColumns+` FROM logbook_entries
		WHERE child_id = $1
		ORDER BY date DESC, id DESC`, cid.String())
	if err != nil {
		return nil, fmt.Errorf("list logbook entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan logbook entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *LogbookRepository) Update(ctx context.Context, e *domain.LogEntry) error {
	eid, err := parseID(e.ID, domain.ErrLogEntryNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE logbook_entries
		SET date = $2, description = $3, photo_url = $4, video_url = $5
		WHERE id = $1`,
		eid, e.Date, e.Description, e.PhotoURL, e.VideoURL,
	)
	if err != nil {
		return fmt.Errorf("update logbook entry: %w", err)
	}
	return affectedOne(res, domain.ErrLogEntryNotFound)
}

func (r *LogbookRepository) Delete(ctx context.Context, id string) error {
	eid, err := parseID(id, domain.ErrLogEntryNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM logbook_entries WHERE id = $1`, eid)
	if err != nil {
		return fmt.Errorf("delete logbook entry: %w", err)
	}
	return affectedOne(res, domain.ErrLogEntryNotFound)
}
