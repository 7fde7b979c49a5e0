package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

const sponsorshipColumns = `id, sponsor_id, child_id, start_date, end_date, state`

func scanSponsorship(row rowScanner) (*domain.Sponsorship, error) {
	var (
		sp    domain.Sponsorship
		end   sql.NullTime
		state string
	)
	if err := row.Scan(&sp.ID, &sp.SponsorID, &sp.ChildID, &sp.StartDate, &end, &state); err != nil {
		return nil, err
	}
	sp.StartDate = sp.StartDate.UTC()
	sp.EndDate = timeFromNull(end)
	sp.State = domain.SponsorshipState(state)
	return &sp, nil
}

// SponsorshipRepository serves sponsorship reads outside transactions.
type SponsorshipRepository struct {
	db *sql.DB
}

func NewSponsorshipRepository(db *sql.DB) *SponsorshipRepository {
	return &SponsorshipRepository{db: db}
}

func (r *SponsorshipRepository) FindByID(ctx context.Context, id string) (*domain.Sponsorship, error) {
	sid, err := parseID(id, domain.ErrSponsorshipNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sp, err := scanSponsorship(r.db.QueryRowContext(ctx,
		`SELECT `+sponsorshipColumns+` FROM sponsorships WHERE id = $1`, sid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSponsorshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find sponsorship: %w", err)
	}
	return sp, nil
}

func (r *SponsorshipRepository) ListBySponsor(ctx context.Context, sponsorID string, activeOnly bool) ([]*domain.Sponsorship, error) {
	sid, err := uuid.Parse(sponsorID)
	if err != nil {
		return []*domain.Sponsorship{}, nil
	}
	query := `SELECT ` + sponsorshipColumns + ` FROM sponsorships WHERE sponsor_id = $1`
	args := []any{sid.String()}
	if activeOnly {
		query += ` AND state = $2`
		args = append(args, string(domain.SponsorshipActive))
	}
	return r.list(ctx, query+` ORDER BY start_date DESC, id DESC`, args...)
}

func (r *SponsorshipRepository) ListAll(ctx context.Context) ([]*domain.Sponsorship, error) {
	return r.list(ctx, `SELECT `+sponsorshipColumns+` FROM sponsorships ORDER BY start_date DESC, id DESC`)
}

func (r *SponsorshipRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Sponsorship, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sponsorships: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Sponsorship, 0)
	for rows.Next() {
		sp, err := scanSponsorship(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sponsorship: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (r *SponsorshipRepository) ExistsActive(ctx context.Context, sponsorID, childID string) (bool, error) {
	sid, err1 := uuid.Parse(sponsorID)
	cid, err2 := uuid.Parse(childID)
	if err1 != nil || err2 != nil {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM sponsorships
			WHERE sponsor_id = $1 AND child_id = $2 AND state = $3
		)`, sid.String(), cid.String(), string(domain.SponsorshipActive),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists active sponsorship: %w", err)
	}
	return exists, nil
}

// SponsorshipTx runs sponsorship units of work in a database transaction.
// LockChild and LockSponsorship take row locks with SELECT ... FOR UPDATE, so
// concurrent units of work touching the same child run one after the other.
type SponsorshipTx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSponsorshipTx(db *sql.DB) *SponsorshipTx {
	return &SponsorshipTx{db: db, timeout: txTimeout}
}

func (t *SponsorshipTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.SponsorshipStore) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &txStore{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// txStore implements ports.SponsorshipStore on an open transaction.
type txStore struct {
	tx *sql.Tx
}

func (s *txStore) FindUser(ctx context.Context, id string) (*domain.User, error) {
	uid, err := parseID(id, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return findUser(ctx, s.tx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uid)
}

func (s *txStore) LockChild(ctx context.Context, id string) (*domain.Child, error) {
	cid, err := parseID(id, domain.ErrChildNotFound)
	if err != nil {
		return nil, err
	}
	c, err := scanChild(s.tx.QueryRowContext(ctx,
		`SELECT `+childColumns+` FROM children WHERE id = $1 FOR UPDATE`, cid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrChildNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock child: %w", err)
	}
	return c, nil
}

func (s *txStore) SetChildState(ctx context.Context, id string, from, to domain.ChildState) error {
	cid, err := parseID(id, domain.ErrChildNotFound)
	if err != nil {
		return err
	}
	res, err := s.tx.ExecContext(ctx,
		`UPDATE children SET state = $3 WHERE id = $1 AND state = $2`,
		cid, string(from), string(to),
	)
	if err != nil {
		return fmt.Errorf("set child state: %w", err)
	}
	return affectedOne(res, domain.ErrChildUnavailable)
}

func (s *txStore) UpdateChild(ctx context.Context, c *domain.Child) error {
	cid, err := parseID(c.ID, domain.ErrChildNotFound)
	if err != nil {
		return err
	}
	res, err := s.tx.ExecContext(ctx, `
		UPDATE children
		SET name = $2, birth_date = $3, gender = $4, description = $5, photo_url = $6, state = $7
		WHERE id = $1`,
		cid, c.Name, c.BirthDate, c.Gender, c.Description, c.PhotoURL, string(c.State),
	)
	if err != nil {
		return fmt.Errorf("update child: %w", err)
	}
	return affectedOne(res, domain.ErrChildNotFound)
}

func (s *txStore) DeleteChild(ctx context.Context, id string) error {
	cid, err := parseID(id, domain.ErrChildNotFound)
	if err != nil {
		return err
	}
	res, err := s.tx.ExecContext(ctx, `DELETE FROM children WHERE id = $1`, cid)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	return affectedOne(res, domain.ErrChildNotFound)
}

func (s *txStore) HasActiveSponsorship(ctx context.Context, childID string) (bool, error) {
	cid, err := parseID(childID, domain.ErrChildNotFound)
	if err != nil {
		return false, err
	}
	var exists bool
	err = s.tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sponsorships WHERE child_id = $1 AND state = $2)`,
		cid, string(domain.SponsorshipActive),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has active sponsorship: %w", err)
	}
	return exists, nil
}

func (s *txStore) InsertSponsorship(ctx context.Context, sp *domain.Sponsorship) error {
	id := uuid.NewString()
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO sponsorships (`+sponsorshipColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, sp.SponsorID, sp.ChildID, sp.StartDate, nullTime(sp.EndDate), string(sp.State),
	)
	if isUniqueViolation(err, constraintOneActive) {
		return domain.ErrChildUnavailable
	}
	if err != nil {
		return fmt.Errorf("insert sponsorship: %w", err)
	}
	sp.ID = id
	return nil
}

func (s *txStore) LockSponsorship(ctx context.Context, id string) (*domain.Sponsorship, error) {
	sid, err := parseID(id, domain.ErrSponsorshipNotFound)
	if err != nil {
		return nil, err
	}
	sp, err := scanSponsorship(s.tx.QueryRowContext(ctx,
		`SELECT `+sponsorshipColumns+` FROM sponsorships WHERE id = $1 FOR UPDATE`, sid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSponsorshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock sponsorship: %w", err)
	}
	return sp, nil
}

func (s *txStore) UpdateSponsorship(ctx context.Context, sp *domain.Sponsorship) error {
	sid, err := parseID(sp.ID, domain.ErrSponsorshipNotFound)
	if err != nil {
		return err
	}
	res, err := s.tx.ExecContext(ctx,
		`UPDATE sponsorships SET state = $2, end_date = $3 WHERE id = $1`,
		sid, string(sp.State), nullTime(sp.EndDate),
	)
	if err != nil {
		return fmt.Errorf("update sponsorship: %w", err)
	}
	return affectedOne(res, domain.ErrSponsorshipNotFound)
}
