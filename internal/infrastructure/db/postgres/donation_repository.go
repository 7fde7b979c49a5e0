package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

type DonationRepository struct {
	db *sql.DB
}

func NewDonationRepository(db *sql.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

const donationColumns = `id, donor_id, type, amount, description, bank, email, tax_id, material_subtype, state, created_at`

func scanDonation(row rowScanner) (*domain.Donation, error) {
	var (
		d           domain.Donation
		donor, mail sql.NullString
		typ, state  string
	)
	if err := row.Scan(&d.ID, &donor, &typ, &d.Amount, &d.Description, &d.Bank, &mail,
		&d.TaxID, &d.MaterialSubtype, &state, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.DonorID = donor.String
	d.Email = mail.String
	d.Type = domain.DonationType(typ)
	d.State = domain.DonationState(state)
	d.CreatedAt = d.CreatedAt.UTC()
	return &d, nil
}

func (r *DonationRepository) Create(ctx context.Context, d *domain.Donation) (*domain.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *d
	created.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO donations (`+donationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		created.ID, nullString(created.DonorID), string(created.Type), created.Amount, created.Description,
		created.Bank, nullString(created.Email), created.TaxID, created.MaterialSubtype,
		string(created.State), created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert donation: %w", err)
	}
	return &created, nil
}

func (r *DonationRepository) FindByID(ctx context.Context, id string) (*domain.Donation, error) {
	did, err := parseID(id, domain.ErrDonationNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	d, err := scanDonation(r.db.QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = $1`, did))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDonationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find donation: %w", err)
	}
	return d, nil
}

func (r *DonationRepository) List(ctx context.Context, f domain.DonationFilter) ([]*domain.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+donationColumns+` FROM donations
		WHERE ($1 = '' OR state = $1) AND ($2 = '' OR email = $2)
		ORDER BY created_at DESC`,
		string(f.State), f.Email,
	)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Donation, 0)
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DonationRepository) UpdateState(ctx context.Context, id string, state domain.DonationState) (*domain.Donation, error) {
	did, err := parseID(id, domain.ErrDonationNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	d, err := scanDonation(r.db.QueryRowContext(ctx,
		`UPDATE donations SET state = $2 WHERE id = $1 RETURNING `+donationColumns, did, string(state)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDonationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update donation state: %w", err)
	}
	return d, nil
}

func (r *DonationRepository) Delete(ctx context.Context, id string) error {
	did, err := parseID(id, domain.ErrDonationNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM donations WHERE id = $1`, did)
	if err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	return affectedOne(res, domain.ErrDonationNotFound)
}

func (r *DonationRepository) DonorSummaries(ctx context.Context, f domain.ReportFilter) ([]domain.DonorSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, args := donorReportQuery(f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("donor report: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DonorSummary, 0)
	for rows.Next() {
		var s domain.DonorSummary
		if err := rows.Scan(&s.DonorID, &s.Email, &s.TotalAmount, &s.DonationCount, &s.LastDonationAt); err != nil {
			return nil, fmt.Errorf("scan donor summary: %w", err)
		}
		s.LastDonationAt = s.LastDonationAt.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// donorReportQuery builds the grouped report query. Only the filters that
// are set contribute a predicate and a positional argument.
func donorReportQuery(f domain.ReportFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(pred string, arg any) {
		args = append(args, arg)
		where = append(where, strings.ReplaceAll(pred, "?", "$"+strconv.Itoa(len(args))))
	}
	if !f.From.IsZero() {
		add("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		add("created_at <= ?", f.To)
	}
	if f.Type != "" {
		add("type = ?", string(f.Type))
	}
	if f.MaterialSubtype != "" {
		add("material_subtype = ?", f.MaterialSubtype)
	}

	var b strings.Builder
	b.WriteString(`SELECT COALESCE(donor_id::text, '` + domain.AnonymousDonorID + `') AS donor,
       COALESCE(email, '') AS donor_email,
       COALESCE(SUM(amount), 0) AS total,
       COUNT(*) AS donations,
       MAX(created_at) AS last_donation
FROM donations`)
	if len(where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString("\nGROUP BY donor, donor_email\nORDER BY total DESC, last_donation DESC, donor_email ASC")
	return b.String(), args
}
