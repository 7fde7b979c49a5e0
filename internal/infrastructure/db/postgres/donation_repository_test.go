package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

func TestDonorReportQuery(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name      string
		filter    domain.ReportFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:     "no filters",
			filter:   domain.ReportFilter{},
			wantArgs: nil,
		},
		{
			name:      "type only",
			filter:    domain.ReportFilter{Type: domain.DonationMonetary},
			wantWhere: "WHERE type = $1",
			wantArgs:  []any{"MONETARIA"},
		},
		{
			name: "all filters numbered in order",
			filter: domain.ReportFilter{
				From:            from,
				To:              to,
				Type:            domain.DonationMaterial,
				MaterialSubtype: "Alimentos",
			},
			wantWhere: "WHERE created_at >= $1 AND created_at <= $2 AND type = $3 AND material_subtype = $4",
			wantArgs:  []any{from, to, "MATERIAL", "Alimentos"},
		},
		{
			name:      "upper bound and subtype",
			filter:    domain.ReportFilter{To: to, MaterialSubtype: "Ropa"},
			wantWhere: "WHERE created_at <= $1 AND material_subtype = $2",
			wantArgs:  []any{to, "Ropa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := donorReportQuery(tt.filter)

			assert.Equal(t, tt.wantArgs, args)
			if tt.wantWhere == "" {
				assert.NotContains(t, query, "WHERE")
			} else {
				assert.Contains(t, query, tt.wantWhere)
			}
			assert.Contains(t, query, "COALESCE(donor_id::text, '0')")
			assert.Contains(t, query, "GROUP BY donor, donor_email")
			assert.Contains(t, query, "ORDER BY total DESC, last_donation DESC, donor_email ASC")
		})
	}
}

func TestDonationRepository_DonorSummaries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	last := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"donor", "donor_email", "total", "donations", "last_donation"}).
		AddRow("9b2c5d0e-2f0a-4c39-9d1e-0d4f3b7b7a11", "ana@example.org", 350.0, int64(3), last).
		AddRow("0", "", 100.0, int64(1), last.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("FROM donations WHERE type = $1")).
		WithArgs("MONETARIA").
		WillReturnRows(rows)

	got, err := NewDonationRepository(db).DonorSummaries(context.Background(), domain.ReportFilter{Type: domain.DonationMonetary})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "ana@example.org", got[0].Email)
	assert.Equal(t, 350.0, got[0].TotalAmount)
	assert.Equal(t, int64(3), got[0].DonationCount)
	assert.Equal(t, last, got[0].LastDonationAt)
	assert.Equal(t, domain.AnonymousDonorID, got[1].DonorID)
	assert.Equal(t, "", got[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
