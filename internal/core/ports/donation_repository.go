package ports

import (
	"context"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

// DonationRepository defines persistence operations for the donation ledger.
type DonationRepository interface {
	Create(ctx context.Context, d *domain.Donation) (*domain.Donation, error)
	FindByID(ctx context.Context, id string) (*domain.Donation, error)
	// List returns donations newest first, narrowed by filter.
	List(ctx context.Context, filter domain.DonationFilter) ([]*domain.Donation, error)
	UpdateState(ctx context.Context, id string, state domain.DonationState) (*domain.Donation, error)
	Delete(ctx context.Context, id string) error

	// DonorSummaries groups the donations matching filter by (donor, email)
	// and returns them sorted by total amount descending, then by last
	// donation descending, then by email.
	DonorSummaries(ctx context.Context, filter domain.ReportFilter) ([]domain.DonorSummary, error)
}
