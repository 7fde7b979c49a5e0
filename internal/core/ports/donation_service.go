package ports

import (
	"context"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

// CreateDonationInput is the donation payload. Type may be empty, in which
// case it is inferred from Amount and MaterialSubtype.
type CreateDonationInput struct {
	DonorID         string
	Type            domain.DonationType
	Amount          float64
	Description     string
	Bank            string
	Email           string
	TaxID           string
	MaterialSubtype string
}

type DonationService interface {
	Create(ctx context.Context, in CreateDonationInput) (*domain.Donation, error)
	Get(ctx context.Context, id string) (*domain.Donation, error)
	List(ctx context.Context, filter domain.DonationFilter) ([]*domain.Donation, error)
	UpdateState(ctx context.Context, id string, state domain.DonationState) (*domain.Donation, error)
	Delete(ctx context.Context, id string) error
	// Report builds the donor report. It never writes.
	Report(ctx context.Context, filter domain.ReportFilter) ([]domain.DonorSummary, error)
}
