package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

// DonationService implements the donation ledger and the donor report.
type DonationService struct {
	repo ports.DonationRepository
	log  zerolog.Logger
}

func NewDonationService(repo ports.DonationRepository, log zerolog.Logger) *DonationService {
	return &DonationService{repo: repo, log: log}
}

func (s *DonationService) Create(ctx context.Context, in ports.CreateDonationInput) (*domain.Donation, error) {
	if in.Amount < 0 {
		return nil, domain.Invalid("amount must not be negative")
	}
	typ, err := domain.InferDonationType(in.Type, in.Amount, in.MaterialSubtype)
	if err != nil {
		return nil, err
	}
	// An explicit type is kept as sent, but money needs an amount.
	if typ == domain.DonationMonetary && in.Amount <= 0 {
		return nil, domain.ErrInvalidDonationPayload
	}
	email := normalizeEmail(in.Email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
	}

	created, err := s.repo.Create(ctx, &domain.Donation{
		DonorID:         in.DonorID,
		Type:            typ,
		Amount:          in.Amount,
		Description:     strings.TrimSpace(in.Description),
		Bank:            strings.TrimSpace(in.Bank),
		Email:           email,
		TaxID:           strings.TrimSpace(in.TaxID),
		MaterialSubtype: strings.TrimSpace(in.MaterialSubtype),
		State:           domain.DonationPending,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}

	s.log.Info().
		Str("donation_id", created.ID).
		Str("type", string(typ)).
		Float64("amount", created.Amount).
		Msg("donation recorded")
	return created, nil
}

func (s *DonationService) Get(ctx context.Context, id string) (*domain.Donation, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *DonationService) List(ctx context.Context, filter domain.DonationFilter) ([]*domain.Donation, error) {
	if filter.State != "" && !filter.State.Valid() {
		return nil, domain.Invalid("unknown donation state %q", filter.State)
	}
	filter.Email = normalizeEmail(filter.Email)
	return s.repo.List(ctx, filter)
}

// UpdateState sets any of the three donation states; there is no enforced order.
func (s *DonationService) UpdateState(ctx context.Context, id string, state domain.DonationState) (*domain.Donation, error) {
	if !state.Valid() {
		return nil, domain.Invalid("unknown donation state %q", state)
	}
	return s.repo.UpdateState(ctx, id, state)
}

func (s *DonationService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *DonationService) Report(ctx context.Context, filter domain.ReportFilter) ([]domain.DonorSummary, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.Invalid("unknown donation type %q", filter.Type)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, domain.Invalid("'to' must not be before 'from'")
	}
	filter.MaterialSubtype = strings.TrimSpace(filter.MaterialSubtype)

	rows, err := s.repo.DonorSummaries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("donor report: %w", err)
	}
	return rows, nil
}
