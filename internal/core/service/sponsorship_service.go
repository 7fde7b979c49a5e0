package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

// SponsorshipService implements the sponsorship lifecycle. Create and
// Finalize write the sponsorship and the child state in one transaction,
// with the child locked first so concurrent requests for the same child
// serialize.
type SponsorshipService struct {
	repo     ports.SponsorshipRepository
	tx       ports.SponsorshipTx
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewSponsorshipService(
	repo ports.SponsorshipRepository,
	tx ports.SponsorshipTx,
	notifier ports.Notifier,
	log zerolog.Logger,
) *SponsorshipService {
	return &SponsorshipService{
		repo:     repo,
		tx:       tx,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *SponsorshipService) Create(ctx context.Context, sponsorID, childID string) (*domain.Sponsorship, error) {
	var (
		created *domain.Sponsorship
		sponsor *domain.User
		child   *domain.Child
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.SponsorshipStore) error {
		var err error
		if sponsor, err = store.FindUser(ctx, sponsorID); err != nil {
			return err
		}
		if sponsor.Role != domain.RoleSponsor {
			return domain.ErrInvalidRole
		}

		if child, err = store.LockChild(ctx, childID); err != nil {
			return err
		}
		if child.State != domain.ChildAvailable {
			return domain.ErrChildUnavailable
		}
		active, err := store.HasActiveSponsorship(ctx, childID)
		if err != nil {
			return err
		}
		if active {
			return domain.ErrChildUnavailable
		}

		sp := &domain.Sponsorship{
			SponsorID: sponsorID,
			ChildID:   childID,
			StartDate: s.now(),
			State:     domain.SponsorshipActive,
		}
		if err := store.InsertSponsorship(ctx, sp); err != nil {
			return err
		}
		if err := store.SetChildState(ctx, childID, domain.ChildAvailable, domain.ChildSponsored); err != nil {
			return err
		}
		created = sp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create sponsorship: %w", err)
	}

	s.log.Info().
		Str("sponsorship_id", created.ID).
		Str("sponsor_id", sponsorID).
		Str("child_id", childID).
		Msg("sponsorship created")

	s.notifier.Enqueue(ports.Mail{
		To:      sponsor.Email,
		Subject: "¡Gracias por apadrinar!",
		Body: fmt.Sprintf("Hola %s,\n\nTu apadrinamiento de %s quedó registrado el %s.\n",
			sponsor.Name, child.Name, created.StartDate.Format("02/01/2006")),
	})
	return created, nil
}

func (s *SponsorshipService) Finalize(ctx context.Context, id string) (*domain.Sponsorship, error) {
	var (
		finalized *domain.Sponsorship
		sponsor   *domain.User
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.SponsorshipStore) error {
		sp, err := store.LockSponsorship(ctx, id)
		if err != nil {
			return err
		}
		if err := sp.Finalize(s.now()); err != nil {
			return fmt.Errorf("%w: sponsorship is %s", err, sp.State)
		}
		if _, err := store.LockChild(ctx, sp.ChildID); err != nil {
			return err
		}
		if err := store.UpdateSponsorship(ctx, sp); err != nil {
			return err
		}
		if err := store.SetChildState(ctx, sp.ChildID, domain.ChildSponsored, domain.ChildAvailable); err != nil {
			return err
		}
		// The sponsor may have been removed since; the notice is best effort.
		if sponsor, err = store.FindUser(ctx, sp.SponsorID); err != nil {
			sponsor = nil
		}
		finalized = sp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("finalize sponsorship: %w", err)
	}

	s.log.Info().
		Str("sponsorship_id", id).
		Str("child_id", finalized.ChildID).
		Msg("sponsorship finalized")

	if sponsor != nil {
		s.notifier.Enqueue(ports.Mail{
			To:      sponsor.Email,
			Subject: "Apadrinamiento finalizado",
			Body: fmt.Sprintf("Hola %s,\n\nTu apadrinamiento finalizó el %s. Gracias por tu apoyo.\n",
				sponsor.Name, finalized.EndDate.Format("02/01/2006")),
		})
	}
	return finalized, nil
}

func (s *SponsorshipService) Get(ctx context.Context, id string) (*domain.Sponsorship, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *SponsorshipService) ListBySponsor(ctx context.Context, sponsorID string, activeOnly bool) ([]*domain.Sponsorship, error) {
	return s.repo.ListBySponsor(ctx, sponsorID, activeOnly)
}

func (s *SponsorshipService) ListAll(ctx context.Context) ([]*domain.Sponsorship, error) {
	return s.repo.ListAll(ctx)
}

func (s *SponsorshipService) ExistsActive(ctx context.Context, sponsorID, childID string) (bool, error) {
	return s.repo.ExistsActive(ctx, sponsorID, childID)
}
