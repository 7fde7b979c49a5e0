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

// ChildService manages the child registry. Edits that may touch the child
// state run inside a SponsorshipTx so they serialize with sponsorship writes.
type ChildService struct {
	children ports.ChildRepository
	tx       ports.SponsorshipTx
	log      zerolog.Logger
	now      func() time.Time
}

func NewChildService(children ports.ChildRepository, tx ports.SponsorshipTx, log zerolog.Logger) *ChildService {
	return &ChildService{
		children: children,
		tx:       tx,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ChildService) Create(ctx context.Context, in ports.CreateChildInput) (*domain.Child, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	now := s.now()
	if in.BirthDate.IsZero() || in.BirthDate.After(now) {
		return nil, domain.Invalid("birth date must be in the past")
	}

	created, err := s.children.Create(ctx, &domain.Child{
		Name:         name,
		BirthDate:    in.BirthDate,
		Gender:       strings.TrimSpace(in.Gender),
		Description:  in.Description,
		PhotoURL:     in.PhotoURL,
		State:        domain.ChildAvailable,
		RegisteredAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("create child: %w", err)
	}
	return created, nil
}

func (s *ChildService) Get(ctx context.Context, id string) (*domain.Child, error) {
	return s.children.FindByID(ctx, id)
}

func (s *ChildService) List(ctx context.Context, state domain.ChildState) ([]*domain.Child, error) {
	if state != "" && !state.Valid() {
		return nil, domain.Invalid("unknown child state %q", state)
	}
	return s.children.List(ctx, state)
}

// Update applies an administrative edit. Apadrinado can be neither set nor
// cleared here; only the sponsorship flow moves a child in or out of it.
func (s *ChildService) Update(ctx context.Context, id string, patch domain.ChildPatch) (*domain.Child, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domain.Invalid("name must not be empty")
	}
	if patch.BirthDate != nil && patch.BirthDate.After(s.now()) {
		return nil, domain.Invalid("birth date must be in the past")
	}
	if patch.State != nil && !patch.State.Valid() {
		return nil, domain.Invalid("unknown child state %q", *patch.State)
	}

	var updated *domain.Child
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.SponsorshipStore) error {
		child, err := store.LockChild(ctx, id)
		if err != nil {
			return err
		}
		if patch.State != nil && !child.State.AdminCanSet(*patch.State) {
			return fmt.Errorf("%w: child state %s cannot be changed to %s by an edit",
				domain.ErrInvalidTransition, child.State, *patch.State)
		}
		patch.Apply(child)
		if err := store.UpdateChild(ctx, child); err != nil {
			return err
		}
		updated = child
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	return updated, nil
}

// Delete removes a child record unless an active sponsorship references it.
func (s *ChildService) Delete(ctx context.Context, id string) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.SponsorshipStore) error {
		if _, err := store.LockChild(ctx, id); err != nil {
			return err
		}
		active, err := store.HasActiveSponsorship(ctx, id)
		if err != nil {
			return err
		}
		if active {
			return domain.ErrChildUnavailable
		}
		return store.DeleteChild(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	s.log.Info().Str("child_id", id).Msg("child deleted")
	return nil
}

// PublicProfile returns the reduced view shown on the public site.
func (s *ChildService) PublicProfile(ctx context.Context, id string) (*ports.PublicChild, error) {
	child, err := s.children.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ports.PublicChild{
		ID:          child.ID,
		Name:        child.Name,
		Age:         child.AgeAt(s.now()),
		Gender:      child.Gender,
		Description: child.Description,
		PhotoURL:    child.PhotoURL,
		State:       child.State,
	}, nil
}
