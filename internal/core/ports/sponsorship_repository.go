package ports

import (
	"context"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

// SponsorshipRepository holds the read side of sponsorships.
type SponsorshipRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Sponsorship, error)
	// ListBySponsor returns the sponsor's sponsorships, newest first.
	ListBySponsor(ctx context.Context, sponsorID string, activeOnly bool) ([]*domain.Sponsorship, error)
	ListAll(ctx context.Context) ([]*domain.Sponsorship, error)
	ExistsActive(ctx context.Context, sponsorID, childID string) (bool, error)
}

// SponsorshipStore is the view of the store available inside a transaction.
// Every method participates in the enclosing transaction.
type SponsorshipStore interface {
	FindUser(ctx context.Context, id string) (*domain.User, error)

	// LockChild loads the child and takes a write lock on it that is held
	// until the transaction ends. Concurrent lockers of the same child wait
	// or abort.
	LockChild(ctx context.Context, id string) (*domain.Child, error)
	// SetChildState moves the child from one state to another and returns
	// ErrChildUnavailable when the stored state is no longer from.
	SetChildState(ctx context.Context, id string, from, to domain.ChildState) error
	UpdateChild(ctx context.Context, child *domain.Child) error
	DeleteChild(ctx context.Context, id string) error

	HasActiveSponsorship(ctx context.Context, childID string) (bool, error)
	// InsertSponsorship persists s and assigns its ID.
	InsertSponsorship(ctx context.Context, s *domain.Sponsorship) error
	LockSponsorship(ctx context.Context, id string) (*domain.Sponsorship, error)
	UpdateSponsorship(ctx context.Context, s *domain.Sponsorship) error
}

// SponsorshipTx runs fn atomically: either every write made through store
// commits, or none does.
type SponsorshipTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store SponsorshipStore) error) error
}
