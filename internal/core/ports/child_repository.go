package ports

import (
	"context"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

// ChildRepository covers child reads and creation. Writes that touch the
// child state go through SponsorshipTx so they serialize with sponsorships.
type ChildRepository interface {
	Create(ctx context.Context, child *domain.Child) (*domain.Child, error)
	FindByID(ctx context.Context, id string) (*domain.Child, error)
	// List returns every child, or only those in state when it is non-empty.
	List(ctx context.Context, state domain.ChildState) ([]*domain.Child, error)
}
