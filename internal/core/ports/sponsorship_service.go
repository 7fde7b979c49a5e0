package ports

import (
	"context"
	"time"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

// CreateChildInput is the payload for registering a child.
type CreateChildInput struct {
	Name        string
	BirthDate   time.Time
	Gender      string
	Description string
	PhotoURL    string
}

// PublicChild is the reduced child profile shown without authentication.
type PublicChild struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Age         int               `json:"age"`
	Gender      string            `json:"gender"`
	Description string            `json:"description,omitempty"`
	PhotoURL    string            `json:"photo_url,omitempty"`
	State       domain.ChildState `json:"state"`
}

type ChildService interface {
	Create(ctx context.Context, in CreateChildInput) (*domain.Child, error)
	Get(ctx context.Context, id string) (*domain.Child, error)
	List(ctx context.Context, state domain.ChildState) ([]*domain.Child, error)
	Update(ctx context.Context, id string, patch domain.ChildPatch) (*domain.Child, error)
	// Delete refuses with ErrChildUnavailable while an active sponsorship
	// references the child.
	Delete(ctx context.Context, id string) error
	PublicProfile(ctx context.Context, id string) (*PublicChild, error)
}

// SponsorshipService owns the sponsorship lifecycle and keeps the child
// state consistent with it.
type SponsorshipService interface {
	Create(ctx context.Context, sponsorID, childID string) (*domain.Sponsorship, error)
	Finalize(ctx context.Context, id string) (*domain.Sponsorship, error)
	Get(ctx context.Context, id string) (*domain.Sponsorship, error)
	ListBySponsor(ctx context.Context, sponsorID string, activeOnly bool) ([]*domain.Sponsorship, error)
	ListAll(ctx context.Context) ([]*domain.Sponsorship, error)
	ExistsActive(ctx context.Context, sponsorID, childID string) (bool, error)
}
