package ports

import (
	"context"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

// LogbookService manages bitácora entries. Reads take the caller's session
// so sponsors are limited to the children they actively sponsor.
type LogbookService interface {
	Create(ctx context.Context, authorID string, e domain.LogEntry) (*domain.LogEntry, error)
	Update(ctx context.Context, id string, patch domain.LogEntryPatch) (*domain.LogEntry, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, caller Session, id string) (*domain.LogEntry, error)
	ListByChild(ctx context.Context, caller Session, childID string) ([]*domain.LogEntry, error)
}
