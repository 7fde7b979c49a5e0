package ports

import (
	"context"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

type LogbookRepository interface {
	Create(ctx context.Context, e *domain.LogEntry) (*domain.LogEntry, error)
	FindByID(ctx context.Context, id string) (*domain.LogEntry, error)
	// ListByChild returns the child's entries, newest first.
	ListByChild(ctx context.Context, childID string) ([]*domain.LogEntry, error)
	Update(ctx context.Context, e *domain.LogEntry) error
	Delete(ctx context.Context, id string) error
}
