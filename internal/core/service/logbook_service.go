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

// LogbookService manages the bitácora of each child.
type LogbookService struct {
	entries      ports.LogbookRepository
	children     ports.ChildRepository
	sponsorships ports.SponsorshipRepository
	log          zerolog.Logger
}

func NewLogbookService(
	entries ports.LogbookRepository,
	children ports.ChildRepository,
	sponsorships ports.SponsorshipRepository,
	log zerolog.Logger,
) *LogbookService {
	return &LogbookService{entries: entries, children: children, sponsorships: sponsorships, log: log}
}

func (s *LogbookService) Create(ctx context.Context, authorID string, e domain.LogEntry) (*domain.LogEntry, error) {
	if strings.TrimSpace(e.Description) == "" {
		return nil, domain.Invalid("description is required")
	}
	if _, err := s.children.FindByID(ctx, e.ChildID); err != nil {
		return nil, err
	}
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}
	e.AuthorID = authorID

	created, err := s.entries.Create(ctx, &e)
	if err != nil {
		return nil, fmt.Errorf("create logbook entry: %w", err)
	}
	return created, nil
}

func (s *LogbookService) Update(ctx context.Context, id string, patch domain.LogEntryPatch) (*domain.LogEntry, error) {
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return nil, domain.Invalid("description must not be empty")
	}
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(entry)
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("update logbook entry: %w", err)
	}
	return entry, nil
}

func (s *LogbookService) Delete(ctx context.Context, id string) error {
	return s.entries.Delete(ctx, id)
}

func (s *LogbookService) Get(ctx context.Context, caller ports.Session, id string) (*domain.LogEntry, error) {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReader(ctx, caller, entry.ChildID); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *LogbookService) ListByChild(ctx context.Context, caller ports.Session, childID string) ([]*domain.LogEntry, error) {
	if err := s.checkReader(ctx, caller, childID); err != nil {
		return nil, err
	}
	if _, err := s.children.FindByID(ctx, childID); err != nil {
		return nil, err
	}
	return s.entries.ListByChild(ctx, childID)
}

// checkReader limits sponsors to the children they currently sponsor.
func (s *LogbookService) checkReader(ctx context.Context, caller ports.Session, childID string) error {
	if caller.Role != domain.RoleSponsor {
		return nil
	}
	ok, err := s.sponsorships.ExistsActive(ctx, caller.UserID, childID)
	if err != nil {
		return fmt.Errorf("logbook access: %w", err)
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}
