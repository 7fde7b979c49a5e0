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

type EventService struct {
	events        ports.EventRepository
	registrations ports.RegistrationRepository
	notifier      ports.Notifier
	log           zerolog.Logger
	now           func() time.Time
}

// NewEventService wires events, registrations and the notification queue.
func NewEventService(
	events ports.EventRepository,
	registrations ports.RegistrationRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) *EventService {
	return &EventService{
		events:        events,
		registrations: registrations,
		notifier:      notifier,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func validateEvent(e *domain.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return domain.Invalid("title is required")
	}
	if e.Date.IsZero() {
		return domain.Invalid("event date is required")
	}
	return nil
}

func (s *EventService) Create(ctx context.Context, e domain.Event) (*domain.Event, error) {
	if err := validateEvent(&e); err != nil {
		return nil, err
	}
	now := s.now()
	e.ID = ""
	e.CreatedAt = now
	e.UpdatedAt = now

	created, err := s.events.Create(ctx, &e)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	return s.events.FindByID(ctx, id)
}

// List returns all events, the active ones, or the active ones still ahead.
func (s *EventService) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	switch filter {
	case domain.EventsAll:
		return s.events.List(ctx, false, time.Time{})
	case domain.EventsActive:
		return s.events.List(ctx, true, time.Time{})
	case domain.EventsUpcoming:
		return s.events.List(ctx, true, s.now())
	default:
		return nil, domain.Invalid("unknown event filter %q", filter)
	}
}

// Update replaces the editable fields of an event.
func (s *EventService) Update(ctx context.Context, id string, e domain.Event) (*domain.Event, error) {
	if err := validateEvent(&e); err != nil {
		return nil, err
	}
	current, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.ID = current.ID
	e.CreatedAt = current.CreatedAt
	e.UpdatedAt = s.now()

	if err := s.events.Update(ctx, &e); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return &e, nil
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	return s.events.Delete(ctx, id)
}

func (s *EventService) Register(ctx context.Context, eventID string, in ports.RegisterForEventInput) (*domain.Registration, error) {
	name := strings.TrimSpace(in.FullName)
	email := normalizeEmail(in.Email)
	if name == "" {
		return nil, domain.Invalid("full name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.OpenForRegistration() {
		return nil, domain.ErrEventClosed
	}

	reg, err := s.registrations.Create(ctx, &domain.Registration{
		EventID:      event.ID,
		FullName:     name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		State:        domain.RegistrationConfirmed,
		RegisteredAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("register for event: %w", err)
	}

	s.notifier.Enqueue(ports.Mail{
		To:      reg.Email,
		Subject: "Inscripción confirmada: " + event.Title,
		Body: fmt.Sprintf("Hola %s,\n\nTu inscripción a \"%s\" el %s en %s está confirmada.\n",
			reg.FullName, event.Title, event.Date.Format("02/01/2006"), event.Place),
	})
	return reg, nil
}

func (s *EventService) ListRegistrations(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	if eventID != "" {
		if _, err := s.events.FindByID(ctx, eventID); err != nil {
			return nil, err
		}
	}
	return s.registrations.List(ctx, eventID)
}

func (s *EventService) UpdateRegistrationState(ctx context.Context, id string, state domain.RegistrationState) (*domain.Registration, error) {
	if !state.Valid() {
		return nil, domain.Invalid("unknown registration state %q", state)
	}
	return s.registrations.UpdateState(ctx, id, state)
}
