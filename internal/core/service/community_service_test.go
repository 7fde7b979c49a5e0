package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubEventRepo struct {
	events   map[string]*domain.Event
	lastList struct {
		activeOnly bool
		from       time.Time
	}
}

func (r *stubEventRepo) Create(_ context.Context, e *domain.Event) (*domain.Event, error) {
	clone := *e
	clone.ID = fmt.Sprintf("ev-%d", len(r.events)+1)
	r.events[clone.ID] = &clone
	return &clone, nil
}

func (r *stubEventRepo) FindByID(_ context.Context, id string) (*domain.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *stubEventRepo) List(_ context.Context, activeOnly bool, from time.Time) ([]*domain.Event, error) {
	r.lastList.activeOnly = activeOnly
	r.lastList.from = from
	return nil, nil
}

func (r *stubEventRepo) Update(_ context.Context, e *domain.Event) error {
	clone := *e
	r.events[e.ID] = &clone
	return nil
}

func (r *stubEventRepo) Delete(context.Context, string) error { return nil }

type stubRegistrationRepo struct {
	created []*domain.Registration
}

func (r *stubRegistrationRepo) Create(_ context.Context, reg *domain.Registration) (*domain.Registration, error) {
	clone := *reg
	clone.ID = fmt.Sprintf("reg-%d", len(r.created)+1)
	r.created = append(r.created, &clone)
	return &clone, nil
}

func (r *stubRegistrationRepo) FindByID(_ context.Context, id string) (*domain.Registration, error) {
	for _, reg := range r.created {
		if reg.ID == id {
			return reg, nil
		}
	}
	return nil, domain.ErrRegistrationNotFound
}

func (r *stubRegistrationRepo) List(context.Context, string) ([]*domain.Registration, error) {
	return r.created, nil
}

func (r *stubRegistrationRepo) UpdateState(ctx context.Context, id string, state domain.RegistrationState) (*domain.Registration, error) {
	reg, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reg.State = state
	return reg, nil
}

type stubProjectRepo struct {
	projects map[string]*domain.Project
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	clone := *p
	clone.ID = fmt.Sprintf("prj-%d", len(r.projects)+1)
	r.projects[clone.ID] = &clone
	return &clone, nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProjectRepo) List(context.Context, domain.ProjectState) ([]*domain.Project, error) {
	return nil, nil
}

func (r *stubProjectRepo) Update(_ context.Context, p *domain.Project) error {
	clone := *p
	r.projects[p.ID] = &clone
	return nil
}

func (r *stubProjectRepo) Delete(context.Context, string) error { return nil }

type stubVolunteerRepo struct {
	enrolled map[string]bool
}

func (r *stubVolunteerRepo) Create(_ context.Context, v *domain.Volunteering) (*domain.Volunteering, error) {
	key := v.UserID + "/" + v.ProjectID
	if r.enrolled[key] {
		return nil, domain.ErrAlreadyEnrolled
	}
	r.enrolled[key] = true
	clone := *v
	clone.ID = key
	return &clone, nil
}

func (r *stubVolunteerRepo) ListByProject(context.Context, string) ([]*domain.Volunteering, error) {
	return nil, nil
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

func TestEventService_RegisterQueuesConfirmation(t *testing.T) {
	events := &stubEventRepo{events: map[string]*domain.Event{}}
	regs := &stubRegistrationRepo{}
	notifier := &recordingNotifier{}
	svc := NewEventService(events, regs, notifier, zerolog.Nop())
	ctx := context.Background()

	ev, err := svc.Create(ctx, domain.Event{Title: "Kermés", Date: time.Now().Add(48 * time.Hour), Active: true})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	reg, err := svc.Register(ctx, ev.ID, ports.RegisterForEventInput{FullName: "Juana Pérez", Email: "Juana@Example.com"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if reg.State != domain.RegistrationConfirmed || reg.Email != "juana@example.com" {
		t.Fatalf("unexpected registration: %+v", reg)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected a confirmation mail to be queued")
	}
}

func TestEventService_RegisterRejectsInactiveOrMissing(t *testing.T) {
	events := &stubEventRepo{events: map[string]*domain.Event{}}
	svc := NewEventService(events, &stubRegistrationRepo{}, &recordingNotifier{}, zerolog.Nop())
	ctx := context.Background()

	closed, _ := svc.Create(ctx, domain.Event{Title: "Pasado", Date: time.Now(), Active: false})
	in := ports.RegisterForEventInput{FullName: "A", Email: "a@example.com"}

	if _, err := svc.Register(ctx, closed.ID, in); !errors.Is(err, domain.ErrEventClosed) {
		t.Fatalf("expected ErrEventClosed, got %v", err)
	}
	if _, err := svc.Register(ctx, "ghost", in); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestEventService_ListFilters(t *testing.T) {
	events := &stubEventRepo{events: map[string]*domain.Event{}}
	svc := NewEventService(events, &stubRegistrationRepo{}, &recordingNotifier{}, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.List(ctx, domain.EventsUpcoming); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if !events.lastList.activeOnly || events.lastList.from.IsZero() {
		t.Fatalf("upcoming must ask for active events from now: %+v", events.lastList)
	}

	if _, err := svc.List(ctx, domain.EventsActive); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if !events.lastList.activeOnly || !events.lastList.from.IsZero() {
		t.Fatalf("active must not bound the date: %+v", events.lastList)
	}

	if _, err := svc.List(ctx, domain.EventFilter("pasados")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

func TestProjectService_Enroll(t *testing.T) {
	projects := &stubProjectRepo{projects: map[string]*domain.Project{}}
	svc := NewProjectService(projects, &stubVolunteerRepo{enrolled: map[string]bool{}}, zerolog.Nop())
	ctx := context.Background()

	p, err := svc.Create(ctx, domain.Project{Name: "Huerto escolar"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.State != domain.ProjectActive {
		t.Fatalf("expected default ACTIVO, got %s", p.State)
	}

	v, err := svc.Enroll(ctx, "user-1", p.ID, "")
	if err != nil {
		t.Fatalf("Enroll returned error: %v", err)
	}
	if v.Role != domain.DefaultVolunteerRole {
		t.Fatalf("expected default role, got %q", v.Role)
	}
	if _, err := svc.Enroll(ctx, "user-1", p.ID, "Cocina"); !errors.Is(err, domain.ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}

	finalized := domain.ProjectFinalized
	if _, err := svc.Update(ctx, p.ID, domain.ProjectPatch{State: &finalized}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if _, err := svc.Enroll(ctx, "user-2", p.ID, ""); !errors.Is(err, domain.ErrProjectClosed) {
		t.Fatalf("expected ErrProjectClosed, got %v", err)
	}
}

func TestProjectService_UpdateValidatesDates(t *testing.T) {
	projects := &stubProjectRepo{projects: map[string]*domain.Project{}}
	svc := NewProjectService(projects, &stubVolunteerRepo{enrolled: map[string]bool{}}, zerolog.Nop())
	ctx := context.Background()

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p, _ := svc.Create(ctx, domain.Project{Name: "Biblioteca", StartDate: &start})

	end := start.AddDate(0, 0, -1)
	if _, err := svc.Update(ctx, p.ID, domain.ProjectPatch{EndDate: &end}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
