package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

func newChildSvc(store *memStore) *ChildService {
	svc := NewChildService(memChildren{store}, store, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestChildService_Create(t *testing.T) {
	svc := newChildSvc(newMemStore())

	c, err := svc.Create(context.Background(), ports.CreateChildInput{
		Name:      " Mateo ",
		BirthDate: time.Date(2016, time.January, 5, 0, 0, 0, 0, time.UTC),
		Gender:    "M",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if c.State != domain.ChildAvailable || c.Name != "Mateo" || c.RegisteredAt.IsZero() {
		t.Fatalf("unexpected child: %+v", c)
	}

	_, err = svc.Create(context.Background(), ports.CreateChildInput{Name: "Futuro", BirthDate: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for future birth date, got %v", err)
	}
}

func TestChildService_Update_StateRules(t *testing.T) {
	store := newMemStore()
	svc := newChildSvc(store)
	free := store.addChild(domain.ChildAvailable)
	taken := store.addChild(domain.ChildSponsored)

	inactive := domain.ChildInactive
	if _, err := svc.Update(context.Background(), free.ID, domain.ChildPatch{State: &inactive}); err != nil {
		t.Fatalf("Disponible -> Inactivo should be allowed: %v", err)
	}
	if got := store.child(free.ID).State; got != domain.ChildInactive {
		t.Fatalf("expected Inactivo, got %s", got)
	}

	sponsored := domain.ChildSponsored
	if _, err := svc.Update(context.Background(), free.ID, domain.ChildPatch{State: &sponsored}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition setting Apadrinado, got %v", err)
	}

	available := domain.ChildAvailable
	if _, err := svc.Update(context.Background(), taken.ID, domain.ChildPatch{State: &available}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition leaving Apadrinado, got %v", err)
	}

	name := "Nuevo nombre"
	updated, err := svc.Update(context.Background(), taken.ID, domain.ChildPatch{Name: &name})
	if err != nil {
		t.Fatalf("editing other fields of a sponsored child should work: %v", err)
	}
	if updated.Name != name || updated.State != domain.ChildSponsored {
		t.Fatalf("unexpected child after update: %+v", updated)
	}
}

func TestChildService_Delete(t *testing.T) {
	store := newMemStore()
	svc := newChildSvc(store)
	sponsors := newSponsorshipSvc(store, &recordingNotifier{})
	sponsor := store.addUser(domain.RoleSponsor)
	child := store.addChild(domain.ChildAvailable)

	if _, err := sponsors.Create(context.Background(), sponsor.ID, child.ID); err != nil {
		t.Fatalf("create sponsorship failed: %v", err)
	}
	if err := svc.Delete(context.Background(), child.ID); !errors.Is(err, domain.ErrChildUnavailable) {
		t.Fatalf("expected ErrChildUnavailable while sponsored, got %v", err)
	}

	other := store.addChild(domain.ChildInactive)
	if err := svc.Delete(context.Background(), other.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(context.Background(), other.ID); !errors.Is(err, domain.ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound after delete, got %v", err)
	}
}

func TestChildService_PublicProfile(t *testing.T) {
	store := newMemStore()
	svc := newChildSvc(store)
	created, _ := svc.Create(context.Background(), ports.CreateChildInput{
		Name:      "Lucía",
		BirthDate: time.Date(2014, time.July, 1, 0, 0, 0, 0, time.UTC),
	})

	p, err := svc.PublicProfile(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("PublicProfile returned error: %v", err)
	}
	if p.Age != 9 {
		t.Fatalf("expected age 9, got %d", p.Age)
	}
}

func TestChildService_List_RejectsUnknownState(t *testing.T) {
	svc := newChildSvc(newMemStore())
	if _, err := svc.List(context.Background(), domain.ChildState("Perdido")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
