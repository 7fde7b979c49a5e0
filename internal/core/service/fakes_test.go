package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// memStore: in-memory users, children and sponsorships. RunInTx holds a
// single lock for the whole callback and restores a snapshot on error, which
// is enough to observe atomicity and serialization from the service side.
// ---------------------------------------------------------------------------

type memStore struct {
	mu           sync.Mutex
	seq          int
	users        map[string]*domain.User
	children     map[string]*domain.Child
	sponsorships map[string]*domain.Sponsorship

	failSetChildState error
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[string]*domain.User),
		children:     make(map[string]*domain.Child),
		sponsorships: make(map[string]*domain.Sponsorship),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) addUser(role domain.Role) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID("user")
	u := &domain.User{ID: id, Name: id, Email: id + "@example.com", Role: role, Status: domain.UserActive}
	s.users[id] = u
	return cloneUser(u)
}

func (s *memStore) addChild(state domain.ChildState) *domain.Child {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID("child")
	c := &domain.Child{ID: id, Name: id, State: state}
	s.children[id] = c
	clone := *c
	return &clone
}

func (s *memStore) child(id string) domain.Child {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.children[id]
}

func (s *memStore) activeFor(childID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sp := range s.sponsorships {
		if sp.ChildID == childID && sp.State == domain.SponsorshipActive {
			n++
		}
	}
	return n
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func cloneSponsorship(sp *domain.Sponsorship) *domain.Sponsorship {
	clone := *sp
	if sp.EndDate != nil {
		end := *sp.EndDate
		clone.EndDate = &end
	}
	return &clone
}

func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.SponsorshipStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	children := make(map[string]*domain.Child, len(s.children))
	for id, c := range s.children {
		clone := *c
		children[id] = &clone
	}
	sponsorships := make(map[string]*domain.Sponsorship, len(s.sponsorships))
	for id, sp := range s.sponsorships {
		sponsorships[id] = cloneSponsorship(sp)
	}
	seq := s.seq

	if err := fn(ctx, memTx{s}); err != nil {
		s.children = children
		s.sponsorships = sponsorships
		s.seq = seq
		return err
	}
	return nil
}

// memTx runs with memStore.mu held.
type memTx struct{ s *memStore }

func (t memTx) FindUser(_ context.Context, id string) (*domain.User, error) {
	u, ok := t.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (t memTx) LockChild(_ context.Context, id string) (*domain.Child, error) {
	c, ok := t.s.children[id]
	if !ok {
		return nil, domain.ErrChildNotFound
	}
	clone := *c
	return &clone, nil
}

func (t memTx) SetChildState(_ context.Context, id string, from, to domain.ChildState) error {
	if t.s.failSetChildState != nil {
		return t.s.failSetChildState
	}
	c, ok := t.s.children[id]
	if !ok {
		return domain.ErrChildNotFound
	}
	if c.State != from {
		return domain.ErrChildUnavailable
	}
	c.State = to
	return nil
}

func (t memTx) UpdateChild(_ context.Context, child *domain.Child) error {
	if _, ok := t.s.children[child.ID]; !ok {
		return domain.ErrChildNotFound
	}
	clone := *child
	t.s.children[child.ID] = &clone
	return nil
}

func (t memTx) DeleteChild(_ context.Context, id string) error {
	if _, ok := t.s.children[id]; !ok {
		return domain.ErrChildNotFound
	}
	delete(t.s.children, id)
	return nil
}

func (t memTx) HasActiveSponsorship(_ context.Context, childID string) (bool, error) {
	for _, sp := range t.s.sponsorships {
		if sp.ChildID == childID && sp.State == domain.SponsorshipActive {
			return true, nil
		}
	}
	return false, nil
}

func (t memTx) InsertSponsorship(_ context.Context, sp *domain.Sponsorship) error {
	sp.ID = t.s.nextID("sp")
	t.s.sponsorships[sp.ID] = cloneSponsorship(sp)
	return nil
}

func (t memTx) LockSponsorship(_ context.Context, id string) (*domain.Sponsorship, error) {
	sp, ok := t.s.sponsorships[id]
	if !ok {
		return nil, domain.ErrSponsorshipNotFound
	}
	return cloneSponsorship(sp), nil
}

func (t memTx) UpdateSponsorship(_ context.Context, sp *domain.Sponsorship) error {
	if _, ok := t.s.sponsorships[sp.ID]; !ok {
		return domain.ErrSponsorshipNotFound
	}
	t.s.sponsorships[sp.ID] = cloneSponsorship(sp)
	return nil
}

// ports.SponsorshipRepository

func (s *memStore) FindByID(_ context.Context, id string) (*domain.Sponsorship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.sponsorships[id]
	if !ok {
		return nil, domain.ErrSponsorshipNotFound
	}
	return cloneSponsorship(sp), nil
}

func (s *memStore) ListBySponsor(_ context.Context, sponsorID string, activeOnly bool) ([]*domain.Sponsorship, error) {
	return s.filterSponsorships(func(sp *domain.Sponsorship) bool {
		return sp.SponsorID == sponsorID && (!activeOnly || sp.State == domain.SponsorshipActive)
	}), nil
}

func (s *memStore) ListAll(_ context.Context) ([]*domain.Sponsorship, error) {
	return s.filterSponsorships(func(*domain.Sponsorship) bool { return true }), nil
}

func (s *memStore) ExistsActive(_ context.Context, sponsorID, childID string) (bool, error) {
	return len(s.filterSponsorships(func(sp *domain.Sponsorship) bool {
		return sp.SponsorID == sponsorID && sp.ChildID == childID && sp.State == domain.SponsorshipActive
	})) > 0, nil
}

func (s *memStore) filterSponsorships(keep func(*domain.Sponsorship) bool) []*domain.Sponsorship {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Sponsorship
	for _, sp := range s.sponsorships {
		if keep(sp) {
			out = append(out, cloneSponsorship(sp))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out
}

// memChildren adapts memStore to ports.ChildRepository.
type memChildren struct{ s *memStore }

func (r memChildren) Create(_ context.Context, c *domain.Child) (*domain.Child, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *c
	clone.ID = r.s.nextID("child")
	r.s.children[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r memChildren) FindByID(_ context.Context, id string) (*domain.Child, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.children[id]
	if !ok {
		return nil, domain.ErrChildNotFound
	}
	clone := *c
	return &clone, nil
}

func (r memChildren) List(_ context.Context, state domain.ChildState) ([]*domain.Child, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Child
	for _, c := range r.s.children {
		if state == "" || c.State == state {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------------------------------------------------------------------------
// stubUserRepo
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

// ---------------------------------------------------------------------------
// recordingNotifier / recordingMailer
// ---------------------------------------------------------------------------

type recordingNotifier struct {
	mu    sync.Mutex
	mails []ports.Mail
}

func (n *recordingNotifier) Enqueue(m ports.Mail) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mails = append(n.mails, m)
	return true
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.mails)
}

type recordingMailer struct {
	sent []ports.Mail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, mail ports.Mail) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}
