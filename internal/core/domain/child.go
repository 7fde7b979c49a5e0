package domain

import "time"

// ChildState is the sponsorship availability of a child.
type ChildState string

const (
	ChildAvailable ChildState = "Disponible"
	ChildSponsored ChildState = "Apadrinado"
	ChildInactive  ChildState = "Inactivo"
)

func (s ChildState) Valid() bool {
	switch s {
	case ChildAvailable, ChildSponsored, ChildInactive:
		return true
	}
	return false
}

// Sponsorship flow transitions. Inactivo is reachable only through
// AdminCanSet, never through the sponsorship flow.
var childFlowTransitions = map[ChildState]ChildState{
	ChildAvailable: ChildSponsored,
	ChildSponsored: ChildAvailable,
}

// CanTransitionTo reports whether the sponsorship flow may move a child from s to next.
func (s ChildState) CanTransitionTo(next ChildState) bool {
	to, ok := childFlowTransitions[s]
	return ok && to == next
}

// AdminCanSet reports whether a direct administrative edit may move a child
// from s to next. Apadrinado is owned by the sponsorship flow: it can be
// neither entered nor left by an edit.
func (s ChildState) AdminCanSet(next ChildState) bool {
	if s == next {
		return true
	}
	if s == ChildSponsored || next == ChildSponsored {
		return false
	}
	return next.Valid()
}

// Child is a child registered with the foundation.
type Child struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	BirthDate    time.Time  `json:"birth_date"`
	Gender       string     `json:"gender"`
	Description  string     `json:"description,omitempty"`
	PhotoURL     string     `json:"photo_url,omitempty"`
	State        ChildState `json:"state"`
	RegisteredAt time.Time  `json:"registered_at"`
}

// AgeAt returns the child's age in whole years at the given instant.
func (c *Child) AgeAt(now time.Time) int {
	if c.BirthDate.IsZero() {
		return 0
	}
	years := now.Year() - c.BirthDate.Year()
	if now.Month() < c.BirthDate.Month() ||
		(now.Month() == c.BirthDate.Month() && now.Day() < c.BirthDate.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// ChildPatch carries the fields of a partial child update. Nil means unchanged.
type ChildPatch struct {
	Name        *string
	BirthDate   *time.Time
	Gender      *string
	Description *string
	PhotoURL    *string
	State       *ChildState
}

// Apply copies the set fields of p onto c.
func (p ChildPatch) Apply(c *Child) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.BirthDate != nil {
		c.BirthDate = *p.BirthDate
	}
	if p.Gender != nil {
		c.Gender = *p.Gender
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.PhotoURL != nil {
		c.PhotoURL = *p.PhotoURL
	}
	if p.State != nil {
		c.State = *p.State
	}
}
