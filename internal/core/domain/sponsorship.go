package domain

import "time"

// SponsorshipState is the lifecycle state of a sponsorship.
type SponsorshipState string

const (
	SponsorshipActive    SponsorshipState = "ACTIVO"
	SponsorshipPending   SponsorshipState = "PENDIENTE"
	SponsorshipFinalized SponsorshipState = "FINALIZADO"
)

var sponsorshipTransitions = map[SponsorshipState][]SponsorshipState{
	SponsorshipPending: {SponsorshipActive, SponsorshipFinalized},
	SponsorshipActive:  {SponsorshipFinalized},
}

// CanTransitionTo reports whether a sponsorship may move from s to next.
func (s SponsorshipState) CanTransitionTo(next SponsorshipState) bool {
	for _, allowed := range sponsorshipTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Sponsorship links a padrino to a child. Records are never deleted; they end
// in FINALIZADO.
type Sponsorship struct {
	ID        string           `json:"id"`
	SponsorID string           `json:"sponsor_id"`
	ChildID   string           `json:"child_id"`
	StartDate time.Time        `json:"start_date"`
	EndDate   *time.Time       `json:"end_date,omitempty"`
	State     SponsorshipState `json:"state"`
}

// Finalize closes the sponsorship at the given instant.
func (s *Sponsorship) Finalize(at time.Time) error {
	if !s.State.CanTransitionTo(SponsorshipFinalized) {
		return ErrInvalidTransition
	}
	end := at
	s.EndDate = &end
	s.State = SponsorshipFinalized
	return nil
}
