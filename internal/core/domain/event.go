package domain

import "time"

// Event is a foundation activity published on the public site.
type Event struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Schedule            string    `json:"schedule,omitempty"`
	Place               string    `json:"place,omitempty"`
	ImageURL            string    `json:"image_url,omitempty"`
	DetailedDescription string    `json:"detailed_description,omitempty"`
	Date                time.Time `json:"date"`
	Active              bool      `json:"active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// OpenForRegistration reports whether the public may still sign up.
func (e *Event) OpenForRegistration() bool {
	return e.Active
}

// EventFilter selects the event listing variant.
type EventFilter string

const (
	EventsAll      EventFilter = ""
	EventsActive   EventFilter = "activos"
	EventsUpcoming EventFilter = "proximos"
)

// RegistrationState is the state of an event registration.
type RegistrationState string

const (
	RegistrationConfirmed RegistrationState = "CONFIRMADO"
	RegistrationCancelled RegistrationState = "CANCELADO"
)

func (s RegistrationState) Valid() bool {
	return s == RegistrationConfirmed || s == RegistrationCancelled
}

// Registration is a person signed up for an event.
type Registration struct {
	ID           string            `json:"id"`
	EventID      string            `json:"event_id"`
	FullName     string            `json:"full_name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone,omitempty"`
	State        RegistrationState `json:"state"`
	RegisteredAt time.Time         `json:"registered_at"`
}
