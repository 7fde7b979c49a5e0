package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every entity-specific not-found error so callers
// can test for the kind with errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("not found")

var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrChildNotFound        = fmt.Errorf("child %w", ErrNotFound)
	ErrSponsorshipNotFound  = fmt.Errorf("sponsorship %w", ErrNotFound)
	ErrDonationNotFound     = fmt.Errorf("donation %w", ErrNotFound)
	ErrLogEntryNotFound     = fmt.Errorf("logbook entry %w", ErrNotFound)
	ErrEventNotFound        = fmt.Errorf("event %w", ErrNotFound)
	ErrRegistrationNotFound = fmt.Errorf("registration %w", ErrNotFound)
	ErrProjectNotFound      = fmt.Errorf("project %w", ErrNotFound)
)

var (
	ErrInvalidRole            = errors.New("user role does not allow this operation")
	ErrChildUnavailable       = errors.New("child is not available for sponsorship")
	ErrInvalidDonationPayload = errors.New("donation needs an amount (MONETARIA) or a material subtype (MATERIAL)")
	ErrInvalidTransition      = errors.New("invalid state transition")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserExists             = errors.New("user already exists")
	ErrForbidden              = errors.New("access forbidden")
	ErrInvalidResetCode       = errors.New("invalid or expired reset code")
	ErrAlreadyEnrolled        = errors.New("user already enrolled in project")
	ErrEventClosed            = errors.New("event is not accepting registrations")
	ErrProjectClosed          = errors.New("project is not accepting volunteers")
	ErrValidation             = errors.New("validation failed")
)

// Invalid wraps ErrValidation with a field-level reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
