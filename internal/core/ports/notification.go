package ports

import (
	"context"
	"time"
)

// Mail is a plain-text e-mail.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a message synchronously.
type Mailer interface {
	Send(ctx context.Context, msg Mail) error
}

// Notifier queues a message for background delivery. Enqueue never blocks
// the caller on delivery and reports only whether the message was accepted.
type Notifier interface {
	Enqueue(msg Mail) bool
}

// ResetCodeStore keeps password recovery codes with an expiry, together
// with a count of wrong guesses that lives exactly as long as the code.
type ResetCodeStore interface {
	// Save replaces any pending code for email and clears its failure count.
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Get returns ErrInvalidResetCode when no live code exists for email.
	Get(ctx context.Context, email string) (string, error)
	// RecordFailure counts a wrong guess and returns the total so far. It
	// returns 0 when no live code exists.
	RecordFailure(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
}

// TokenRevoker tracks session tokens invalidated before their expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
