// Package email sends the service's transactional mail: confirmation
// links, password resets, and user feedback. Implementations live behind
// the Mailer interface so handlers can be tested without a provider.
package email

import "context"

// Mailer sends the transactional emails the service needs.
type Mailer interface {
	// SendConfirmation emails the verification link to a new user.
	SendConfirmation(ctx context.Context, recipient, verificationLink string) error
	// SendPasswordReset emails a time-limited reset link.
	SendPasswordReset(ctx context.Context, recipient, resetLink string) error
	// SendFeedback forwards a user's rating and feedback text to the
	// configured recipient.
	SendFeedback(ctx context.Context, userEmail string, rating int, feedback string) error
}

// NoOp is a Mailer that discards everything. It keeps local development
// working without provider credentials.
type NoOp struct{}

// SendConfirmation does nothing.
func (NoOp) SendConfirmation(context.Context, string, string) error { return nil }

// SendPasswordReset does nothing.
func (NoOp) SendPasswordReset(context.Context, string, string) error { return nil }

// SendFeedback does nothing.
func (NoOp) SendFeedback(context.Context, string, int, string) error { return nil }
