package port

import "context"

// Mailer delivers verification codes out of band. Delivery failure must be
// distinguishable from code-generation failure by the caller.
type Mailer interface {
	SendVerificationCode(ctx context.Context, recipient, code string) error
}
