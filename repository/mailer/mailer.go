package mailer

import "context"

type Mail struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers mail fire-and-forget: callers log failures and move on,
// a bounced mail never fails the business operation that triggered it.
type Sender interface {
	Send(ctx context.Context, m Mail) error
}
