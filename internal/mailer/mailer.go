package mailer

import "context"

// Mailer sends a single HTML email. Implementations are injected into the
// jobs and dispatcher so tests can record sends without a mail server.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
