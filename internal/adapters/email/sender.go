package email

import (
	"context"
	"errors"
	"time"
)

// SendRequest is a single outbound email. From and ReplyTo are optional;
// senders fall back to their configured defaults.
type SendRequest struct {
	To      []string
	From    string
	Subject string
	HTML    string
	ReplyTo string
}

// Validate checks the request has recipients and a subject.
func (r SendRequest) Validate() error {
	if len(r.To) == 0 {
		return errors.New("email has no recipients")
	}
	for _, to := range r.To {
		if to == "" {
			return errors.New("email recipient is empty")
		}
	}
	if r.Subject == "" {
		return errors.New("email has no subject")
	}
	return nil
}

// SendResult reports a provider-accepted send.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers a single email. Implementations: ResendSender for real
// delivery, NoopSender for dev and tests.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
