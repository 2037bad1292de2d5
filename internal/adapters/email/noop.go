package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// NoopSender logs sends without delivering anything. Used in dev when no
// Resend key is configured.
type NoopSender struct {
	count atomic.Int64
}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	if err := req.Validate(); err != nil {
		return SendResult{}, err
	}
	n := s.count.Add(1)
	slog.Info("email_event", "event", "sent", "provider", "noop", "to", req.To, "subject", req.Subject)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", n),
		SentAt:    time.Now(),
	}, nil
}

// SentCount reports how many sends have been accepted.
func (s *NoopSender) SentCount() int64 {
	return s.count.Load()
}
