package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"practicecraft/internal/adapters/email"
	outboxStore "practicecraft/internal/adapters/storage/outbox"
	domain "practicecraft/internal/domain/outbox"

	"github.com/google/uuid"
)

// OutboxProcessor retries failed external actions (email sends).
type OutboxProcessor struct {
	store     outboxStore.Store
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload.
	// Returns the provider-side ID and any error.
	Execute(ctx context.Context, payload string) (string, error)
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store outboxStore.Store, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 10,
	}
}

// ProcessPending processes pending outbox entries with retries.
// PRE: Context is valid
// POST: Pending entries are processed, failed entries marked for retry
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("list pending outbox entries: %w", err)
	}

	for _, entry := range entries {
		if err := p.processEntry(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
	}

	return nil
}

// processEntry processes a single outbox entry.
func (p *OutboxProcessor) processEntry(ctx context.Context, entry domain.Entry) error {
	// Respect the backoff window between attempts
	if !entry.LastAttemptedAt.IsZero() {
		delay := entry.NextRetryDelay(p.baseDelay, p.maxDelay)
		if time.Since(entry.LastAttemptedAt) < delay {
			return nil
		}
	}

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		return p.store.Save(ctx, entry)
	}

	entry.MarkAttempt()
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}

	return p.store.Save(ctx, entry)
}

// ProcessSingle manually processes a single outbox entry (for admin retry).
// PRE: entryID is non-empty
// POST: Entry is processed, status updated
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}

	if entry.IsTerminal() {
		return fmt.Errorf("entry %s is in terminal state and cannot be retried", entryID)
	}

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		return fmt.Errorf("no executor registered for action type: %s", entry.ActionType)
	}

	entry.MarkAttempt()
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
	} else {
		entry.MarkSuccess(externalID)
	}

	return p.store.Save(ctx, entry)
}

// EmailPayload is the JSON structure for parked email sends.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// EmailExecutor replays parked email sends through the configured sender.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute sends an email from the payload.
// PRE: payload is valid JSON matching EmailPayload
// POST: Email sent via configured sender, returns message ID
// INVARIANT: Outbox entry status managed by caller
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p EmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}

	result, err := e.Sender.Send(ctx, email.SendRequest{
		To:      []string{p.To},
		Subject: p.Subject,
		HTML:    p.HTML,
	})
	if err != nil {
		return "", err
	}
	return result.MessageID, nil
}

// ParkEmail records a failed email send for later retry.
// PRE: to and subject are non-empty
// POST: Outbox entry persisted with status pending
func ParkEmail(ctx context.Context, store outboxStore.Store, to, subject, html string, cause error) error {
	payload, err := json.Marshal(EmailPayload{To: to, Subject: subject, HTML: html})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	entry := domain.Entry{
		ID:           uuid.New().String(),
		ActionType:   domain.ActionTypeEmail,
		Payload:      string(payload),
		Status:       domain.StatusPending,
		MaxAttempts:  5,
		CreatedAt:    time.Now(),
		ErrorMessage: cause.Error(),
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	return store.Save(ctx, entry)
}

// StartBackgroundWorker starts a goroutine that periodically processes pending entries.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed
func StartBackgroundWorker(processor *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if err := processor.ProcessPending(ctx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
}
