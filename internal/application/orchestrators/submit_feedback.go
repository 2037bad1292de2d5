package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"practicecraft/internal/domain/feedback"

	"github.com/google/uuid"
)

// FeedbackStoreForSubmit defines the store interface needed by SubmitFeedback.
type FeedbackStoreForSubmit interface {
	Save(ctx context.Context, f feedback.Feedback) error
}

// SubmitFeedbackInput carries input for the orchestrator.
type SubmitFeedbackInput struct {
	AccountID string // empty for anonymous submissions
	Category  string
	Message   string
}

// SubmitFeedbackDeps holds dependencies for SubmitFeedback.
type SubmitFeedbackDeps struct {
	FeedbackStore FeedbackStoreForSubmit
}

// ExecuteSubmitFeedback records a problem report or suggestion.
// PRE: Category and message provided
// POST: Feedback persisted with status new
func ExecuteSubmitFeedback(ctx context.Context, input SubmitFeedbackInput, deps SubmitFeedbackDeps) (string, error) {
	f := feedback.Feedback{
		ID:        uuid.New().String(),
		AccountID: input.AccountID,
		Category:  input.Category,
		Message:   input.Message,
		Status:    feedback.StatusNew,
		CreatedAt: time.Now(),
	}
	if err := f.Validate(); err != nil {
		return "", err
	}

	if err := deps.FeedbackStore.Save(ctx, f); err != nil {
		return "", err
	}

	slog.Info("feedback_event", "event", "feedback_submitted", "feedback_id", f.ID, "category", f.Category)
	return f.ID, nil
}
