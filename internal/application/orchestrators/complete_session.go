package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"practicecraft/internal/domain/engagement"
	"practicecraft/internal/domain/session"
	"practicecraft/internal/domain/worksheet"

	"github.com/google/uuid"
)

// WorksheetStoreForComplete defines the worksheet store interface needed by CompleteSession.
type WorksheetStoreForComplete interface {
	GetByID(ctx context.Context, id string) (worksheet.Worksheet, error)
}

// SessionStoreForComplete defines the session store interface needed by CompleteSession.
type SessionStoreForComplete interface {
	Save(ctx context.Context, s session.Session) error
	ListByChild(ctx context.Context, childID string) ([]session.Session, error)
}

// EngagementStoreForComplete defines the engagement store interface needed by CompleteSession.
type EngagementStoreForComplete interface {
	Save(ctx context.Context, snap engagement.Snapshot) error
}

// CompleteSessionInput carries input for the orchestrator.
type CompleteSessionInput struct {
	WorksheetID  string
	CorrectCount int
	Now          time.Time // zero means time.Now()
}

// CompleteSessionDeps holds dependencies for CompleteSession.
type CompleteSessionDeps struct {
	WorksheetStore  WorksheetStoreForComplete
	SessionStore    SessionStoreForComplete
	EngagementStore EngagementStoreForComplete
}

// CompleteSessionResult carries the recorded session and refreshed snapshot.
type CompleteSessionResult struct {
	SessionID string
	Stars     int
	Snapshot  engagement.Snapshot
}

var ErrWorksheetNotReady = errors.New("worksheet is not ready to be completed")

// ExecuteCompleteSession records a worksheet completion and refreshes the
// child's engagement snapshot from the full session history.
// PRE: WorksheetID references a ready worksheet; 0 <= CorrectCount <= question count
// POST: Session persisted; snapshot recomputed and persisted
func ExecuteCompleteSession(ctx context.Context, input CompleteSessionInput, deps CompleteSessionDeps) (CompleteSessionResult, error) {
	w, err := deps.WorksheetStore.GetByID(ctx, input.WorksheetID)
	if err != nil {
		return CompleteSessionResult{}, fmt.Errorf("load worksheet: %w", err)
	}
	if !w.IsReady() {
		return CompleteSessionResult{}, ErrWorksheetNotReady
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	s := session.Session{
		ID:            uuid.New().String(),
		ChildID:       w.ChildID,
		WorksheetID:   w.ID,
		CorrectCount:  input.CorrectCount,
		QuestionCount: w.QuestionCount,
		CreatedAt:     now,
	}
	s.Stars = session.StarsForAccuracy(s.Accuracy())
	if err := s.Validate(); err != nil {
		return CompleteSessionResult{}, err
	}

	if err := deps.SessionStore.Save(ctx, s); err != nil {
		return CompleteSessionResult{}, fmt.Errorf("save session: %w", err)
	}

	history, err := deps.SessionStore.ListByChild(ctx, w.ChildID)
	if err != nil {
		return CompleteSessionResult{}, fmt.Errorf("load session history: %w", err)
	}

	snap := engagement.Snapshot{ChildID: w.ChildID}
	snap.Recompute(history, now)
	if err := deps.EngagementStore.Save(ctx, snap); err != nil {
		return CompleteSessionResult{}, fmt.Errorf("save engagement snapshot: %w", err)
	}

	slog.Info("session_event", "event", "session_recorded",
		"session_id", s.ID, "child_id", w.ChildID, "stars", s.Stars,
		"current_streak", snap.CurrentStreak)

	return CompleteSessionResult{SessionID: s.ID, Stars: s.Stars, Snapshot: snap}, nil
}
