package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"practicecraft/internal/adapters/email"
	accountStore "practicecraft/internal/adapters/storage/account"
	outboxStore "practicecraft/internal/adapters/storage/outbox"
	"practicecraft/internal/domain/account"
	"practicecraft/internal/domain/child"
	"practicecraft/internal/domain/engagement"
	"practicecraft/internal/domain/session"
)

// AccountStoreForSummary defines the account store interface needed by WeeklySummary.
type AccountStoreForSummary interface {
	List(ctx context.Context, filter accountStore.ListFilter) ([]account.Account, error)
}

// ChildStoreForSummary defines the child store interface needed by WeeklySummary.
type ChildStoreForSummary interface {
	ListByAccount(ctx context.Context, accountID string) ([]child.Child, error)
}

// EngagementStoreForSummary defines the engagement store interface needed by WeeklySummary.
type EngagementStoreForSummary interface {
	GetByChild(ctx context.Context, childID string) (engagement.Snapshot, error)
}

// SessionStoreForSummary defines the session store interface needed by WeeklySummary.
type SessionStoreForSummary interface {
	ListByChild(ctx context.Context, childID string) ([]session.Session, error)
}

// WeeklySummaryDeps holds dependencies for WeeklySummary.
type WeeklySummaryDeps struct {
	AccountStore    AccountStoreForSummary
	ChildStore      ChildStoreForSummary
	EngagementStore EngagementStoreForSummary
	SessionStore    SessionStoreForSummary
	Sender          email.Sender
	OutboxStore     outboxStore.Store
}

// ExecuteWeeklySummary emails each parent a summary of their children's week.
// Send failures are parked in the outbox for the background worker.
// PRE: Stores are wired; Sender may be a noop in dev
// POST: One email attempted per parent with at least one active child
func ExecuteWeeklySummary(ctx context.Context, deps WeeklySummaryDeps, now time.Time) error {
	parents, err := deps.AccountStore.List(ctx, accountStore.ListFilter{Role: account.RoleParent, Limit: 1000})
	if err != nil {
		return fmt.Errorf("list parent accounts: %w", err)
	}

	sent := 0
	for _, parent := range parents {
		children, err := deps.ChildStore.ListByAccount(ctx, parent.ID)
		if err != nil {
			slog.Warn("summary_event", "event", "children_load_failed", "account_id", parent.ID, "error", err.Error())
			continue
		}

		body := buildSummaryHTML(ctx, children, deps, now)
		if body == "" {
			continue // no active children, nothing to report
		}

		subject := "Your PracticeCraft week in review"
		_, err = deps.Sender.Send(ctx, email.SendRequest{
			To:      []string{parent.Email},
			Subject: subject,
			HTML:    body,
		})
		if err != nil {
			slog.Warn("summary_event", "event", "send_failed_parked", "account_id", parent.ID, "error", err.Error())
			if parkErr := ParkEmail(ctx, deps.OutboxStore, parent.Email, subject, body, err); parkErr != nil {
				slog.Error("summary_event", "event", "park_failed", "account_id", parent.ID, "error", parkErr.Error())
			}
			continue
		}
		sent++
	}

	slog.Info("summary_event", "event", "weekly_summary_done", "parents", len(parents), "sent", sent)
	return nil
}

// buildSummaryHTML composes the per-child sections. Empty when the parent
// has no active children.
func buildSummaryHTML(ctx context.Context, children []child.Child, deps WeeklySummaryDeps, now time.Time) string {
	var b strings.Builder
	for _, c := range children {
		if c.IsArchived() {
			continue
		}

		snap, err := deps.EngagementStore.GetByChild(ctx, c.ID)
		if err != nil {
			snap = engagement.Snapshot{ChildID: c.ID}
		}

		activeThisWeek := 0
		if sessions, err := deps.SessionStore.ListByChild(ctx, c.ID); err == nil {
			days := engagement.MarkWeek(engagement.CurrentWeekDays(now), engagement.ActiveDates(sessions), now.Format(engagement.DateLayout))
			for _, d := range days {
				if d.Active {
					activeThisWeek++
				}
			}
		}

		fmt.Fprintf(&b, "<h2>%s</h2>", c.Name)
		fmt.Fprintf(&b, "<p>Active on %d of 7 days this week.</p>", activeThisWeek)
		fmt.Fprintf(&b, "<ul><li>Current streak: %d days</li><li>Total stars: %d</li><li>Worksheets completed: %d</li></ul>",
			snap.CurrentStreak, snap.TotalStars, snap.TotalWorksheetsCompleted)
		if snap.IsCelebrating() {
			b.WriteString("<p>🎉 A full week of practice! Keep it going!</p>")
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "<h1>Your week in review</h1>" + b.String()
}
