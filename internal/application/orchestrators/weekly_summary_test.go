package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	accountStore "practicecraft/internal/adapters/storage/account"
	"practicecraft/internal/domain/account"
	"practicecraft/internal/domain/child"
	"practicecraft/internal/domain/engagement"
	"practicecraft/internal/domain/session"
)

type summaryAccountStore struct {
	parents []account.Account
}

func (m *summaryAccountStore) List(_ context.Context, filter accountStore.ListFilter) ([]account.Account, error) {
	var out []account.Account
	for _, a := range m.parents {
		if filter.Role == "" || a.Role == filter.Role {
			out = append(out, a)
		}
	}
	return out, nil
}

type summaryChildStore struct {
	children map[string][]child.Child // keyed by account ID
}

func (m *summaryChildStore) ListByAccount(_ context.Context, accountID string) ([]child.Child, error) {
	return m.children[accountID], nil
}

type summaryEngagementStore struct {
	snapshots map[string]engagement.Snapshot
}

func (m *summaryEngagementStore) GetByChild(_ context.Context, childID string) (engagement.Snapshot, error) {
	snap, ok := m.snapshots[childID]
	if !ok {
		return engagement.Snapshot{}, errors.New("not found")
	}
	return snap, nil
}

type summarySessionStore struct {
	sessions map[string][]session.Session
}

func (m *summarySessionStore) ListByChild(_ context.Context, childID string) ([]session.Session, error) {
	return m.sessions[childID], nil
}

func summaryDeps(sender *flakySender) (WeeklySummaryDeps, *mockOutboxStore) {
	outbox := newMockOutboxStore()
	deps := WeeklySummaryDeps{
		AccountStore: &summaryAccountStore{parents: []account.Account{
			{ID: "p1", Email: "parent@example.com", Role: account.RoleParent},
		}},
		ChildStore: &summaryChildStore{children: map[string][]child.Child{
			"p1": {
				{ID: "c1", AccountID: "p1", Name: "Mia", Grade: 3, Status: child.StatusActive},
				{ID: "c2", AccountID: "p1", Name: "Old", Grade: 5, Status: child.StatusArchived},
			},
		}},
		EngagementStore: &summaryEngagementStore{snapshots: map[string]engagement.Snapshot{
			"c1": {ChildID: "c1", TotalStars: 9, CurrentStreak: 3, TotalWorksheetsCompleted: 4},
		}},
		SessionStore: &summarySessionStore{sessions: map[string][]session.Session{
			"c1": {
				{ID: "s1", ChildID: "c1", WorksheetID: "w1", CorrectCount: 9, QuestionCount: 10, Stars: 3, CreatedAt: time.Now()},
			},
		}},
		Sender:      sender,
		OutboxStore: outbox,
	}
	return deps, outbox
}

func TestExecuteWeeklySummary_SendsPerParent(t *testing.T) {
	sender := &flakySender{}
	deps, _ := summaryDeps(sender)

	if err := ExecuteWeeklySummary(context.Background(), deps, time.Now()); err != nil {
		t.Fatalf("ExecuteWeeklySummary failed: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To[0] != "parent@example.com" {
		t.Errorf("to = %q, want parent@example.com", msg.To[0])
	}
	if !strings.Contains(msg.HTML, "Mia") {
		t.Error("summary body missing the active child")
	}
	if strings.Contains(msg.HTML, "Old") {
		t.Error("summary body includes an archived child")
	}
	if !strings.Contains(msg.HTML, "Active on 1 of 7 days") {
		t.Errorf("summary body missing week activity count: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "Current streak: 3") {
		t.Error("summary body missing streak")
	}
}

func TestExecuteWeeklySummary_SkipsParentWithNoActiveChildren(t *testing.T) {
	sender := &flakySender{}
	deps, _ := summaryDeps(sender)
	deps.ChildStore = &summaryChildStore{children: map[string][]child.Child{
		"p1": {{ID: "c2", AccountID: "p1", Name: "Old", Grade: 5, Status: child.StatusArchived}},
	}}

	if err := ExecuteWeeklySummary(context.Background(), deps, time.Now()); err != nil {
		t.Fatalf("ExecuteWeeklySummary failed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no email, got %d", len(sender.sent))
	}
}

func TestExecuteWeeklySummary_SendFailureParksInOutbox(t *testing.T) {
	sender := &flakySender{failures: 100}
	deps, outbox := summaryDeps(sender)

	if err := ExecuteWeeklySummary(context.Background(), deps, time.Now()); err != nil {
		t.Fatalf("ExecuteWeeklySummary failed: %v", err)
	}

	if len(sender.sent) != 0 {
		t.Errorf("expected no delivered email, got %d", len(sender.sent))
	}
	if len(outbox.entries) != 1 {
		t.Fatalf("expected 1 parked entry, got %d", len(outbox.entries))
	}
}
