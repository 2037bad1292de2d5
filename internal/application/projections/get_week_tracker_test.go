package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"practicecraft/internal/domain/session"
)

type stubSessionStore struct {
	sessions []session.Session
	err      error
}

func (s *stubSessionStore) ListByChild(_ context.Context, childID string) ([]session.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []session.Session
	for _, sess := range s.sessions {
		if sess.ChildID == childID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func sessionOn(childID string, date time.Time) session.Session {
	return session.Session{
		ID: "s-" + date.Format("2006-01-02"), ChildID: childID, WorksheetID: "w1",
		CorrectCount: 8, QuestionCount: 10, Stars: 2, CreatedAt: date,
	}
}

func TestQueryGetWeekTracker_MarksCurrentWeekOnly(t *testing.T) {
	// Wednesday 2026-03-11; week runs Mon 2026-03-09 .. Sun 2026-03-15
	now := time.Date(2026, 3, 11, 14, 0, 0, 0, time.Local)
	store := &stubSessionStore{sessions: []session.Session{
		sessionOn("c1", time.Date(2026, 3, 9, 9, 0, 0, 0, time.Local)),  // Monday, in week
		sessionOn("c1", time.Date(2026, 3, 11, 9, 0, 0, 0, time.Local)), // today
		sessionOn("c1", time.Date(2026, 3, 8, 9, 0, 0, 0, time.Local)),  // previous Sunday, outside
		sessionOn("c2", time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)), // other child
	}}

	result := QueryGetWeekTracker(context.Background(), GetWeekTrackerQuery{ChildID: "c1", Now: now},
		GetWeekTrackerDeps{SessionStore: store})

	if len(result.Days) != 7 {
		t.Fatalf("got %d days, want 7", len(result.Days))
	}
	if result.Days[0].Date != "2026-03-09" || result.Days[6].Date != "2026-03-15" {
		t.Errorf("week = %s..%s, want 2026-03-09..2026-03-15", result.Days[0].Date, result.Days[6].Date)
	}

	wantActive := map[string]bool{"2026-03-09": true, "2026-03-11": true}
	for _, d := range result.Days {
		if d.Active != wantActive[d.Date] {
			t.Errorf("day %s active = %v, want %v", d.Date, d.Active, wantActive[d.Date])
		}
	}
	if !result.Days[2].IsToday {
		t.Error("Wednesday should be marked today")
	}
	for _, d := range result.Days[3:] {
		if !d.IsFuture {
			t.Errorf("day %s should be marked future", d.Date)
		}
	}
}

func TestQueryGetWeekTracker_StoreErrorDegradesToEmptyWeek(t *testing.T) {
	now := time.Date(2026, 3, 11, 14, 0, 0, 0, time.Local)
	store := &stubSessionStore{err: errors.New("db locked")}

	result := QueryGetWeekTracker(context.Background(), GetWeekTrackerQuery{ChildID: "c1", Now: now},
		GetWeekTrackerDeps{SessionStore: store})

	if len(result.Days) != 7 {
		t.Fatalf("got %d days, want 7", len(result.Days))
	}
	for _, d := range result.Days {
		if d.Active {
			t.Errorf("day %s should not be active on fallback", d.Date)
		}
	}
	if result.CurrentStreak != 0 || result.Celebrating {
		t.Error("fallback should carry zero streak state")
	}
}

func TestQueryGetWeekTracker_CelebratingAtSevenDays(t *testing.T) {
	now := time.Date(2026, 3, 15, 20, 0, 0, 0, time.Local) // Sunday
	store := &stubSessionStore{}
	for d := 0; d < 7; d++ {
		store.sessions = append(store.sessions,
			sessionOn("c1", time.Date(2026, 3, 9+d, 9, 0, 0, 0, time.Local)))
	}

	result := QueryGetWeekTracker(context.Background(), GetWeekTrackerQuery{ChildID: "c1", Now: now},
		GetWeekTrackerDeps{SessionStore: store})

	if result.CurrentStreak != 7 {
		t.Errorf("current_streak = %d, want 7", result.CurrentStreak)
	}
	if !result.Celebrating {
		t.Error("expected celebrating at a 7 day streak")
	}
	for _, d := range result.Days {
		if !d.Active {
			t.Errorf("day %s should be active", d.Date)
		}
	}
}
