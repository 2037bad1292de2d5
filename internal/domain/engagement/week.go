package engagement

import (
	"time"

	"practicecraft/internal/domain/session"
)

// DateLayout is the calendar-date format used throughout week and streak logic.
const DateLayout = "2006-01-02"

// weekdayLabels are the short labels for a Monday-starting week.
var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekDay is one cell of the Mon-Sun engagement tracker. Derived, never persisted.
type WeekDay struct {
	Date     string `json:"date"`  // YYYY-MM-DD
	Label    string `json:"label"` // Mon..Sun
	IsToday  bool   `json:"is_today"`
	IsFuture bool   `json:"is_future"`
	Active   bool   `json:"active"`
}

// CurrentWeekDays returns the 7 dates of the Monday-starting week containing now,
// ordered Monday through Sunday.
// PRE: now is a valid time
// POST: Returns exactly 7 consecutive WeekDay entries; the first is the Monday <= now
// and the last is the Sunday >= now
func CurrentWeekDays(now time.Time) []WeekDay {
	// Normalize to midnight local so date arithmetic ignores the clock.
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// time.Weekday has Sunday == 0. Sunday is the only day whose Monday
	// lies six days back; every other day is offset 1-dow.
	dow := int(midnight.Weekday())
	offset := 1 - dow
	if dow == 0 {
		offset = -6
	}
	monday := midnight.AddDate(0, 0, offset)

	days := make([]WeekDay, 7)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		days[i] = WeekDay{
			Date:  d.Format(DateLayout),
			Label: weekdayLabels[i],
		}
	}
	return days
}

// ActiveDates collapses session timestamps into the set of calendar dates
// (day granularity, truncation only) that had at least one session.
// PRE: sessions may be in any order and may repeat days
// POST: Returns a set keyed by YYYY-MM-DD; duplicate days collapse to one entry
func ActiveDates(sessions []session.Session) map[string]bool {
	dates := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		dates[s.Date()] = true
	}
	return dates
}

// MarkWeek fills in Active, IsToday and IsFuture for a week of days.
// Active is the intersection of the week's dates with activeDates; a date
// outside the week never affects the result. Today and future are decided
// by string comparison against today's date string, and a future day is
// never active regardless of data.
// PRE: days is the output of CurrentWeekDays, today is YYYY-MM-DD
// POST: Returns a new slice; input is not mutated
func MarkWeek(days []WeekDay, activeDates map[string]bool, today string) []WeekDay {
	marked := make([]WeekDay, len(days))
	for i, d := range days {
		d.IsToday = d.Date == today
		d.IsFuture = d.Date > today
		d.Active = activeDates[d.Date] && !d.IsFuture
		marked[i] = d
	}
	return marked
}

// ComputeStreaks derives the current and longest daily streaks from the set
// of active dates. The current streak is the run of consecutive days ending
// today or yesterday (an unbroken streak survives until a full day is
// missed); the longest streak is the maximum run anywhere in history.
// PRE: activeDates keys are YYYY-MM-DD, now is a valid time
// POST: current >= 0 and longest >= current
func ComputeStreaks(activeDates map[string]bool, now time.Time) (current, longest int) {
	if len(activeDates) == 0 {
		return 0, 0
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Current streak: walk backwards from today; if today has no session
	// yet, the streak may still be alive ending yesterday.
	anchor := today
	if !activeDates[anchor.Format(DateLayout)] {
		anchor = anchor.AddDate(0, 0, -1)
	}
	for activeDates[anchor.Format(DateLayout)] {
		current++
		anchor = anchor.AddDate(0, 0, -1)
	}

	// Longest streak: run-length over all active dates.
	for date := range activeDates {
		day, err := time.ParseInLocation(DateLayout, date, now.Location())
		if err != nil {
			continue
		}
		// Only count runs from their first day.
		if activeDates[day.AddDate(0, 0, -1).Format(DateLayout)] {
			continue
		}
		run := 0
		for activeDates[day.Format(DateLayout)] {
			run++
			day = day.AddDate(0, 0, 1)
		}
		if run > longest {
			longest = run
		}
	}
	return current, longest
}
