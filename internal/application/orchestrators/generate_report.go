package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"practicecraft/internal/domain/child"
	"practicecraft/internal/domain/insight"
	"practicecraft/internal/domain/session"
	"practicecraft/internal/domain/topic"
	"practicecraft/internal/domain/worksheet"

	topicStore "practicecraft/internal/adapters/storage/topic"

	"github.com/google/uuid"
)

// ChildStoreForReport defines the child store interface needed by GenerateReport.
type ChildStoreForReport interface {
	GetByID(ctx context.Context, id string) (child.Child, error)
}

// SessionStoreForReport defines the session store interface needed by GenerateReport.
type SessionStoreForReport interface {
	ListByChild(ctx context.Context, childID string) ([]session.Session, error)
}

// WorksheetStoreForReport defines the worksheet store interface needed by GenerateReport.
type WorksheetStoreForReport interface {
	ListByChild(ctx context.Context, childID string, limit int) ([]worksheet.Worksheet, error)
}

// TopicStoreForReport defines the topic store interface needed by GenerateReport.
type TopicStoreForReport interface {
	List(ctx context.Context, filter topicStore.ListFilter) ([]topic.Topic, error)
}

// InsightStoreForReport defines the insight store interface needed by GenerateReport.
type InsightStoreForReport interface {
	Save(ctx context.Context, r insight.Report) error
}

// GenerateReportDeps holds dependencies for GenerateReport.
type GenerateReportDeps struct {
	ChildStore     ChildStoreForReport
	SessionStore   SessionStoreForReport
	WorksheetStore WorksheetStoreForReport
	TopicStore     TopicStoreForReport
	InsightStore   InsightStoreForReport
}

// subjectTally accumulates per-subject accuracy.
type subjectTally struct {
	correct   int
	questions int
	sheets    int
}

// ExecuteGenerateReport rebuilds the insight report for a child from their
// session history. The report text summarises per-subject accuracy; the
// recommendation is the least-practiced topic at the child's grade.
// PRE: childID references an existing child
// POST: Latest report for the child is persisted and returned
func ExecuteGenerateReport(ctx context.Context, childID string, deps GenerateReportDeps) (insight.Report, error) {
	c, err := deps.ChildStore.GetByID(ctx, childID)
	if err != nil {
		return insight.Report{}, fmt.Errorf("load child: %w", err)
	}

	sessions, err := deps.SessionStore.ListByChild(ctx, childID)
	if err != nil {
		return insight.Report{}, fmt.Errorf("load sessions: %w", err)
	}
	sheets, err := deps.WorksheetStore.ListByChild(ctx, childID, 0)
	if err != nil {
		return insight.Report{}, fmt.Errorf("load worksheets: %w", err)
	}

	report := insight.Report{
		ID:          uuid.New().String(),
		ChildID:     c.ID,
		ChildName:   c.Name,
		ReportText:  buildReportText(c, sessions, sheets),
		GeneratedAt: time.Now(),
	}

	if rec, ok := pickRecommendation(ctx, c, sheets, deps.TopicStore); ok {
		report.Recommendation = &rec
	}

	if err := report.Validate(); err != nil {
		return insight.Report{}, err
	}
	if err := deps.InsightStore.Save(ctx, report); err != nil {
		return insight.Report{}, fmt.Errorf("save report: %w", err)
	}

	slog.Info("insight_event", "event", "report_generated", "child_id", c.ID, "sessions", len(sessions))
	return report, nil
}

// buildReportText composes the markdown summary.
func buildReportText(c child.Child, sessions []session.Session, sheets []worksheet.Worksheet) string {
	if len(sessions) == 0 {
		return fmt.Sprintf("**%s** hasn't completed any worksheets yet. "+
			"Generate a worksheet to start building a practice habit!", c.Name)
	}

	subjectByWorksheet := make(map[string]string, len(sheets))
	for _, w := range sheets {
		subjectByWorksheet[w.ID] = w.Subject
	}

	tallies := make(map[string]*subjectTally)
	for _, s := range sessions {
		subj := subjectByWorksheet[s.WorksheetID]
		if subj == "" {
			continue
		}
		t := tallies[subj]
		if t == nil {
			t = &subjectTally{}
			tallies[subj] = t
		}
		t.correct += s.CorrectCount
		t.questions += s.QuestionCount
		t.sheets++
	}

	subjects := make([]string, 0, len(tallies))
	for subj := range tallies {
		subjects = append(subjects, subj)
	}
	sort.Strings(subjects)

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** has completed **%d** worksheet", c.Name, len(sessions))
	if len(sessions) != 1 {
		b.WriteString("s")
	}
	b.WriteString(".\n\n")
	for _, subj := range subjects {
		t := tallies[subj]
		pct := 0
		if t.questions > 0 {
			pct = t.correct * 100 / t.questions
		}
		fmt.Fprintf(&b, "- %s: %d%% accuracy across %d sheet", titleCase(subj), pct, t.sheets)
		if t.sheets != 1 {
			b.WriteString("s")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// pickRecommendation chooses the least-practiced topic at the child's grade.
// Topics never attempted win; ties break on catalog order.
func pickRecommendation(ctx context.Context, c child.Child, sheets []worksheet.Worksheet, topics TopicStoreForReport) (insight.Recommendation, bool) {
	filter := topicStore.ListFilter{Grade: c.Grade}
	if c.Subject != "" {
		filter.Subject = c.Subject
	}
	catalog, err := topics.List(ctx, filter)
	if err != nil || len(catalog) == 0 {
		return insight.Recommendation{}, false
	}

	practiced := make(map[string]int)
	for _, w := range sheets {
		practiced[w.TopicSlug]++
	}

	best := catalog[0]
	bestCount := practiced[best.Slug]
	for _, t := range catalog[1:] {
		if n := practiced[t.Slug]; n < bestCount {
			best = t
			bestCount = n
		}
	}

	reason := fmt.Sprintf("%s hasn't tried this topic yet.", c.Name)
	if bestCount > 0 {
		reason = fmt.Sprintf("%s has practiced this topic the least.", c.Name)
	}

	return insight.Recommendation{
		TopicSlug: best.Slug,
		TopicName: best.Name,
		Reason:    reason,
		Subject:   best.Subject,
	}, true
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
