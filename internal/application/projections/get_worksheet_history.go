package projections

import (
	"context"
	"fmt"
	"sort"

	"practicecraft/internal/application/listutil"
	"practicecraft/internal/domain/session"
	"practicecraft/internal/domain/worksheet"
)

// HistoryWorksheetStore defines the worksheet store interface needed by the history projection.
type HistoryWorksheetStore interface {
	ListByChild(ctx context.Context, childID string, limit int) ([]worksheet.Worksheet, error)
}

// HistorySessionStore defines the session store interface needed by the history projection.
type HistorySessionStore interface {
	ListByChild(ctx context.Context, childID string) ([]session.Session, error)
}

// HistorySortColumns are the sort keys the history view accepts.
var HistorySortColumns = []string{"created_at", "topic", "stars"}

// GetWorksheetHistoryQuery carries input for the history projection.
type GetWorksheetHistoryQuery struct {
	ChildID string
	Page    listutil.PageParams
	Sort    listutil.SortParams
}

// GetWorksheetHistoryDeps holds dependencies for the history projection.
type GetWorksheetHistoryDeps struct {
	WorksheetStore HistoryWorksheetStore
	SessionStore   HistorySessionStore
}

// HistoryRow is one worksheet with its completion state.
type HistoryRow struct {
	Worksheet worksheet.Worksheet
	Completed bool
	Stars     int
	Accuracy  int // percent, 0 when not completed
}

// WorksheetHistoryResult carries one page of history rows.
type WorksheetHistoryResult struct {
	Rows     []HistoryRow
	PageInfo listutil.PageInfo
	Sort     listutil.SortParams
}

// QueryGetWorksheetHistory returns a page of a child's worksheets with
// completion state, sorted and paginated.
// PRE: ChildID is non-empty; Sort validated against HistorySortColumns
// POST: len(Rows) <= PerPage; PageInfo.Total is the full row count
func QueryGetWorksheetHistory(ctx context.Context, query GetWorksheetHistoryQuery, deps GetWorksheetHistoryDeps) (WorksheetHistoryResult, error) {
	sheets, err := deps.WorksheetStore.ListByChild(ctx, query.ChildID, 0)
	if err != nil {
		return WorksheetHistoryResult{}, fmt.Errorf("load worksheets: %w", err)
	}
	sessions, err := deps.SessionStore.ListByChild(ctx, query.ChildID)
	if err != nil {
		return WorksheetHistoryResult{}, fmt.Errorf("load sessions: %w", err)
	}

	byWorksheet := make(map[string]session.Session, len(sessions))
	for _, s := range sessions {
		byWorksheet[s.WorksheetID] = s
	}

	rows := make([]HistoryRow, 0, len(sheets))
	for _, w := range sheets {
		row := HistoryRow{Worksheet: w}
		if s, ok := byWorksheet[w.ID]; ok {
			row.Completed = true
			row.Stars = s.Stars
			row.Accuracy = int(s.Accuracy() * 100)
		}
		rows = append(rows, row)
	}

	sortHistoryRows(rows, query.Sort)

	info := listutil.NewPageInfo(query.Page.Page, query.Page.PerPage, len(rows))
	start := info.Offset()
	end := start + info.PerPage
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}

	return WorksheetHistoryResult{
		Rows:     rows[start:end],
		PageInfo: info,
		Sort:     query.Sort,
	}, nil
}

// sortHistoryRows orders rows in place. Default is newest first.
func sortHistoryRows(rows []HistoryRow, params listutil.SortParams) {
	less := func(i, j int) bool {
		return rows[i].Worksheet.CreatedAt.After(rows[j].Worksheet.CreatedAt)
	}
	switch params.Sort {
	case "topic":
		less = func(i, j int) bool {
			return rows[i].Worksheet.TopicSlug < rows[j].Worksheet.TopicSlug
		}
	case "stars":
		less = func(i, j int) bool {
			return rows[i].Stars < rows[j].Stars
		}
	case "created_at":
		less = func(i, j int) bool {
			return rows[i].Worksheet.CreatedAt.Before(rows[j].Worksheet.CreatedAt)
		}
	}

	if params.Sort != "" && params.Dir == "desc" {
		orig := less
		less = func(i, j int) bool { return orig(j, i) }
	}
	sort.SliceStable(rows, less)
}
