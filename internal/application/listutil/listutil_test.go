package listutil

import (
	"net/url"
	"testing"
)

// TestParsePageParams_Defaults verifies default page params when no query values provided.
func TestParsePageParams_Defaults(t *testing.T) {
	q := url.Values{}
	p := ParsePageParams(q)
	if p.Page != 1 {
		t.Errorf("expected page 1, got %d", p.Page)
	}
	if p.PerPage != DefaultPerPage {
		t.Errorf("expected per_page %d, got %d", DefaultPerPage, p.PerPage)
	}
}

// TestParsePageParams_Valid verifies correct parsing of valid page and per_page values.
func TestParsePageParams_Valid(t *testing.T) {
	q := url.Values{"page": {"3"}, "per_page": {"50"}}
	p := ParsePageParams(q)
	if p.Page != 3 {
		t.Errorf("expected page 3, got %d", p.Page)
	}
	if p.PerPage != 50 {
		t.Errorf("expected per_page 50, got %d", p.PerPage)
	}
}

// TestParsePageParams_InvalidPerPage verifies fallback to default for invalid per_page.
func TestParsePageParams_InvalidPerPage(t *testing.T) {
	q := url.Values{"per_page": {"25"}} // not in allowed list
	p := ParsePageParams(q)
	if p.PerPage != DefaultPerPage {
		t.Errorf("expected default per_page %d for invalid value, got %d", DefaultPerPage, p.PerPage)
	}
}

// TestParseSortParams_DisallowedColumn verifies disallowed sort columns are rejected.
func TestParseSortParams_DisallowedColumn(t *testing.T) {
	q := url.Values{"sort": {"password"}}
	s := ParseSortParams(q, []string{"created_at", "stars"})
	if s.Sort != "" {
		t.Errorf("expected empty sort for disallowed column, got %s", s.Sort)
	}
}

// TestParseSortParams_InvalidDir verifies invalid direction defaults to desc.
func TestParseSortParams_InvalidDir(t *testing.T) {
	q := url.Values{"sort": {"created_at"}, "dir": {"DROP TABLE"}}
	s := ParseSortParams(q, []string{"created_at"})
	if s.Dir != "desc" {
		t.Errorf("expected dir=desc for invalid dir, got %s", s.Dir)
	}
}

// TestNewPageInfo verifies pagination metadata computation.
func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		perPage    int
		total      int
		wantPages  int
		wantPage   int
		wantStart  int
		wantEnd    int
		wantOffset int
	}{
		{"basic", 1, 20, 85, 5, 1, 1, 20, 0},
		{"page2", 2, 20, 85, 5, 2, 21, 40, 20},
		{"lastPage", 5, 20, 85, 5, 5, 81, 85, 80},
		{"pageBeyondTotal", 10, 20, 85, 5, 5, 81, 85, 80},
		{"emptyList", 1, 20, 0, 1, 1, 0, 0, 0},
		{"exactFit", 1, 10, 10, 1, 1, 1, 10, 0},
		{"singleRow", 1, 20, 1, 1, 1, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.perPage, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: got %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", pi.Page, tt.wantPage)
			}
			if pi.StartRow() != tt.wantStart {
				t.Errorf("StartRow: got %d, want %d", pi.StartRow(), tt.wantStart)
			}
			if pi.EndRow() != tt.wantEnd {
				t.Errorf("EndRow: got %d, want %d", pi.EndRow(), tt.wantEnd)
			}
			if pi.Offset() != tt.wantOffset {
				t.Errorf("Offset: got %d, want %d", pi.Offset(), tt.wantOffset)
			}
		})
	}
}

// TestPageNumbers verifies the windowed page button list.
func TestPageNumbers(t *testing.T) {
	tests := []struct {
		name string
		page int
		tot  int
		want []int
	}{
		{"fewPages", 1, 3, []int{1, 2, 3}},
		{"middle", 5, 9, []int{3, 4, 5, 6, 7}},
		{"nearEnd", 9, 9, []int{5, 6, 7, 8, 9}},
		{"start", 1, 9, []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := PageInfo{Page: tt.page, PerPage: 20, Total: tt.tot * 20, TotalPages: tt.tot}
			got := pi.PageNumbers()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}
