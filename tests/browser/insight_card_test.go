package browser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"

	insightDomain "practicecraft/internal/domain/insight"
)

// TestInsightCard_ShowsEmptyStateForNewChild verifies a child without any
// report renders the friendly empty state after the card's fetch completes.
func TestInsightCard_ShowsEmptyStateForNewChild(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)
	app.loginParent(t, page)

	card := page.Locator("[data-testid=insight-card]").First()
	if err := card.Locator("[data-testid=insight-empty]").WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(5000),
	}); err != nil {
		t.Fatalf("insight empty state not shown: %v", err)
	}
}

// TestInsightCard_ShowsReportAndRecommendation seeds a report with a
// next-topic recommendation and checks both render on the dashboard.
func TestInsightCard_ShowsReportAndRecommendation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	child := app.Children[0]
	seedInsightReport(t, app, child, "Accuracy in multiplication has climbed steadily this month.", &insightDomain.Recommendation{
		TopicSlug: "times-tables",
		TopicName: "Times Tables",
		Reason:    "recent sessions show strong progress here",
		Subject:   "math",
	})

	page := app.newPage(t)
	app.loginParent(t, page)

	card := page.Locator(fmt.Sprintf("[data-testid=insight-card][data-child-id=%s]", child.ID))
	text := card.Locator("[data-testid=insight-text]")
	if err := text.WaitFor(playwright.LocatorWaitForOptions{Timeout: playwright.Float(5000)}); err != nil {
		t.Fatalf("insight text not shown: %v", err)
	}
	body, _ := text.TextContent()
	if !strings.Contains(body, "multiplication") {
		t.Errorf("insight text = %q, want the seeded report", body)
	}

	// The practice-now link must carry topic, subject, child and the arm flag
	href, err := card.Locator("[data-testid=practice-now]").GetAttribute("href")
	if err != nil {
		t.Fatalf("practice-now link missing: %v", err)
	}
	for _, want := range []string{
		"topic_slug=times-tables",
		"subject=math",
		"child_id=" + child.ID,
		"auto_generate=true",
	} {
		if !strings.Contains(href, want) {
			t.Errorf("practice-now href = %q, missing %q", href, want)
		}
	}
}

// TestInsightCard_PracticeNowGeneratesWorksheet clicks the recommendation
// link and expects to land on a freshly generated worksheet.
func TestInsightCard_PracticeNowGeneratesWorksheet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	child := app.Children[0]
	seedInsightReport(t, app, child, "Ready for the next challenge.", &insightDomain.Recommendation{
		TopicSlug: "times-tables",
		TopicName: "Times Tables",
		Reason:    "strong recent accuracy",
		Subject:   "math",
	})

	page := app.newPage(t)
	app.loginParent(t, page)

	card := page.Locator(fmt.Sprintf("[data-testid=insight-card][data-child-id=%s]", child.ID))
	link := card.Locator("[data-testid=practice-now]")
	if err := link.WaitFor(playwright.LocatorWaitForOptions{Timeout: playwright.Float(5000)}); err != nil {
		t.Fatalf("practice-now link not shown: %v", err)
	}
	if err := link.Click(); err != nil {
		t.Fatalf("failed to click practice-now: %v", err)
	}

	// The landing page auto-submits and redirects to the new worksheet
	if err := page.WaitForURL("**/worksheets/**", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("practice-now did not produce a worksheet: %v", err)
	}
	title, err := page.Locator("[data-testid=worksheet-title]").TextContent()
	if err != nil {
		t.Fatalf("worksheet title missing: %v", err)
	}
	if !strings.Contains(title, "Times Tables") {
		t.Errorf("worksheet title = %q, want the recommended topic", title)
	}
}
