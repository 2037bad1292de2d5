package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "practicecraft/internal/adapters/http"
	"practicecraft/internal/adapters/http/middleware"
	"practicecraft/internal/adapters/http/perf"
	"practicecraft/internal/adapters/storage"
	accountStore "practicecraft/internal/adapters/storage/account"
	childStore "practicecraft/internal/adapters/storage/child"
	engagementStore "practicecraft/internal/adapters/storage/engagement"
	feedbackStore "practicecraft/internal/adapters/storage/feedback"
	insightStore "practicecraft/internal/adapters/storage/insight"
	outboxStore "practicecraft/internal/adapters/storage/outbox"
	sessionStore "practicecraft/internal/adapters/storage/session"
	topicStore "practicecraft/internal/adapters/storage/topic"
	worksheetStore "practicecraft/internal/adapters/storage/worksheet"
	"practicecraft/internal/application/orchestrators"
	childDomain "practicecraft/internal/domain/child"
	insightDomain "practicecraft/internal/domain/insight"
	sessionDomain "practicecraft/internal/domain/session"
	worksheetDomain "practicecraft/internal/domain/worksheet"
)

const (
	parentEmail    = "hello+parent@practicecraft.app"
	parentPassword = "Practice+parent!"
	adminEmail     = "hello+admin@practicecraft.app"
	adminPassword  = "Practice+admin!"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL  string
	DB       *sql.DB
	Server   *http.Server
	PW       *playwright.Playwright
	Browser  playwright.Browser
	Stores   *web.Stores
	ParentID string
	Children []childDomain.Child // seeded learner profiles, sorted by name
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// Create temp directory for the database
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Run migrations
	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	// Create stores
	acctStore := accountStore.NewSQLiteStore(db)
	kidStore := childStore.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore:    acctStore,
		ChildStore:      kidStore,
		TopicStore:      topicStore.NewSQLiteStore(db),
		WorksheetStore:  worksheetStore.NewSQLiteStore(db),
		SessionStore:    sessionStore.NewSQLiteStore(db),
		EngagementStore: engagementStore.NewSQLiteStore(db),
		InsightStore:    insightStore.NewSQLiteStore(db),
		FeedbackStore:   feedbackStore.NewSQLiteStore(db),
		OutboxStore:     outboxStore.NewSQLiteStore(db),
	}

	// Seed the topic catalog and the test accounts (active parent with two learners)
	ctx := context.Background()
	if err := orchestrators.ExecuteSeedTopics(ctx, stores.TopicStore); err != nil {
		t.Fatalf("failed to seed topics: %v", err)
	}
	seedDeps := orchestrators.TestAccountSeedDeps{AccountStore: acctStore, ChildStore: kidStore}
	if err := orchestrators.ExecuteSeedTestAccounts(ctx, seedDeps); err != nil {
		t.Fatalf("failed to seed test accounts: %v", err)
	}

	parent, err := acctStore.GetByEmail(ctx, parentEmail)
	if err != nil {
		t.Fatalf("seeded parent not found: %v", err)
	}
	kids, err := kidStore.ListByAccount(ctx, parent.ID)
	if err != nil {
		t.Fatalf("failed to list seeded children: %v", err)
	}
	if len(kids) == 0 {
		t.Fatal("seeded parent has no children")
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Change to project root so relative template/static paths work
	projectRoot := findProjectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("failed to chdir to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	// Add test port to CSRF trusted origins before creating mux
	middleware.ExtraTrustedOrigins = append(middleware.ExtraTrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("localhost:%d", port),
	)

	// Start HTTP server
	collector := perf.NewCollector(perf.DefaultRingSize)
	mux := web.NewMux("internal/adapters/http/static", stores, collector)
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/login")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	// Start Playwright
	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL:  baseURL,
		DB:       db,
		Server:   srv,
		PW:       pw,
		Browser:  browser,
		Stores:   stores,
		ParentID: parent.ID,
		Children: kids,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login navigates to the login page and logs in with the given credentials.
func (a *testApp) login(t *testing.T, page playwright.Page, email, password string) {
	t.Helper()
	_, err := page.Goto(a.BaseURL + "/login")
	if err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=Email]").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=Password]").Fill(password); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("[data-testid=login-submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	// Wait for redirect to dashboard
	if err := page.WaitForURL(a.BaseURL+"/dashboard", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to dashboard: %v", err)
	}
}

// loginParent logs in as the seeded parent account.
func (a *testApp) loginParent(t *testing.T, page playwright.Page) {
	a.login(t, page, parentEmail, parentPassword)
}

// seedCompletedWorksheet writes a ready worksheet plus a session directly to
// the stores. Returns the worksheet ID.
func seedCompletedWorksheet(t *testing.T, app *testApp, childID string, correct, total, stars int, at time.Time) string {
	t.Helper()
	ctx := context.Background()
	ws := worksheetDomain.Worksheet{
		ID:            uuid.New().String(),
		ChildID:       childID,
		TopicSlug:     "times-tables",
		Subject:       "math",
		Grade:         3,
		Title:         "Times Tables practice",
		Content:       "1. What is 3 x 4?",
		QuestionCount: total,
		Status:        worksheetDomain.StatusReady,
		CreatedAt:     at,
	}
	if err := app.Stores.WorksheetStore.Save(ctx, ws); err != nil {
		t.Fatalf("failed to seed worksheet: %v", err)
	}
	sess := sessionDomain.Session{
		ID:            uuid.New().String(),
		ChildID:       childID,
		WorksheetID:   ws.ID,
		CorrectCount:  correct,
		QuestionCount: total,
		Stars:         stars,
		CreatedAt:     at,
	}
	if err := app.Stores.SessionStore.Save(ctx, sess); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return ws.ID
}

// seedPracticeDays records one completed worksheet per given day offset
// (0 = today, 1 = yesterday, ...).
func seedPracticeDays(t *testing.T, app *testApp, childID string, dayOffsets ...int) {
	t.Helper()
	for _, offset := range dayOffsets {
		at := time.Now().AddDate(0, 0, -offset)
		seedCompletedWorksheet(t, app, childID, 9, 10, 3, at)
	}
}

// seedInsightReport stores a report for the child, optionally with a
// next-topic recommendation.
func seedInsightReport(t *testing.T, app *testApp, c childDomain.Child, text string, rec *insightDomain.Recommendation) {
	t.Helper()
	report := insightDomain.Report{
		ID:             uuid.New().String(),
		ChildID:        c.ID,
		ChildName:      c.Name,
		ReportText:     text,
		Recommendation: rec,
		GeneratedAt:    time.Now(),
	}
	if err := app.Stores.InsightStore.Save(context.Background(), report); err != nil {
		t.Fatalf("failed to seed insight report: %v", err)
	}
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
