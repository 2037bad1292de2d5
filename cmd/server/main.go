package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "practicecraft/internal/adapters/email"
	web "practicecraft/internal/adapters/http"
	"practicecraft/internal/adapters/http/perf"
	"practicecraft/internal/adapters/storage"
	accountStore "practicecraft/internal/adapters/storage/account"
	childStore "practicecraft/internal/adapters/storage/child"
	engagementStore "practicecraft/internal/adapters/storage/engagement"
	feedbackStore "practicecraft/internal/adapters/storage/feedback"
	insightStore "practicecraft/internal/adapters/storage/insight"
	outboxStorePkg "practicecraft/internal/adapters/storage/outbox"
	sessionStore "practicecraft/internal/adapters/storage/session"
	topicStore "practicecraft/internal/adapters/storage/topic"
	worksheetStore "practicecraft/internal/adapters/storage/worksheet"
	"practicecraft/internal/application/orchestrators"
	outboxDomain "practicecraft/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("PRACTICECRAFT_DB", "practicecraft.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.MigrateDB(db, dbPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:    acctStore,
		ChildStore:      childStore.NewSQLiteStore(timedDB),
		TopicStore:      topicStore.NewSQLiteStore(timedDB),
		WorksheetStore:  worksheetStore.NewSQLiteStore(timedDB),
		SessionStore:    sessionStore.NewSQLiteStore(timedDB),
		EngagementStore: engagementStore.NewSQLiteStore(timedDB),
		InsightStore:    insightStore.NewSQLiteStore(timedDB),
		FeedbackStore:   feedbackStore.NewSQLiteStore(timedDB),
		OutboxStore:     outboxStorePkg.NewSQLiteStore(timedDB),
	}

	// Seed default admin account if no accounts exist
	adminEmail := envOrDefault("PRACTICECRAFT_ADMIN_EMAIL", "hello@practicecraft.app")
	adminPassword := envOrDefault("PRACTICECRAFT_ADMIN_PASSWORD", "Practice makes progress")
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Seed the topic catalog (idempotent)
	if err := orchestrators.ExecuteSeedTopics(context.Background(), stores.TopicStore); err != nil {
		log.Fatalf("failed to seed topics: %v", err)
	}

	// Seed test accounts for each role (all environments, idempotent)
	testAcctDeps := orchestrators.TestAccountSeedDeps{
		AccountStore: acctStore,
		ChildStore:   stores.ChildStore,
	}
	if err := orchestrators.ExecuteSeedTestAccounts(context.Background(), testAcctDeps); err != nil {
		log.Fatalf("failed to seed test accounts: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("PRACTICECRAFT_RESEND_KEY")
	emailFrom := envOrDefault("PRACTICECRAFT_RESEND_FROM", "PracticeCraft <noreply@practicecraft.app>")
	emailReply := envOrDefault("PRACTICECRAFT_REPLY_TO", "hello@practicecraft.app")
	var sender emailPkg.Sender
	if resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("PRACTICECRAFT_ENV") == "production" {
			log.Println("WARNING: PRACTICECRAFT_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set PRACTICECRAFT_RESEND_KEY for real delivery)")
		}
	}
	web.SetEmailSender(sender, emailFrom, emailReply)
	web.SetBaseURL(os.Getenv("PRACTICECRAFT_BASE_URL"))

	// Start outbox background worker for retrying failed email sends
	outboxStopCh := make(chan struct{})
	executors := map[string]orchestrators.ActionExecutor{
		outboxDomain.ActionTypeEmail: &orchestrators.EmailExecutor{Sender: sender},
	}
	outboxProcessor := orchestrators.NewOutboxProcessor(stores.OutboxStore, executors)
	orchestrators.StartBackgroundWorker(outboxProcessor, 1*time.Minute, outboxStopCh)
	defer close(outboxStopCh)

	// Weekly engagement summary for parents, sent Monday mornings
	summaryDeps := orchestrators.WeeklySummaryDeps{
		AccountStore:    acctStore,
		ChildStore:      stores.ChildStore,
		EngagementStore: stores.EngagementStore,
		SessionStore:    stores.SessionStore,
		Sender:          sender,
		OutboxStore:     stores.OutboxStore,
	}
	go runWeeklySummary(summaryDeps, outboxStopCh)

	// Create HTTP handler with middleware (pass collector for timing + dashboard)
	mux := web.NewMux(envOrDefault("PRACTICECRAFT_STATIC_DIR", "internal/adapters/http/static"), stores, collector)

	addr := envOrDefault("PRACTICECRAFT_ADDR", ":8080")
	log.Printf("PracticeCraft %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("PRACTICECRAFT_ENV", "development"), storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// runWeeklySummary checks hourly and sends the parent summary once per Monday.
func runWeeklySummary(deps orchestrators.WeeklySummaryDeps, stopCh <-chan struct{}) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	var lastSent string // YYYY-MM-DD of the last send
	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			if now.Weekday() != time.Monday || now.Hour() < 8 {
				continue
			}
			today := now.Format("2006-01-02")
			if today == lastSent {
				continue
			}
			if err := orchestrators.ExecuteWeeklySummary(context.Background(), deps, now); err != nil {
				log.Printf("weekly summary failed: %v", err)
				continue
			}
			lastSent = today
		}
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
