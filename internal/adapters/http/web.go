package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"practicecraft/internal/adapters/email"
	"practicecraft/internal/adapters/http/middleware"
	"practicecraft/internal/adapters/http/perf"
	accountStore "practicecraft/internal/adapters/storage/account"
	childStore "practicecraft/internal/adapters/storage/child"
	engagementStore "practicecraft/internal/adapters/storage/engagement"
	feedbackStore "practicecraft/internal/adapters/storage/feedback"
	insightStore "practicecraft/internal/adapters/storage/insight"
	outboxStore "practicecraft/internal/adapters/storage/outbox"
	sessionStore "practicecraft/internal/adapters/storage/session"
	topicStore "practicecraft/internal/adapters/storage/topic"
	worksheetStore "practicecraft/internal/adapters/storage/worksheet"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore    accountStore.Store
	ChildStore      childStore.Store
	TopicStore      topicStore.Store
	WorksheetStore  worksheetStore.Store
	SessionStore    sessionStore.Store
	EngagementStore engagementStore.Store
	InsightStore    insightStore.Store
	FeedbackStore   feedbackStore.Store
	OutboxStore     outboxStore.Store
}

// loadCSRFKey reads the CSRF secret from PRACTICECRAFT_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("PRACTICECRAFT_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("PRACTICECRAFT_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("PRACTICECRAFT_ENV") == "production" {
		log.Fatal("PRACTICECRAFT_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set PRACTICECRAFT_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// brandedSender fills in the app's from and reply-to addresses on requests
// that leave them empty.
type brandedSender struct {
	inner   email.Sender
	from    string
	replyTo string
}

func (b *brandedSender) Send(ctx context.Context, req email.SendRequest) (email.SendResult, error) {
	if req.From == "" {
		req.From = b.from
	}
	if req.ReplyTo == "" {
		req.ReplyTo = b.replyTo
	}
	return b.inner.Send(ctx, req)
}

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = &brandedSender{inner: sender, from: from, replyTo: replyTo}
}

// appBaseURL is used when building absolute links in outgoing email.
var appBaseURL = "http://localhost:8080"

// SetBaseURL sets the externally visible base URL for links in email.
func SetBaseURL(u string) {
	if u != "" {
		appBaseURL = u
	}
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("PRACTICECRAFT_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
