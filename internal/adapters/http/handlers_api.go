package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"practicecraft/internal/adapters/http/middleware"
	"practicecraft/internal/application/orchestrators"
	"practicecraft/internal/application/projections"
)

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleChildReport handles GET /api/children/{id}/graph/report — the
// insight card payload. Missing data and fetch failures produce the same
// empty shape; the projection logs the difference server-side.
func handleChildReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	childID := r.PathValue("id")
	if _, ok := ownedChild(w, r, childID); !ok {
		return
	}

	result := projections.QueryGetChildReport(r.Context(), childID, projections.GetChildReportDeps{
		InsightStore: stores.InsightStore,
	})
	respondJSON(w, http.StatusOK, result)
}

// handleEngagement handles GET /api/engagement/{id}.
func handleEngagement(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	childID := r.PathValue("id")
	if _, ok := ownedChild(w, r, childID); !ok {
		return
	}

	snapshot := projections.QueryGetEngagement(r.Context(), childID, projections.GetEngagementDeps{
		EngagementStore: stores.EngagementStore,
	})
	respondJSON(w, http.StatusOK, snapshot)
}

// handleWeekTracker handles GET /api/children/{id}/week — the 7 rendered
// days of the current Monday-starting week.
func handleWeekTracker(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	childID := r.PathValue("id")
	if _, ok := ownedChild(w, r, childID); !ok {
		return
	}

	result := projections.QueryGetWeekTracker(r.Context(), projections.GetWeekTrackerQuery{
		ChildID: childID,
		Now:     timeNow(),
	}, projections.GetWeekTrackerDeps{
		SessionStore: stores.SessionStore,
	})
	respondJSON(w, http.StatusOK, result)
}

// tokenTTL is the lifetime of issued API tokens.
const tokenTTL = 72 * time.Hour

var jwtSecret []byte
var jwtSecretOnce sync.Once

// loadJWTSecret reads PRACTICECRAFT_JWT_SECRET. In production the secret
// MUST be set; in development a random per-startup secret is generated.
func loadJWTSecret() []byte {
	jwtSecretOnce.Do(func() {
		if s := os.Getenv("PRACTICECRAFT_JWT_SECRET"); s != "" {
			jwtSecret = []byte(s)
			return
		}
		if os.Getenv("PRACTICECRAFT_ENV") == "production" {
			log.Fatal("PRACTICECRAFT_JWT_SECRET is required in production")
		}
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("failed to generate JWT secret: %v", err)
		}
		jwtSecret = []byte(hex.EncodeToString(b))
	})
	return jwtSecret
}

// handleAPIToken handles POST /api/token — password-grant token issuance.
func handleAPIToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{AccountStore: stores.AccountStore})
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	now := timeNow()
	claims := jwt.MapClaims{
		"sub":   result.AccountID,
		"email": result.Email,
		"role":  result.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(loadJWTSecret())
	if err != nil {
		internalError(w, err)
		return
	}

	slog.Info("api_token_issued", "account_id", result.AccountID, "role", result.Role)
	respondJSON(w, http.StatusOK, map[string]any{
		"access_token": signed,
		"token_type":   "Bearer",
		"expires_in":   int(tokenTTL.Seconds()),
	})
}

// handleRoleSwitch handles POST /api/role-switch — admin-only impersonation.
func handleRoleSwitch(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if !middleware.IsRealAdmin(r.Context()) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}

	input := orchestrators.DevModeImpersonateInput{
		TargetRole:    r.FormValue("role"),
		CurrentRole:   sess.Role,
		AccountID:     sess.AccountID,
		Email:         sess.Email,
		RealAccountID: sess.RealAccountID,
		RealRole:      sess.RealRole,
		RealEmail:     sess.RealEmail,
	}

	result, err := orchestrators.ExecuteDevModeImpersonate(input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Update session in-place
	cookie, err := r.Cookie("practicecraft_session")
	if err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}

	sess.Role = result.Role
	sess.RealAccountID = result.RealAccountID
	sess.RealEmail = result.RealEmail
	sess.RealRole = result.RealRole
	// Restore AccountID/Email when switching back to admin
	if result.RealRole == "" && result.Role == "admin" {
		if sess.RealAccountID != "" {
			sess.AccountID = sess.RealAccountID
			sess.Email = sess.RealEmail
		}
		sess.RealAccountID = ""
		sess.RealEmail = ""
		sess.RealRole = ""
	}

	sessions.Update(cookie.Value, sess)

	slog.Info("devmode_event",
		"event", "role_switch",
		"target_role", result.Role,
	)

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleRoleRestore handles POST /api/role-restore — drop impersonation.
func handleRoleRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	input := orchestrators.DevModeRestoreInput{
		CurrentRole:   sess.Role,
		RealAccountID: sess.RealAccountID,
		RealEmail:     sess.RealEmail,
		RealRole:      sess.RealRole,
	}

	result, err := orchestrators.ExecuteDevModeRestore(input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cookie, err := r.Cookie("practicecraft_session")
	if err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}

	sess.AccountID = result.AccountID
	sess.Email = result.Email
	sess.Role = result.Role
	sess.RealAccountID = ""
	sess.RealEmail = ""
	sess.RealRole = ""

	sessions.Update(cookie.Value, sess)

	slog.Info("devmode_event", "event", "restore", "admin_account_id", result.AccountID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handlePerf handles GET /api/perf — admin-only timing snapshot.
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !middleware.IsRealAdmin(r.Context()) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if perfCollector == nil {
		respondJSON(w, http.StatusOK, map[string]any{})
		return
	}

	window := 15 * time.Minute
	if v := r.URL.Query().Get("window_minutes"); v != "" {
		if n, err := time.ParseDuration(v + "m"); err == nil && n > 0 {
			window = n
		}
	}
	respondJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-window), 10))
}
