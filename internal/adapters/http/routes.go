package web

import "net/http"

// registerRoutes attaches all page and API handlers to the mux.
// Auth is enforced per-handler via the session in context; the Auth
// middleware only resolves the cookie.
func registerRoutes(mux *http.ServeMux) {
	// Pages
	mux.HandleFunc("/", handleRoot)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)
	mux.HandleFunc("/dashboard", handleDashboard)
	mux.HandleFunc("/generate", handleGenerate)
	mux.HandleFunc("/worksheets/{id}", handleWorksheet)
	mux.HandleFunc("/worksheets/{id}/complete", handleCompleteWorksheet)
	mux.HandleFunc("/history", handleHistory)
	mux.HandleFunc("/feedback", handleFeedback)
	mux.HandleFunc("/children", handleChildren)
	mux.HandleFunc("/children/{id}/archive", handleArchiveChild)
	mux.HandleFunc("/activate", handleActivate)

	// JSON API
	mux.HandleFunc("/api/children/{id}/graph/report", handleChildReport)
	mux.HandleFunc("/api/children/{id}/week", handleWeekTracker)
	mux.HandleFunc("/api/engagement/{id}", handleEngagement)
	mux.HandleFunc("/api/token", handleAPIToken)
	mux.HandleFunc("/api/role-switch", handleRoleSwitch)
	mux.HandleFunc("/api/role-restore", handleRoleRestore)
	mux.HandleFunc("/api/perf", handlePerf)
}

// handleRoot redirects / to the dashboard (or login when anonymous).
func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
