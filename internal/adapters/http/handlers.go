package web

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"practicecraft/internal/adapters/http/middleware"
	topicStore "practicecraft/internal/adapters/storage/topic"
	"practicecraft/internal/application/listutil"
	"practicecraft/internal/application/orchestrators"
	"practicecraft/internal/application/projections"
	childDomain "practicecraft/internal/domain/child"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

const templatesDir = "internal/adapters/http/templates"

// templatesRoot allows main and the browser test helper to anchor template
// lookup when the process does not run from the repository root.
var templatesRoot = templatesDir

// SetTemplatesRoot overrides the template directory (absolute path).
func SetTemplatesRoot(dir string) {
	if dir != "" {
		templatesRoot = dir
	}
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	role := ""
	email := ""
	if ok {
		role = sess.Role
		email = sess.Email
	}

	impersonating := false
	realRole := ""
	isRealAdmin := false
	if ok && sess.IsImpersonating() {
		impersonating = true
		realRole = sess.RealRole
		isRealAdmin = sess.RealRole == "admin"
	} else if ok {
		isRealAdmin = sess.Role == "admin"
	}

	funcMap := template.FuncMap{
		"currentRole":     func() string { return role },
		"currentEmail":    func() string { return email },
		"isLoggedIn":      func() bool { return role != "" },
		"csrfToken":       func() string { return csrf.Token(r) },
		"isImpersonating": func() bool { return impersonating },
		"realRole":        func() string { return realRole },
		"isRealAdmin":     func() bool { return isRealAdmin },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"gradeRange": func() []int {
			return []int{1, 2, 3, 4, 5, 6, 7, 8}
		},
		"starRange": func(n int) []int {
			s := make([]int, n)
			for i := range s {
				s[i] = i
			}
			return s
		},
		"sortHeaderArgs": func(col, label, activeSort, activeDir, childID string, perPage int) map[string]string {
			nextDir := "asc"
			if col == activeSort && activeDir == "asc" {
				nextDir = "desc"
			}
			return map[string]string{
				"Col": col, "Label": label,
				"ActiveSort": activeSort, "ActiveDir": activeDir, "NextDir": nextDir,
				"ChildID": childID,
				"PerPage": strconv.Itoa(perPage),
			}
		},
		"paginationQuery": func(page int, sort, dir, childID string, perPage int) template.URL {
			q := "page=" + strconv.Itoa(page)
			if sort != "" {
				q += "&sort=" + sort
			}
			if dir != "" {
				q += "&dir=" + dir
			}
			if childID != "" {
				q += "&child_id=" + childID
			}
			if perPage > 0 {
				q += "&per_page=" + strconv.Itoa(perPage)
			}
			return template.URL(q)
		},
	}

	layoutPath := filepath.Join(templatesRoot, "layout.html")
	pagePath := filepath.Join(templatesRoot, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// ownedChild loads a child and checks the session account owns it.
// Admins may access any child. Writes the error response on failure.
func ownedChild(w http.ResponseWriter, r *http.Request, childID string) (childDomain.Child, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return childDomain.Child{}, false
	}
	c, err := stores.ChildStore.GetByID(r.Context(), childID)
	if err != nil {
		http.Error(w, "child not found", http.StatusNotFound)
		return childDomain.Child{}, false
	}
	if c.AccountID != sess.AccountID && !middleware.IsRealAdmin(r.Context()) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return childDomain.Child{}, false
	}
	return c, true
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// If already logged in, redirect to dashboard
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}

		deps := orchestrators.LoginDeps{
			AccountStore: stores.AccountStore,
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		token, err := sessions.Create(result.AccountID, result.Email, result.Role)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		middleware.SetSessionCookie(w, token)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie("practicecraft_session")
	if err == nil {
		sessions.Delete(cookie.Value)
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleDashboard handles GET /dashboard.
// Parents see one card per active child: week tracker, engagement snapshot,
// insight card and a practice-now deep link. Admins see platform counts.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	query := projections.GetDashboardQuery{
		Role:      sess.Role,
		AccountID: sess.AccountID,
		Now:       timeNow(),
	}
	deps := projections.GetDashboardDeps{
		ChildStore:       stores.ChildStore,
		SessionStore:     stores.SessionStore,
		EngagementStore:  stores.EngagementStore,
		InsightStore:     stores.InsightStore,
		AccountCounter:   stores.AccountStore,
		WorksheetCounter: stores.WorksheetStore,
		FeedbackCounter:  stores.FeedbackStore,
	}

	result, err := projections.QueryGetDashboard(r.Context(), query, deps)
	if err != nil {
		internalError(w, err)
		return
	}

	templateName := "dashboard_parent.html"
	if sess.Role == "admin" {
		templateName = "dashboard_admin.html"
	}
	renderTemplate(w, r, templateName, map[string]any{
		"CSRFToken": csrf.Token(r),
		"Result":    result,
	})
}

// handleGenerate handles GET (form) and POST (create) for /generate.
// The GET form consumes topic_slug, subject, child_id and auto_generate
// query params: when all are present and auto_generate is exactly "true",
// the selection is pre-filled and the page submits itself on load.
// Partial or unknown params are silently ignored.
func handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	ctx := r.Context()

	if r.Method == "GET" {
		children, err := stores.ChildStore.ListByAccount(ctx, sess.AccountID)
		if err != nil {
			internalError(w, err)
			return
		}
		active := make([]childDomain.Child, 0, len(children))
		for _, c := range children {
			if c.Status == childDomain.StatusActive {
				active = append(active, c)
			}
		}

		topics, err := stores.TopicStore.List(ctx, topicStore.ListFilter{})
		if err != nil {
			internalError(w, err)
			return
		}

		q := r.URL.Query()
		topicSlug := q.Get("topic_slug")
		subject := q.Get("subject")
		childID := q.Get("child_id")
		autoGenerate := topicSlug != "" && subject != "" && childID != "" &&
			q.Get("auto_generate") == "true"

		renderTemplate(w, r, "generate.html", map[string]any{
			"CSRFToken":    csrf.Token(r),
			"Children":     active,
			"Topics":       topics,
			"TopicSlug":    topicSlug,
			"Subject":      subject,
			"ChildID":      childID,
			"AutoGenerate": autoGenerate,
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		childID := r.FormValue("ChildID")
		if _, ok := ownedChild(w, r, childID); !ok {
			return
		}

		input := orchestrators.GenerateWorksheetInput{
			ChildID:   childID,
			TopicSlug: r.FormValue("TopicSlug"),
			Subject:   r.FormValue("Subject"),
		}
		deps := orchestrators.GenerateWorksheetDeps{
			TopicStore:     stores.TopicStore,
			ChildStore:     stores.ChildStore,
			WorksheetStore: stores.WorksheetStore,
		}

		id, err := orchestrators.ExecuteGenerateWorksheet(ctx, input, deps)
		if err != nil {
			if errors.Is(err, orchestrators.ErrUnknownTopic) ||
				errors.Is(err, orchestrators.ErrSubjectMismatch) ||
				errors.Is(err, orchestrators.ErrChildArchived) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			internalError(w, err)
			return
		}

		http.Redirect(w, r, "/worksheets/"+id, http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleWorksheet handles GET /worksheets/{id} — the rendered sheet plus
// the completion form, or the recorded result when already completed.
func handleWorksheet(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	ws, err := stores.WorksheetStore.GetByID(ctx, r.PathValue("id"))
	if err != nil {
		http.Error(w, "worksheet not found", http.StatusNotFound)
		return
	}
	if _, ok := ownedChild(w, r, ws.ChildID); !ok {
		return
	}

	data := map[string]any{
		"CSRFToken": csrf.Token(r),
		"Worksheet": ws,
	}
	if sess, err := stores.SessionStore.GetByWorksheet(ctx, ws.ID); err == nil {
		data["Session"] = sess
	}
	renderTemplate(w, r, "worksheet.html", data)
}

// handleCompleteWorksheet handles POST /worksheets/{id}/complete.
func handleCompleteWorksheet(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	ws, err := stores.WorksheetStore.GetByID(ctx, r.PathValue("id"))
	if err != nil {
		http.Error(w, "worksheet not found", http.StatusNotFound)
		return
	}
	if _, ok := ownedChild(w, r, ws.ChildID); !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	correct, err := strconv.Atoi(r.FormValue("CorrectCount"))
	if err != nil {
		http.Error(w, "CorrectCount must be a number", http.StatusBadRequest)
		return
	}

	input := orchestrators.CompleteSessionInput{
		WorksheetID:  ws.ID,
		CorrectCount: correct,
		Now:          timeNow(),
	}
	deps := orchestrators.CompleteSessionDeps{
		WorksheetStore:  stores.WorksheetStore,
		SessionStore:    stores.SessionStore,
		EngagementStore: stores.EngagementStore,
	}

	result, err := orchestrators.ExecuteCompleteSession(ctx, input, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrWorksheetNotReady) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("session_recorded",
		"worksheet_id", ws.ID,
		"child_id", ws.ChildID,
		"stars", result.Stars,
	)

	// Refresh the insight report now that the history changed. The report is
	// a supplementary read model; a failure here must not undo the session.
	reportDeps := orchestrators.GenerateReportDeps{
		ChildStore:     stores.ChildStore,
		SessionStore:   stores.SessionStore,
		WorksheetStore: stores.WorksheetStore,
		TopicStore:     stores.TopicStore,
		InsightStore:   stores.InsightStore,
	}
	if _, err := orchestrators.ExecuteGenerateReport(ctx, ws.ChildID, reportDeps); err != nil {
		slog.Warn("insight_event", "event", "report_refresh_failed", "child_id", ws.ChildID, "error", err.Error())
	}

	http.Redirect(w, r, "/worksheets/"+ws.ID, http.StatusSeeOther)
}

// handleHistory handles GET /history — a paginated, sortable table of a
// child's worksheets.
func handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	ctx := r.Context()

	children, err := stores.ChildStore.ListByAccount(ctx, sess.AccountID)
	if err != nil {
		internalError(w, err)
		return
	}

	q := r.URL.Query()
	childID := q.Get("child_id")
	if childID == "" && len(children) > 0 {
		childID = children[0].ID
	}

	data := map[string]any{
		"Children": children,
		"ChildID":  childID,
	}

	if childID != "" {
		if _, ok := ownedChild(w, r, childID); !ok {
			return
		}
		query := projections.GetWorksheetHistoryQuery{
			ChildID: childID,
			Page:    listutil.ParsePageParams(q),
			Sort:    listutil.ParseSortParams(q, projections.HistorySortColumns),
		}
		deps := projections.GetWorksheetHistoryDeps{
			WorksheetStore: stores.WorksheetStore,
			SessionStore:   stores.SessionStore,
		}
		result, err := projections.QueryGetWorksheetHistory(ctx, query, deps)
		if err != nil {
			internalError(w, err)
			return
		}
		data["Result"] = result
	}

	renderTemplate(w, r, "history.html", data)
}

// handleFeedback handles GET (form) and POST (submit) for /feedback.
func handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		renderTemplate(w, r, "feedback.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		accountID := ""
		if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
			accountID = sess.AccountID
		}

		input := orchestrators.SubmitFeedbackInput{
			AccountID: accountID,
			Category:  r.FormValue("Category"),
			Message:   r.FormValue("Message"),
		}
		deps := orchestrators.SubmitFeedbackDeps{
			FeedbackStore: stores.FeedbackStore,
		}

		if _, err := orchestrators.ExecuteSubmitFeedback(r.Context(), input, deps); err != nil {
			renderTemplate(w, r, "feedback.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		renderTemplate(w, r, "feedback.html", map[string]any{
			"CSRFToken": csrf.Token(r),
			"Submitted": true,
		})
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleChildren handles POST /children — register a learner profile.
func handleChildren(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	grade, err := strconv.Atoi(r.FormValue("Grade"))
	if err != nil {
		http.Error(w, "Grade must be a number", http.StatusBadRequest)
		return
	}

	input := orchestrators.RegisterChildInput{
		AccountID: sess.AccountID,
		Name:      r.FormValue("Name"),
		Grade:     grade,
		Subject:   r.FormValue("Subject"),
	}
	deps := orchestrators.RegisterChildDeps{ChildStore: stores.ChildStore}

	if _, err := orchestrators.ExecuteRegisterChild(r.Context(), input, deps); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleArchiveChild handles POST /children/{id}/archive.
func handleArchiveChild(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	deps := orchestrators.RegisterChildDeps{ChildStore: stores.ChildStore}
	if err := orchestrators.ExecuteArchiveChild(r.Context(), r.PathValue("id"), sess.AccountID, deps); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleActivate handles GET /activate?token=... — account activation links
// from the welcome email.
func handleActivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	deps := orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		Sender:       emailSender,
		BaseURL:      appBaseURL,
	}
	if err := orchestrators.ExecuteActivateAccount(r.Context(), token, deps); err != nil {
		renderTemplate(w, r, "activate.html", map[string]any{
			"Error": err.Error(),
		})
		return
	}

	renderTemplate(w, r, "activate.html", map[string]any{
		"Activated": true,
	})
}
