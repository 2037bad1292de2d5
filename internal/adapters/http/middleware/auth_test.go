package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainAccount "practicecraft/internal/domain/account"
)

// TestSessionStore_CreateGet verifies a created session round-trips by token.
func TestSessionStore_CreateGet(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create("acct-1", "parent@example.com", domainAccount.RoleParent)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if token == "" {
		t.Fatal("Create returned empty token")
	}

	sess, ok := ss.Get(token)
	if !ok {
		t.Fatal("Get returned false for fresh session")
	}
	if sess.AccountID != "acct-1" || sess.Email != "parent@example.com" || sess.Role != domainAccount.RoleParent {
		t.Errorf("session = %+v", sess)
	}
}

// TestSessionStore_Expiry verifies sessions older than 24h are rejected and removed.
func TestSessionStore_Expiry(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create("acct-1", "a@example.com", domainAccount.RoleParent)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Age the session past the expiry window.
	ss.mu.Lock()
	sess := ss.sessions[token]
	sess.CreatedAt = time.Now().Add(-25 * time.Hour)
	ss.sessions[token] = sess
	ss.mu.Unlock()

	if _, ok := ss.Get(token); ok {
		t.Error("expired session still retrievable")
	}
}

// TestSessionStore_Delete verifies deleted tokens no longer resolve.
func TestSessionStore_Delete(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("acct-1", "a@example.com", domainAccount.RoleParent)
	ss.Delete(token)
	if _, ok := ss.Get(token); ok {
		t.Error("deleted session still retrievable")
	}
}

// TestSessionStore_Update verifies in-place replacement and the missing-token case.
func TestSessionStore_Update(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("acct-1", "admin@example.com", domainAccount.RoleAdmin)

	sess, _ := ss.Get(token)
	sess.Role = domainAccount.RoleParent
	sess.RealAccountID = "acct-1"
	sess.RealEmail = "admin@example.com"
	sess.RealRole = domainAccount.RoleAdmin
	if !ss.Update(token, sess) {
		t.Fatal("Update returned false for existing token")
	}

	got, _ := ss.Get(token)
	if got.Role != domainAccount.RoleParent || !got.IsImpersonating() {
		t.Errorf("updated session = %+v", got)
	}

	if ss.Update("no-such-token", sess) {
		t.Error("Update returned true for missing token")
	}
}

// TestAuth_InjectsSession verifies the cookie is resolved into a context session.
func TestAuth_InjectsSession(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("acct-1", "a@example.com", domainAccount.RoleParent)

	var got Session
	var found bool
	handler := Auth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = GetSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "practicecraft_session", Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !found {
		t.Fatal("session not injected into context")
	}
	if got.AccountID != "acct-1" {
		t.Errorf("AccountID = %q, want acct-1", got.AccountID)
	}
}

// TestAuth_NoCookiePassesThrough verifies unauthenticated requests are not blocked by Auth.
func TestAuth_NoCookiePassesThrough(t *testing.T) {
	ss := NewSessionStore()
	called := false
	handler := Auth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := GetSessionFromContext(r.Context()); ok {
			t.Error("unexpected session in context")
		}
	}))

	req := httptest.NewRequest("GET", "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Error("handler not reached")
	}
}

// TestRequireAuth verifies redirect for anonymous and pass-through for authenticated.
func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Errorf("anonymous status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}

	ctx := ContextWithSession(context.Background(), Session{AccountID: "acct-1", Role: domainAccount.RoleParent})
	req = httptest.NewRequest("GET", "/dashboard", nil).WithContext(ctx)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", rr.Code)
	}
}

// TestRequireRole covers anonymous redirect, wrong role forbidden, matching role allowed.
func TestRequireRole(t *testing.T) {
	handler := RequireRole(domainAccount.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		session    *Session
		wantStatus int
	}{
		{"anonymous", nil, http.StatusSeeOther},
		{"wrong role", &Session{AccountID: "a", Role: domainAccount.RoleParent}, http.StatusForbidden},
		{"matching role", &Session{AccountID: "a", Role: domainAccount.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/perf", nil)
			if tt.session != nil {
				req = req.WithContext(ContextWithSession(req.Context(), *tt.session))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

// TestIsRealAdmin covers the plain-admin, impersonating-admin, and non-admin cases.
func TestIsRealAdmin(t *testing.T) {
	tests := []struct {
		name string
		sess Session
		want bool
	}{
		{"plain admin", Session{Role: domainAccount.RoleAdmin}, true},
		{"admin impersonating parent", Session{Role: domainAccount.RoleParent, RealRole: domainAccount.RoleAdmin}, true},
		{"plain parent", Session{Role: domainAccount.RoleParent}, false},
		{"parent impersonating child", Session{Role: domainAccount.RoleChild, RealRole: domainAccount.RoleParent}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithSession(context.Background(), tt.sess)
			if got := IsRealAdmin(ctx); got != tt.want {
				t.Errorf("IsRealAdmin = %v, want %v", got, tt.want)
			}
		})
	}

	if IsRealAdmin(context.Background()) {
		t.Error("IsRealAdmin = true for empty context")
	}
}

// TestSetClearSessionCookie verifies cookie attributes on set and clear.
func TestSetClearSessionCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "tok123")
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != "practicecraft_session" || c.Value != "tok123" || !c.HttpOnly {
		t.Errorf("cookie = %+v", c)
	}

	rr = httptest.NewRecorder()
	ClearSessionCookie(rr)
	cookies = rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Errorf("clear cookie = %+v", cookies)
	}
}
