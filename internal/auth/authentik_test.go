package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRoleForGroups(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		want   string
	}{
		{"no groups", nil, "spectator"},
		{"unrelated groups", []string{"staff", "billing"}, "spectator"},
		{"operator", []string{"arcade-operators"}, "operator"},
		{"admin", []string{"arcade-admins"}, "admin"},
		{"admin outranks operator", []string{"arcade-operators", "arcade-admins"}, "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roleForGroups(tt.groups); got != tt.want {
				t.Errorf("roleForGroups(%v) = %s, want %s", tt.groups, got, tt.want)
			}
		})
	}
}

func TestRolePredicates(t *testing.T) {
	if IsAdmin(nil) || IsOperator(nil) {
		t.Error("nil user must have no privileges")
	}

	spectator := &User{Role: "spectator"}
	if IsAdmin(spectator) || IsOperator(spectator) {
		t.Error("spectator must not hold console privileges")
	}

	operator := &User{Role: "operator"}
	if IsAdmin(operator) {
		t.Error("operator must not be admin")
	}
	if !IsOperator(operator) {
		t.Error("operator must hold the operator privilege")
	}

	admin := &User{Role: "admin"}
	if !IsAdmin(admin) || !IsOperator(admin) {
		t.Error("admin must hold both privileges")
	}
}

func TestMockAuthLoginSetsArcadeSession(t *testing.T) {
	m := NewMockAuth()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/auth/login", nil)
	m.LoginHandler(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", w.Code, http.StatusSeeOther)
	}

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatalf("login did not set the %s cookie", sessionCookie)
	}

	// The session must pass the middleware and carry an admin-role user.
	var seen *User
	protected := m.Middleware(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r)
	})

	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest("POST", "/api/games/start", nil)
	r2.AddCookie(session)
	protected(w2, r2)

	if seen == nil {
		t.Fatal("middleware did not put the user on the request context")
	}
	if !IsAdmin(seen) {
		t.Errorf("dev session role = %s, want admin", seen.Role)
	}
	if seen.Username != "console" {
		t.Errorf("dev session username = %s, want console", seen.Username)
	}
}

func TestMockAuthMiddlewareRejectsAnonymous(t *testing.T) {
	m := NewMockAuth()

	called := false
	protected := m.Middleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/games/start", nil)
	protected(w, r)

	if called {
		t.Error("handler must not run without a session")
	}
	if w.Code != http.StatusSeeOther {
		t.Errorf("anonymous request status = %d, want redirect %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/auth/login" {
		t.Errorf("redirect location = %s, want /auth/login", loc)
	}
}

func TestMockAuthLogoutInvalidatesSession(t *testing.T) {
	m := NewMockAuth()

	w := httptest.NewRecorder()
	m.LoginHandler(w, httptest.NewRequest("GET", "/auth/login", nil))

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("login did not set a session cookie")
	}

	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest("GET", "/auth/logout", nil)
	r2.AddCookie(session)
	m.LogoutHandler(w2, r2)

	// The old cookie no longer opens the console.
	called := false
	protected := m.Middleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	w3 := httptest.NewRecorder()
	r3 := httptest.NewRequest("POST", "/api/games/start", nil)
	r3.AddCookie(session)
	protected(w3, r3)

	if called {
		t.Error("logged-out session must not pass the middleware")
	}
}
