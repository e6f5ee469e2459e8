package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zaktec/haibl-sub000/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("s3cret")
	tok, err := a.IssueJWT("6", "student")
	if err != nil {
		t.Fatal(err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if c.Sub != "6" || c.Role != "student" {
		t.Fatalf("claims = %+v", c)
	}

	if _, err := NewAuthService("other").Parse(tok); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
	if _, err := a.Parse("not.a.token"); err == nil {
		t.Fatal("garbage accepted")
	}
}

func TestParseRejectsMissingRole(t *testing.T) {
	a := NewAuthService("s3cret")
	tok, err := a.IssueJWT("6", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Parse(tok); err == nil {
		t.Fatal("token without role accepted")
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("s3cret")
	var gotSub, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	tok, _ := a.IssueJWT("12", "tutor")
	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer " + tok, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.code {
				t.Fatalf("code = %d, want %d", rr.Code, tt.code)
			}
			if tt.code == http.StatusUnauthorized && rr.Header().Get("Content-Type") != "application/json" {
				t.Fatalf("401 content type = %q", rr.Header().Get("Content-Type"))
			}
		})
	}
	if gotSub != "12" || gotRole != "tutor" {
		t.Fatalf("context = %q/%q", gotSub, gotRole)
	}
}
