package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gestion/authsvc/internal/auth"
)

func newTestAuthConfig(buf *bytes.Buffer) (AuthConfig, *auth.TokenIssuer) {
	tokens := auth.NewTokenIssuer("middleware-test-secret", "authsvc-test", time.Hour, 24*time.Hour)
	return AuthConfig{
		Logger: slog.New(slog.NewJSONHandler(buf, nil)),
		Tokens: tokens,
	}, tokens
}

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac := auth.AuthFromContext(r.Context())
		if ac == nil {
			t.Error("auth context missing")
			return
		}
		w.Header().Set("X-User", ac.UserID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAccess(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cfg, tokens := newTestAuthConfig(&buf)

	access, _ := tokens.IssueAccess(auth.AccessGrant{UserID: "user-1", BranchID: 4})
	refresh, _ := tokens.IssueRefresh("user-1")
	foreign, _ := auth.NewTokenIssuer("other-secret", "authsvc-test", time.Hour, time.Hour).IssueAccess(auth.AccessGrant{UserID: "user-1"})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid access token", "Bearer " + access, http.StatusOK},
		{"lowercase scheme", "bearer " + access, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + access, http.StatusUnauthorized},
		{"refresh token rejected", "Bearer " + refresh, http.StatusUnauthorized},
		{"foreign signature", "Bearer " + foreign, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			RequireAccess(cfg)(okHandler(t)).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if got := rec.Header().Get("X-User"); got != "user-1" {
					t.Errorf("user = %q, want user-1", got)
				}
				return
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["code"] != "UNAUTHORIZED" || body["error"] == "" {
				t.Errorf("unexpected error body: %v", body)
			}
		})
	}
}

func TestRequireRefresh(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cfg, tokens := newTestAuthConfig(&buf)

	access, _ := tokens.IssueAccess(auth.AccessGrant{UserID: "user-1"})
	refresh, _ := tokens.IssueRefresh("user-1")

	for _, tc := range []struct {
		token string
		want  int
	}{
		{refresh, http.StatusOK},
		{access, http.StatusUnauthorized},
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		req.Header.Set("Authorization", "Bearer "+tc.token)
		rec := httptest.NewRecorder()

		RequireRefresh(cfg)(okHandler(t)).ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Errorf("status = %d, want %d", rec.Code, tc.want)
		}
	}
}

func TestRequireAccess_DoesNotLogToken(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cfg, _ := newTestAuthConfig(&buf)

	const secret = "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.bad"
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+secret)
	rec := httptest.NewRecorder()

	RequireAccess(cfg)(okHandler(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if bytes.Contains(buf.Bytes(), []byte(secret)) {
		t.Error("token leaked into logs")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"reason":"invalid_token"`)) {
		t.Errorf("expected invalid_token reason, got %s", buf.String())
	}
}
