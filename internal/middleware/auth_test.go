package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/featherbook/featherbook/internal/auth"
	"github.com/featherbook/featherbook/internal/model"
)

const testSecret = "middleware-test-secret-32-bytes!!"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTokenManager(t *testing.T, now func() time.Time) *auth.TokenManager {
	t.Helper()
	opts := []auth.TokenOption{auth.WithTTL(time.Hour)}
	if now != nil {
		opts = append(opts, auth.WithClock(now))
	}
	m, err := auth.NewTokenManager([]byte(testSecret), opts...)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	return m
}

func TestAuth(t *testing.T) {
	t.Parallel()

	tokens := newTokenManager(t, nil)
	valid, _, err := tokens.Issue("user-1", "alice", "user")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	past := time.Now().Add(-2 * time.Hour)
	expired, _, err := newTokenManager(t, func() time.Time { return past }).Issue("user-1", "alice", "user")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantMessage string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "Missing bearer token"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "Missing bearer token"},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized, "Invalid token"},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, "Token has expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var userID string
			handler := Auth(AuthConfig{Logger: discardLogger(), Tokens: tokens})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				userID = auth.UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if userID != "user-1" {
					t.Errorf("user id in context = %q, want user-1", userID)
				}
				return
			}
			if !strings.Contains(rec.Body.String(), tt.wantMessage) {
				t.Errorf("body = %s, want message %q", rec.Body.String(), tt.wantMessage)
			}
			if rec.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("expected WWW-Authenticate header")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		claims     *auth.Claims
		wantStatus int
	}{
		{"admin allowed", &auth.Claims{UserID: "u1", Role: "admin"}, http.StatusOK},
		{"user forbidden", &auth.Claims{UserID: "u2", Role: "user"}, http.StatusForbidden},
		{"unauthenticated", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := RequireRole(discardLogger(), model.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			if tt.claims != nil {
				req = req.WithContext(auth.ContextWithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
