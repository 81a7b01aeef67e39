//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

const password = "E2e!Passw0rd"

type authResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

type attachmentResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Type   string `json:"type"`
	NoteID string `json:"note_id"`
}

type noteResponse struct {
	ID          string               `json:"id"`
	Content     string               `json:"content"`
	Attachments []attachmentResponse `json:"attachments"`
}

type synthesisResponse struct {
	ID     string  `json:"id"`
	URL    string  `json:"url"`
	NoteID *string `json:"note_id"`
	Title  *string `json:"title"`
}

// TestE2ESmoke drives a running server: register, create a note with an
// attachment, attach a synthesis, search it, then cascade delete.
func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("FEATHERBOOK_BASE_URL", "http://localhost:8080")
	waitForReady(t, baseURL)

	user := register(t, baseURL, fmt.Sprintf("e2e%d", time.Now().UnixNano()))
	token := login(t, baseURL, user.Username)

	note := createNote(t, baseURL, token)

	var fetched noteResponse
	if status := doJSON(t, http.MethodGet, baseURL+"/api/v1/notes/"+note.ID, token, nil, &fetched); status != http.StatusOK {
		t.Fatalf("expected 200 from note get, got %d", status)
	}
	if len(fetched.Attachments) != 1 || fetched.Attachments[0].NoteID != note.ID {
		t.Fatalf("unexpected attachments: %+v", fetched.Attachments)
	}

	title := "E2E Summary " + note.ID
	var syn synthesisResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/syntheses", token, map[string]any{
		"url":          "https://files.example.com/e2e.pdf",
		"is_generated": true,
		"note_id":      note.ID,
		"title":        title,
	}, &syn)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from synthesis create, got %d", status)
	}

	var found []synthesisResponse
	if status := doJSON(t, http.MethodGet, baseURL+"/api/v1/syntheses?q=e2e+summary", token, nil, &found); status != http.StatusOK {
		t.Fatalf("expected 200 from synthesis search, got %d", status)
	}
	if !containsSynthesis(found, syn.ID) {
		t.Fatalf("search did not return synthesis %s", syn.ID)
	}

	var linked []synthesisResponse
	if status := doJSON(t, http.MethodGet, baseURL+"/api/v1/notes/"+note.ID+"/syntheses", token, nil, &linked); status != http.StatusOK {
		t.Fatalf("expected 200 from note syntheses, got %d", status)
	}
	if !containsSynthesis(linked, syn.ID) {
		t.Fatalf("note syntheses did not include %s", syn.ID)
	}

	if status := doJSON(t, http.MethodDelete, baseURL+"/api/v1/notes/"+note.ID, token, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 from note delete, got %d", status)
	}
	if status := doJSON(t, http.MethodGet, baseURL+"/api/v1/notes/"+note.ID, token, nil, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

// TestE2EUnauthorized checks that protected routes reject missing and
// tampered tokens.
func TestE2EUnauthorized(t *testing.T) {
	baseURL := envOrDefault("FEATHERBOOK_BASE_URL", "http://localhost:8080")
	waitForReady(t, baseURL)

	if status := doJSON(t, http.MethodGet, baseURL+"/api/v1/notes", "", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	user := register(t, baseURL, fmt.Sprintf("e2e%d", time.Now().UnixNano()))
	tampered := user.Token[:len(user.Token)-2] + "xx"
	if status := doJSON(t, http.MethodGet, baseURL+"/api/v1/auth/me", tampered, nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 with tampered token, got %d", status)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func waitForReady(t *testing.T, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/readyz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("server at %s did not become ready", baseURL)
}

func register(t *testing.T, baseURL, username string) authResponse {
	t.Helper()

	var resp authResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d", status)
	}
	if resp.Token == "" {
		t.Fatalf("register response missing token")
	}
	return resp
}

func login(t *testing.T, baseURL, username string) string {
	t.Helper()

	var resp authResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d", status)
	}
	return resp.Token
}

func createNote(t *testing.T, baseURL, token string) noteResponse {
	t.Helper()

	payload := map[string]any{
		"content": "e2e note",
		"attachments": []map[string]string{
			{"url": "https://files.example.com/e2e.mp3", "type": "Audio"},
		},
	}

	var resp noteResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/notes", token, payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from note create, got %d", status)
	}
	if resp.ID == "" {
		t.Fatalf("note create response missing id")
	}
	return resp
}

func containsSynthesis(list []synthesisResponse, id string) bool {
	for _, s := range list {
		if s.ID == id {
			return true
		}
	}
	return false
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode
}
