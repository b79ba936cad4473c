package deliver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestEmailSink_Describe(t *testing.T) {
	sink := NewEmail("dev@example.com", nil)
	if got := sink.Describe(); got != "email dev@example.com" {
		t.Errorf("unexpected description: %q", got)
	}
}

func TestEmailSink_SMTPMissingCredentials(t *testing.T) {
	sink := NewEmail("dev@example.com", nil)
	sink.env = fakeEnv(nil)

	err := sink.Send(context.Background(), "report")
	if err == nil {
		t.Fatal("expected error without SMTP credentials")
	}
	if !strings.Contains(err.Error(), "SMTP credentials not configured") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEmailSink_UnknownMethodFallsBackToSMTP(t *testing.T) {
	sink := NewEmail("dev@example.com", nil)
	sink.env = fakeEnv(map[string]string{"EMAIL_METHOD": "carrier-pigeon"})

	err := sink.Send(context.Background(), "report")
	if err == nil || !strings.Contains(err.Error(), "SMTP credentials not configured") {
		t.Errorf("expected the SMTP path for unknown methods, got %v", err)
	}
}

func TestEmailSink_SMTPOAuthMissingCredentials(t *testing.T) {
	sink := NewEmail("dev@example.com", nil)
	sink.env = fakeEnv(map[string]string{"EMAIL_METHOD": "smtp-oauth"})

	err := sink.Send(context.Background(), "report")
	if err == nil || !strings.Contains(err.Error(), "GMAIL_CREDENTIALS_PATH") {
		t.Errorf("expected missing credentials error, got %v", err)
	}
}

func TestEmailSink_GmailAPIMissingCredentials(t *testing.T) {
	sink := NewEmail("dev@example.com", nil)
	sink.env = fakeEnv(map[string]string{"EMAIL_METHOD": "gmail-api"})

	err := sink.Send(context.Background(), "report")
	if err == nil || !strings.Contains(err.Error(), "GMAIL_CREDENTIALS_PATH") {
		t.Errorf("expected missing credentials error, got %v", err)
	}
}

func TestEmailSink_GmailAPI(t *testing.T) {
	dir := t.TempDir()
	credsPath := filepath.Join(dir, "credentials.json")
	tokenPath := filepath.Join(dir, "token.json")

	creds := `{"installed":{"client_id":"test-client","client_secret":"shh","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	if err := os.WriteFile(credsPath, []byte(creds), 0o600); err != nil {
		t.Fatal(err)
	}
	token := `{"access_token":"tok","token_type":"Bearer","refresh_token":"r","expiry":"2099-01-01T00:00:00Z"}`
	if err := os.WriteFile(tokenPath, []byte(token), 0o600); err != nil {
		t.Fatal(err)
	}

	var gotAuth, gotRaw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var payload struct {
			Raw string `json:"raw"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		gotRaw = payload.Raw
		fmt.Fprint(w, `{"id":"1"}`)
	}))
	defer srv.Close()

	sink := NewEmail("dev@example.com", nil)
	sink.env = fakeEnv(map[string]string{
		"EMAIL_METHOD":           "gmail-api",
		"GMAIL_CREDENTIALS_PATH": credsPath,
		"GMAIL_TOKEN_PATH":       tokenPath,
	})
	sink.now = func() time.Time { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) }
	sink.gmailEndpoint = srv.URL

	if err := sink.Send(context.Background(), "# GitHub Summary\n\nHello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer tok" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	msg, err := base64.URLEncoding.DecodeString(gotRaw)
	if err != nil {
		t.Fatalf("raw field is not base64url: %v", err)
	}
	text := string(msg)
	if !strings.Contains(text, "To: dev@example.com") {
		t.Error("message missing recipient header")
	}
	if !strings.Contains(text, "Subject: GitHub Summary - 2026-08-25") {
		t.Error("message missing subject header")
	}
	if !strings.Contains(text, "Hello") {
		t.Error("message missing report body")
	}
}

func TestEmailSink_GmailAPIServerError(t *testing.T) {
	dir := t.TempDir()
	credsPath := filepath.Join(dir, "credentials.json")
	tokenPath := filepath.Join(dir, "token.json")

	creds := `{"installed":{"client_id":"test-client","client_secret":"shh","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	if err := os.WriteFile(credsPath, []byte(creds), 0o600); err != nil {
		t.Fatal(err)
	}
	token := `{"access_token":"tok","token_type":"Bearer","refresh_token":"r","expiry":"2099-01-01T00:00:00Z"}`
	if err := os.WriteFile(tokenPath, []byte(token), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient scope", http.StatusForbidden)
	}))
	defer srv.Close()

	sink := NewEmail("dev@example.com", nil)
	sink.env = fakeEnv(map[string]string{
		"EMAIL_METHOD":           "gmail-api",
		"GMAIL_CREDENTIALS_PATH": credsPath,
		"GMAIL_TOKEN_PATH":       tokenPath,
	})
	sink.gmailEndpoint = srv.URL

	err := sink.Send(context.Background(), "report")
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "insufficient scope") {
		t.Errorf("expected status and body in error, got %v", err)
	}
}
