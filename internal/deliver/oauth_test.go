package deliver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestXOAuth2_Start(t *testing.T) {
	auth := &xoauth2Auth{user: "me@example.com", token: "tok"}

	proto, resp, err := auth.Start(&smtp.ServerInfo{Name: "smtp.gmail.com", TLS: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proto != "XOAUTH2" {
		t.Errorf("expected XOAUTH2, got %q", proto)
	}
	want := "user=me@example.com\x01auth=Bearer tok\x01\x01"
	if string(resp) != want {
		t.Errorf("expected %q, got %q", want, resp)
	}
}

func TestXOAuth2_StartRequiresTLS(t *testing.T) {
	auth := &xoauth2Auth{user: "me@example.com", token: "tok"}

	if _, _, err := auth.Start(&smtp.ServerInfo{Name: "smtp.gmail.com"}); err == nil {
		t.Error("expected error on unencrypted connection")
	}
}

func TestXOAuth2_Next(t *testing.T) {
	auth := &xoauth2Auth{}

	resp, err := auth.Next([]byte("error blob"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp == nil || len(resp) != 0 {
		t.Errorf("expected empty reply to server challenge, got %v", resp)
	}

	resp, err = auth.Next(nil, false)
	if err != nil || resp != nil {
		t.Errorf("expected nil reply when done, got %v, %v", resp, err)
	}
}

func TestLoadOAuthConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	creds := `{"installed":{"client_id":"test-client","client_secret":"shh","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	if err := os.WriteFile(path, []byte(creds), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadOAuthConfig(path, scopeGmailSend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ClientID != "test-client" {
		t.Errorf("unexpected client id: %q", cfg.ClientID)
	}
	if len(cfg.Scopes) != 1 || cfg.Scopes[0] != scopeGmailSend {
		t.Errorf("unexpected scopes: %v", cfg.Scopes)
	}
}

func TestLoadOAuthConfig_MissingFile(t *testing.T) {
	if _, err := loadOAuthConfig(filepath.Join(t.TempDir(), "nope.json"), scopeGmailSend); err == nil {
		t.Error("expected error for missing credentials file")
	}
}

func TestFreshToken_ValidTokenUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	stored := `{"access_token":"tok","token_type":"Bearer","refresh_token":"r","expiry":"2099-01-01T00:00:00Z"}`
	if err := os.WriteFile(path, []byte(stored), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &oauth2.Config{ClientID: "id", ClientSecret: "secret"}
	token, err := freshToken(context.Background(), cfg, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.AccessToken != "tok" {
		t.Errorf("expected cached token, got %q", token.AccessToken)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != stored {
		t.Error("valid token file should not be rewritten")
	}
}

func TestFreshToken_RefreshesAndPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"new-tok","token_type":"Bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "token.json")
	stored := `{"access_token":"old-tok","token_type":"Bearer","refresh_token":"r","expiry":"2020-01-01T00:00:00Z"}`
	if err := os.WriteFile(path, []byte(stored), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: srv.URL},
	}
	token, err := freshToken(context.Background(), cfg, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.AccessToken != "new-tok" {
		t.Errorf("expected refreshed token, got %q", token.AccessToken)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "new-tok") {
		t.Error("refreshed token should be persisted")
	}
}

func TestFreshToken_MissingFile(t *testing.T) {
	cfg := &oauth2.Config{ClientID: "id"}

	_, err := freshToken(context.Background(), cfg, filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing token file")
	}
	if !strings.Contains(err.Error(), "load Gmail token") {
		t.Errorf("unexpected error: %v", err)
	}
}
