package deliver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes for the two Gmail delivery paths.
const (
	scopeMailFull  = "https://mail.google.com/"
	scopeGmailSend = "https://www.googleapis.com/auth/gmail.send"
)

// xoauth2Auth implements the SMTP XOAUTH2 mechanism. The initial
// response carries the user and bearer token in the SASL form Gmail
// expects.
type xoauth2Auth struct {
	user  string
	token string
}

func (a *xoauth2Auth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, errors.New("xoauth2: connection is not encrypted")
	}
	resp := fmt.Sprintf("user=%s\x01auth=Bearer %s\x01\x01", a.user, a.token)
	return "XOAUTH2", []byte(resp), nil
}

func (a *xoauth2Auth) Next(fromServer []byte, more bool) ([]byte, error) {
	if more {
		// The server sent an error blob; an empty reply makes it
		// finish with the SMTP status.
		return []byte(""), nil
	}
	return nil, nil
}

// loadOAuthConfig reads an OAuth client credentials file for the
// given scope.
func loadOAuthConfig(path, scope string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read Gmail credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, scope)
	if err != nil {
		return nil, fmt.Errorf("parse Gmail credentials: %w", err)
	}
	return cfg, nil
}

// freshToken loads the cached token, refreshing and re-persisting it
// when expired. Tokens are provisioned out of band; a missing token
// file is an error.
func freshToken(ctx context.Context, cfg *oauth2.Config, tokenPath string) (*oauth2.Token, error) {
	token, err := loadToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("load Gmail token from %s: %w", tokenPath, err)
	}
	if token.Valid() {
		return token, nil
	}

	refreshed, err := cfg.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh Gmail token: %w", err)
	}
	if refreshed.AccessToken != token.AccessToken {
		if err := saveToken(tokenPath, refreshed); err != nil {
			return nil, fmt.Errorf("save refreshed Gmail token: %w", err)
		}
	}
	return refreshed, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
