package deliver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const gmailSendEndpoint = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"

// sendGmailAPI sends the report through the Gmail REST API as the
// authorized user.
func (s *EmailSink) sendGmailAPI(ctx context.Context, report string) error {
	credsPath := s.getenv("GMAIL_CREDENTIALS_PATH")
	if credsPath == "" {
		return errors.New("Gmail credentials not configured (set GMAIL_CREDENTIALS_PATH)")
	}
	tokenPath := s.envOr("GMAIL_TOKEN_PATH", "gmail_token.json")

	cfg, err := loadOAuthConfig(credsPath, scopeGmailSend)
	if err != nil {
		return err
	}
	token, err := freshToken(ctx, cfg, tokenPath)
	if err != nil {
		return err
	}

	msg, err := buildPlainMessage(s.To, s.subject(), report)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	payload, err := json.Marshal(map[string]string{
		"raw": base64.URLEncoding.EncodeToString(msg),
	})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	endpoint := s.gmailEndpoint
	if endpoint == "" {
		endpoint = gmailSendEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cfg.Client(ctx, token).Do(req)
	if err != nil {
		return fmt.Errorf("send via Gmail API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gmail API returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}
