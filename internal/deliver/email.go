package deliver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/roboco-io/ghdigest/internal/render"
)

// Supported EMAIL_METHOD values. Unknown values fall back to plain
// SMTP.
const (
	methodSMTP      = "smtp"
	methodSMTPOAuth = "smtp-oauth"
	methodGmailAPI  = "gmail-api"
)

// EmailSink sends the report to one address. The transport is picked
// by the EMAIL_METHOD environment variable.
type EmailSink struct {
	To       string
	Progress io.Writer

	env           func(string) string
	now           func() time.Time
	gmailEndpoint string
}

// NewEmail builds an email sink.
func NewEmail(to string, progress io.Writer) *EmailSink {
	return &EmailSink{
		To:            to,
		Progress:      progress,
		env:           os.Getenv,
		now:           time.Now,
		gmailEndpoint: gmailSendEndpoint,
	}
}

// Describe identifies the sink by its address.
func (s *EmailSink) Describe() string {
	return "email " + s.To
}

// Send delivers the report with the configured method.
func (s *EmailSink) Send(ctx context.Context, report string) error {
	var err error
	switch strings.ToLower(s.getenv("EMAIL_METHOD")) {
	case methodGmailAPI:
		err = s.sendGmailAPI(ctx, report)
	case methodSMTPOAuth:
		err = s.sendSMTPOAuth(ctx, report)
	default:
		err = s.sendSMTP(ctx, report)
	}
	if err != nil {
		return err
	}
	progressf(s.Progress, "Email sent to: %s", s.To)
	return nil
}

// sendSMTP sends through a plain SMTP relay with STARTTLS and
// password auth.
func (s *EmailSink) sendSMTP(ctx context.Context, report string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	host := s.envOr("SMTP_HOST", "smtp.gmail.com")
	port := s.envOr("SMTP_PORT", "587")
	user := s.getenv("SMTP_USER")
	password := s.getenv("SMTP_PASSWORD")
	from := s.envOr("SMTP_FROM", user)

	if user == "" || password == "" {
		return errors.New("SMTP credentials not configured (set SMTP_USER and SMTP_PASSWORD)")
	}

	msg, err := buildMessage(from, s.To, s.subject(), report, render.HTML(report))
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	auth := smtp.PlainAuth("", user, password, host)
	if err := smtp.SendMail(net.JoinHostPort(host, port), auth, from, []string{s.To}, msg); err != nil {
		return fmt.Errorf("send via %s: %w", host, err)
	}
	return nil
}

// sendSMTPOAuth sends through Gmail SMTP authenticating with an
// OAuth2 token instead of a password.
func (s *EmailSink) sendSMTPOAuth(ctx context.Context, report string) error {
	credsPath := s.getenv("GMAIL_CREDENTIALS_PATH")
	if credsPath == "" {
		return errors.New("Gmail OAuth credentials not configured (set GMAIL_CREDENTIALS_PATH)")
	}
	tokenPath := s.envOr("GMAIL_TOKEN_PATH", "gmail_token.json")

	cfg, err := loadOAuthConfig(credsPath, scopeMailFull)
	if err != nil {
		return err
	}
	token, err := freshToken(ctx, cfg, tokenPath)
	if err != nil {
		return err
	}

	from := s.envOr("SMTP_FROM", cfg.ClientID)
	msg, err := buildMessage(from, s.To, s.subject(), report, render.HTML(report))
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	auth := &xoauth2Auth{user: from, token: token.AccessToken}
	if err := smtp.SendMail("smtp.gmail.com:587", auth, from, []string{s.To}, msg); err != nil {
		return fmt.Errorf("send via smtp.gmail.com: %w", err)
	}
	return nil
}

func (s *EmailSink) subject() string {
	return "GitHub Summary - " + s.timeNow().UTC().Format("2006-01-02")
}

func (s *EmailSink) getenv(key string) string {
	if s.env != nil {
		return s.env(key)
	}
	return os.Getenv(key)
}

func (s *EmailSink) envOr(key, fallback string) string {
	if v := s.getenv(key); v != "" {
		return v
	}
	return fallback
}

func (s *EmailSink) timeNow() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
