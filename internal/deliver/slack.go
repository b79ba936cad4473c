package deliver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// slackMaxLength is the message size Slack webhooks accept without
// truncating.
const slackMaxLength = 3000

const slackHTTPTimeout = 10 * time.Second

// SlackSink posts the report to an incoming webhook. Reports over the
// message limit are split at section boundaries and sent as numbered
// parts.
type SlackSink struct {
	WebhookURL string
	Progress   io.Writer

	client *http.Client
}

// NewSlack builds a Slack webhook sink.
func NewSlack(webhookURL string, progress io.Writer) *SlackSink {
	return &SlackSink{
		WebhookURL: webhookURL,
		Progress:   progress,
		client:     &http.Client{Timeout: slackHTTPTimeout},
	}
}

// Describe identifies the sink without echoing the webhook URL, which
// carries a secret token.
func (s *SlackSink) Describe() string {
	return "Slack webhook"
}

// Send posts the report, splitting into parts when it is too long for
// a single message.
func (s *SlackSink) Send(ctx context.Context, report string) error {
	if len(report) <= slackMaxLength {
		if err := s.post(ctx, report); err != nil {
			return err
		}
	} else {
		chunks := splitReport(report, slackMaxLength)
		for i, chunk := range chunks {
			if len(chunks) > 1 {
				chunk = fmt.Sprintf("*Part %d/%d*\n\n", i+1, len(chunks)) + chunk
			}
			if err := s.post(ctx, chunk); err != nil {
				return err
			}
		}
	}
	progressf(s.Progress, "Posted to Slack webhook")
	return nil
}

func (s *SlackSink) post(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]any{"text": text, "mrkdwn": true})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

// splitReport cuts the report at "---" section boundaries, greedily
// packing sections while they fit under maxLength.
func splitReport(report string, maxLength int) []string {
	sections := strings.Split(report, "\n---\n")

	var chunks []string
	current := sections[0]
	for _, section := range sections[1:] {
		if len(current)+len(section)+10 < maxLength {
			current += "\n---\n" + section
		} else {
			chunks = append(chunks, current)
			current = section
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
