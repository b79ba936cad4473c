package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when neither config nor flags pick a
// model.
const DefaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicProvider summarizes through the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	apiKey string
	model  string
}

// NewAnthropic builds the provider. A non-empty endpoint overrides
// the API base URL, which lets the tool run against proxy
// deployments.
func NewAnthropic(apiKey, model, endpoint string) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		apiKey: apiKey,
		model:  model,
	}
}

// Name returns "anthropic".
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Validate checks that an API key is configured.
func (p *AnthropicProvider) Validate() error {
	if p.apiKey == "" {
		return errors.New("anthropic: API key not set (set ANTHROPIC_API_KEY or providers.anthropic.api_key)")
	}
	return nil
}

// Summarize sends the prompt and returns the first text block of the
// response.
func (p *AnthropicProvider) Summarize(ctx context.Context, req SummaryRequest, opts SummarizeOptions) (*SummaryResult, error) {
	model := chooseModel(opts.Model, p.model)

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(tokenBudget(opts.MaxTokens)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Text != "" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, errors.New("anthropic: empty response")
	}

	return &SummaryResult{
		Text:  text,
		Model: model,
		Usage: TokenUsage{
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
			TotalTokens:  int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}
