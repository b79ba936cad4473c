package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when neither config nor flags pick a
// model.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider summarizes through the OpenAI chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAI builds the provider. A non-empty endpoint overrides the
// API base URL.
func NewOpenAI(apiKey, model, endpoint string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		model:  model,
	}
}

// Name returns "openai".
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Validate checks that an API key is configured.
func (p *OpenAIProvider) Validate() error {
	if p.apiKey == "" {
		return errors.New("openai: API key not set (set OPENAI_API_KEY or providers.openai.api_key)")
	}
	return nil
}

// Summarize sends the prompt as a single user message.
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummaryRequest, opts SummarizeOptions) (*SummaryResult, error) {
	model := chooseModel(opts.Model, p.model)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: tokenBudget(opts.MaxTokens),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty response")
	}

	return &SummaryResult{
		Text:  resp.Choices[0].Message.Content,
		Model: model,
		Usage: TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}
