package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Defaults for a local Ollama server.
const (
	DefaultOllamaEndpoint = "http://localhost:11434"
	DefaultOllamaModel    = "llama3.2"
)

// OllamaProvider summarizes through a local Ollama server using its
// OpenAI-compatible endpoint. No API key is required.
type OllamaProvider struct {
	client   *openai.Client
	endpoint string
	model    string
}

// NewOllama builds the provider. Empty endpoint and model fall back to
// the local defaults.
func NewOllama(endpoint, model string) *OllamaProvider {
	if endpoint == "" {
		endpoint = DefaultOllamaEndpoint
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	cfg := openai.DefaultConfig("ollama")
	cfg.BaseURL = strings.TrimSuffix(endpoint, "/") + "/v1"
	return &OllamaProvider{
		client:   openai.NewClientWithConfig(cfg),
		endpoint: endpoint,
		model:    model,
	}
}

// Name returns "ollama".
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Validate checks that an endpoint is configured. Reachability is only
// known at request time.
func (p *OllamaProvider) Validate() error {
	if p.endpoint == "" {
		return errors.New("ollama: endpoint not set")
	}
	return nil
}

// Summarize sends the prompt as a single user message.
func (p *OllamaProvider) Summarize(ctx context.Context, req SummaryRequest, opts SummarizeOptions) (*SummaryResult, error) {
	model := chooseModel(opts.Model, p.model)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: tokenBudget(opts.MaxTokens),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: %w (is the server running at %s?)", err, p.endpoint)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("ollama: empty response")
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
