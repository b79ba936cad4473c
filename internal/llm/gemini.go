package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when neither config nor flags pick a
// model.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider summarizes through the Google Gemini API.
type GeminiProvider struct {
	apiKey string
	model  string
}

// NewGemini builds the provider.
func NewGemini(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{apiKey: apiKey, model: model}
}

// Name returns "gemini".
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Validate checks that an API key is configured.
func (p *GeminiProvider) Validate() error {
	if p.apiKey == "" {
		return errors.New("gemini: API key not set (set GEMINI_API_KEY or providers.gemini.api_key)")
	}
	return nil
}

// Summarize sends the prompt as a single user turn. The genai client
// is built per call.
func (p *GeminiProvider) Summarize(ctx context.Context, req SummaryRequest, opts SummarizeOptions) (*SummaryResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	model := chooseModel(opts.Model, p.model)

	resp, err := client.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromText(BuildPrompt(req), genai.RoleUser)},
		&genai.GenerateContentConfig{MaxOutputTokens: int32(tokenBudget(opts.MaxTokens))},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("gemini: empty response")
	}

	result := &SummaryResult{Text: text, Model: model}
	if resp.UsageMetadata != nil {
		result.Usage = TokenUsage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return result, nil
}
