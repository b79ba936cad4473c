// Package llm defines the summarization provider interface, the
// provider registry, and the backends the digest can summarize with.
package llm

import "context"

// FallbackText stands in for a summary when a provider call fails.
// The digest keeps going and the report points readers at the PR
// description instead.
const FallbackText = "Error generating summary. See PR description for details."

// defaultMaxTokens is the response budget used when none is
// configured.
const defaultMaxTokens = 2000

// Provider is the interface every summarization backend implements.
type Provider interface {
	// Name returns the provider identifier (e.g. "anthropic", "ollama").
	Name() string

	// Summarize produces a markdown summary of one pull request.
	Summarize(ctx context.Context, req SummaryRequest, opts SummarizeOptions) (*SummaryResult, error)

	// Validate checks the provider configuration. It must not make
	// network calls.
	Validate() error
}

// SummaryRequest carries the pull request fields the prompt is built
// from.
type SummaryRequest struct {
	Repository string
	Title      string
	Body       string
	Files      []string
}

// SummarizeOptions tunes a single Summarize call.
type SummarizeOptions struct {
	Model     string `json:"model,omitempty"`      // overrides the provider default
	MaxTokens int    `json:"max_tokens,omitempty"` // response budget
}

// SummaryResult is a completed summary with usage accounting.
type SummaryResult struct {
	Text  string     `json:"text"`
	Usage TokenUsage `json:"usage"`
	Model string     `json:"model"`
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// DefaultSummarizeOptions returns the options a digest run starts
// from.
func DefaultSummarizeOptions() SummarizeOptions {
	return SummarizeOptions{MaxTokens: defaultMaxTokens}
}

// chooseModel prefers the per-call override over the configured
// model.
func chooseModel(override, configured string) string {
	if override != "" {
		return override
	}
	return configured
}

// tokenBudget clamps the response budget to the default when unset.
func tokenBudget(requested int) int {
	if requested <= 0 {
		return defaultMaxTokens
	}
	return requested
}
