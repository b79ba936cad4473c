// Package config manages application configuration.
package config

import (
	"errors"
	"fmt"

	"github.com/roboco-io/ghdigest/internal/report"
)

// Config represents the application configuration.
type Config struct {
	DefaultProvider string              `yaml:"default_provider"`
	Providers       map[string]Provider `yaml:"providers"`
	Digest          DigestConfig        `yaml:"digest"`
	Outputs         OutputConfig        `yaml:"outputs"`
}

// Provider represents an LLM provider configuration.
type Provider struct {
	APIKey    string `yaml:"api_key,omitempty"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	Endpoint  string `yaml:"endpoint,omitempty"` // for Ollama or proxy endpoints
}

// DigestConfig selects which repositories and PRs the digest covers.
type DigestConfig struct {
	Repos          []string `yaml:"repos"`
	Labels         []string `yaml:"labels"`
	Usernames      []string `yaml:"usernames"`
	TimeRange      string   `yaml:"time_range"`
	GitHubUsername string   `yaml:"github_username"`
}

// OutputConfig lists the delivery destinations.
type OutputConfig struct {
	Files         []string `yaml:"files"`
	SlackWebhooks []string `yaml:"slack_webhooks"`
	Emails        []string `yaml:"emails"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultProvider: "anthropic",
		Providers: map[string]Provider{
			"anthropic": {
				APIKey:    "${ANTHROPIC_API_KEY}",
				Model:     "claude-sonnet-4-5-20250929",
				MaxTokens: 2000,
			},
			"openai": {
				APIKey:    "${OPENAI_API_KEY}",
				Model:     "gpt-4o-mini",
				MaxTokens: 2000,
			},
			"gemini": {
				APIKey:    "${GEMINI_API_KEY}",
				Model:     "gemini-2.5-flash",
				MaxTokens: 2000,
			},
			"ollama": {
				Endpoint:  "http://localhost:11434",
				Model:     "llama3.2",
				MaxTokens: 2000,
			},
		},
		Digest: DigestConfig{
			TimeRange: "24h",
		},
	}
}

// Validate checks the fields a digest run requires.
func (c *Config) Validate() error {
	if len(c.Digest.Repos) == 0 {
		return errors.New("no repositories configured (set digest.repos or pass --repos)")
	}
	if len(c.Outputs.Files) == 0 && len(c.Outputs.SlackWebhooks) == 0 && len(c.Outputs.Emails) == 0 {
		return errors.New("no output destination configured (use --file, --slack, or --email)")
	}
	if _, err := report.ParseWindow(c.Digest.TimeRange); err != nil {
		return fmt.Errorf("invalid time_range: %w", err)
	}
	return nil
}

// GetProvider returns the provider configuration by name.
func (c *Config) GetProvider(name string) (*Provider, bool) {
	p, ok := c.Providers[name]
	if !ok {
		return nil, false
	}
	return &p, true
}

// GetDefaultProvider returns the default provider configuration.
func (c *Config) GetDefaultProvider() (*Provider, bool) {
	return c.GetProvider(c.DefaultProvider)
}
