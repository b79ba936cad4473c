package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/roboco-io/ghdigest/internal/llm"
	"github.com/spf13/cobra"
)

type providerInfo struct {
	Name         string
	DefaultModel string
	EnvKey       string
	Description  string
}

var knownProviders = []providerInfo{
	{
		Name:         "anthropic",
		DefaultModel: llm.DefaultAnthropicModel,
		EnvKey:       "ANTHROPIC_API_KEY",
		Description:  "Anthropic Claude API",
	},
	{
		Name:         "openai",
		DefaultModel: llm.DefaultOpenAIModel,
		EnvKey:       "OPENAI_API_KEY",
		Description:  "OpenAI GPT API",
	},
	{
		Name:         "gemini",
		DefaultModel: llm.DefaultGeminiModel,
		EnvKey:       "GEMINI_API_KEY",
		Description:  "Google Gemini API",
	},
	{
		Name:         "ollama",
		DefaultModel: llm.DefaultOllamaModel,
		EnvKey:       "",
		Description:  "Local Ollama server",
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the available LLM providers",
	Long: `List the LLM providers available for PR summarization.

Each provider needs its API key in the named environment variable
(referenced from the config via ${VAR} placeholders). Ollama runs
locally and needs no key.

Examples:
  ghdigest run --provider anthropic --repos owner/repo --file report.md
  ghdigest run --provider openai --model gpt-4o --repos owner/repo --file report.md`,
	Run: runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "PROVIDER\tDEFAULT MODEL\tENV KEY\tSTATUS\tDESCRIPTION")
	fmt.Fprintln(w, "--------\t-------------\t-------\t------\t-----------")

	for _, p := range knownProviders {
		envKey := p.EnvKey
		if envKey == "" {
			envKey = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.Name, p.DefaultModel, envKey, checkProviderStatus(p), p.Description)
	}
}

func checkProviderStatus(p providerInfo) string {
	if p.EnvKey == "" {
		return "✓ available"
	}

	if os.Getenv(p.EnvKey) != "" {
		return "✓ configured"
	}
	return "✗ not set"
}
