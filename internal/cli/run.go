package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roboco-io/ghdigest/internal/config"
	"github.com/roboco-io/ghdigest/internal/deliver"
	"github.com/roboco-io/ghdigest/internal/digest"
	"github.com/roboco-io/ghdigest/internal/github"
	"github.com/roboco-io/ghdigest/internal/llm"
	"github.com/roboco-io/ghdigest/internal/report"
	"github.com/spf13/cobra"
)

var (
	runConfigPath    string
	runRepos         string
	runLabels        string
	runUsernames     string
	runTimeRange     string
	runGitHubUser    string
	runFiles         []string
	runSlackWebhooks []string
	runEmails        []string
	runProviderName  string
	runModel         string
	runNoLLM         bool
	runVerbose       bool
	runQuiet         bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch recent PR activity and deliver the digest report",
	Long: `Fetch merged pull requests across the configured repositories,
summarize each one with the configured LLM provider, and deliver the
assembled markdown report to every configured destination.

Repositories, filters, and destinations come from the config file
(see 'ghdigest config') and can be overridden per run with flags.
When a GitHub username is set, the report also lists PRs awaiting
that user's review and recent activity on their open PRs.

Environment:
  GHDIGEST_NO_LLM=true   skip summarization (same as --no-llm)
  EMAIL_METHOD           smtp (default), smtp-oauth, or gmail-api
  SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD, SMTP_FROM
                         credentials for the smtp method
  GMAIL_CREDENTIALS_PATH, GMAIL_TOKEN_PATH
                         OAuth client secret and cached token for the
                         smtp-oauth and gmail-api methods

Examples:
  ghdigest run --repos owner/repo --file report.md
  ghdigest run --repos owner/repo --labels bug,backend --time-range 7d --file report.md
  ghdigest run --slack "$SLACK_WEBHOOK_URL" --email dev@example.com
  ghdigest run --no-llm --file report.md`,
	Args: cobra.NoArgs,
	RunE: runDigest,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "config file path (default: ~/.ghdigest/config.yaml)")
	runCmd.Flags().StringVar(&runRepos, "repos", "", "comma-separated repositories (owner/repo)")
	runCmd.Flags().StringVar(&runLabels, "labels", "", "comma-separated labels merged PRs must carry")
	runCmd.Flags().StringVar(&runUsernames, "usernames", "", "comma-separated authors merged PRs must have")
	runCmd.Flags().StringVar(&runTimeRange, "time-range", "", "time window, e.g. 24h or 7d")
	runCmd.Flags().StringVar(&runGitHubUser, "github-username", "", "GitHub username for the review queue and activity sections")
	runCmd.Flags().StringArrayVar(&runFiles, "file", nil, "write the report to this path (repeatable)")
	runCmd.Flags().StringArrayVar(&runSlackWebhooks, "slack", nil, "post the report to this Slack webhook URL (repeatable)")
	runCmd.Flags().StringArrayVar(&runEmails, "email", nil, "send the report to this address (repeatable)")
	runCmd.Flags().StringVar(&runProviderName, "provider", "", "LLM provider (anthropic, openai, gemini, ollama)")
	runCmd.Flags().StringVar(&runModel, "model", "", "LLM model name (picks the matching provider unless --provider is set)")
	runCmd.Flags().BoolVar(&runNoLLM, "no-llm", false, "skip LLM summarization")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "print resolved settings before the run")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "suppress progress output")

	rootCmd.AddCommand(runCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	window, err := report.ParseWindow(cfg.Digest.TimeRange)
	if err != nil {
		return fmt.Errorf("invalid time range: %w", err)
	}

	var progress io.Writer
	if !runQuiet {
		progress = cmd.ErrOrStderr()
	}

	noLLM := runNoLLM || config.GetEnvBool("GHDIGEST_NO_LLM")

	var provider llm.Provider
	opts := llm.DefaultSummarizeOptions()
	if !noLLM {
		provider, opts, err = resolveProvider(cfg)
		if err != nil {
			return err
		}
	}

	if runVerbose && !runQuiet {
		printRunSettings(cmd.ErrOrStderr(), cfg, provider)
	}

	gh, err := github.NewClient(cmd.Context(), progress)
	if err != nil {
		if errors.Is(err, github.ErrGHNotFound) {
			return fmt.Errorf("%w (install it from https://cli.github.com)", err)
		}
		return err
	}

	gen := &digest.Generator{
		Repos:          cfg.Digest.Repos,
		Labels:         cfg.Digest.Labels,
		Usernames:      cfg.Digest.Usernames,
		Window:         window,
		GitHubUsername: cfg.Digest.GitHubUsername,
		GitHub:         gh,
		Provider:       provider,
		Options:        opts,
		Progress:       progress,
	}

	text, err := gen.Generate(cmd.Context())
	if err != nil {
		return err
	}

	delivered, err := deliver.Fanout(cmd.Context(), text, buildSinks(cfg, progress)...)
	if err != nil {
		if delivered == 0 {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Some deliveries failed:\n%v\n", err)
	}
	return nil
}

// loadRunConfig loads the config file and applies flag overrides
// field by field.
func loadRunConfig() (*config.Config, error) {
	var loader *config.Loader
	if runConfigPath != "" {
		loader = config.NewLoaderWithPath(runConfigPath)
	} else {
		var err error
		loader, err = config.NewLoader()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if runRepos != "" {
		cfg.Digest.Repos = splitList(runRepos)
	}
	if runLabels != "" {
		cfg.Digest.Labels = splitList(runLabels)
	}
	if runUsernames != "" {
		cfg.Digest.Usernames = splitList(runUsernames)
	}
	if runTimeRange != "" {
		cfg.Digest.TimeRange = runTimeRange
	}
	if runGitHubUser != "" {
		cfg.Digest.GitHubUsername = runGitHubUser
	}
	if len(runFiles) > 0 {
		cfg.Outputs.Files = runFiles
	}
	if len(runSlackWebhooks) > 0 {
		cfg.Outputs.SlackWebhooks = runSlackWebhooks
	}
	if len(runEmails) > 0 {
		cfg.Outputs.Emails = runEmails
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// resolveProvider builds the provider registry from the config and
// picks the requested one. The --model flag rides along as a per-call
// override so the registry entries keep their configured models.
func resolveProvider(cfg *config.Config) (llm.Provider, llm.SummarizeOptions, error) {
	opts := llm.DefaultSummarizeOptions()
	opts.Model = runModel

	name := cfg.DefaultProvider
	if runProviderName != "" {
		name = runProviderName
	} else if runModel != "" {
		name = detectProviderFromModel(runModel)
	}

	reg := buildRegistry(cfg)

	pc, ok := cfg.GetProvider(name)
	if !ok {
		return nil, opts, fmt.Errorf("provider %q is not in the config (configured: %s)", name, strings.Join(reg.List(), ", "))
	}
	if pc.MaxTokens > 0 {
		opts.MaxTokens = pc.MaxTokens
	}

	p, err := reg.Get(name)
	if err != nil {
		return nil, opts, fmt.Errorf("provider %q is not supported (supported: anthropic, gemini, ollama, openai)", name)
	}
	if err := p.Validate(); err != nil {
		return nil, opts, err
	}
	return p, opts, nil
}

// detectProviderFromModel maps a model name to the provider that
// serves it. Unrecognized models go to the local Ollama server.
func detectProviderFromModel(model string) string {
	if model == "" {
		return "anthropic"
	}
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "claude"):
		return "anthropic"
	case strings.HasPrefix(m, "gpt"), strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"):
		return "openai"
	case strings.HasPrefix(m, "gemini"):
		return "gemini"
	default:
		return "ollama"
	}
}

// buildRegistry registers one provider per known config entry.
// Unknown provider names in the config are skipped.
func buildRegistry(cfg *config.Config) *llm.Registry {
	reg := llm.NewRegistry()
	for name, pc := range cfg.Providers {
		var p llm.Provider
		switch name {
		case "anthropic":
			p = llm.NewAnthropic(pc.APIKey, pc.Model, pc.Endpoint)
		case "openai":
			p = llm.NewOpenAI(pc.APIKey, pc.Model, pc.Endpoint)
		case "gemini":
			p = llm.NewGemini(pc.APIKey, pc.Model)
		case "ollama":
			p = llm.NewOllama(pc.Endpoint, pc.Model)
		default:
			continue
		}
		_ = reg.Register(p)
	}
	return reg
}

func buildSinks(cfg *config.Config, progress io.Writer) []deliver.Sink {
	var sinks []deliver.Sink
	for _, path := range cfg.Outputs.Files {
		sinks = append(sinks, deliver.NewFile(path, progress))
	}
	for _, url := range cfg.Outputs.SlackWebhooks {
		sinks = append(sinks, deliver.NewSlack(url, progress))
	}
	for _, to := range cfg.Outputs.Emails {
		sinks = append(sinks, deliver.NewEmail(to, progress))
	}
	return sinks
}

func printRunSettings(w io.Writer, cfg *config.Config, provider llm.Provider) {
	fmt.Fprintf(w, "Repositories: %s\n", strings.Join(cfg.Digest.Repos, ", "))
	if len(cfg.Digest.Labels) > 0 {
		fmt.Fprintf(w, "Labels: %s\n", strings.Join(cfg.Digest.Labels, ", "))
	}
	if len(cfg.Digest.Usernames) > 0 {
		fmt.Fprintf(w, "Authors: %s\n", strings.Join(cfg.Digest.Usernames, ", "))
	}
	fmt.Fprintf(w, "Time range: %s\n", cfg.Digest.TimeRange)
	if cfg.Digest.GitHubUsername != "" {
		fmt.Fprintf(w, "GitHub username: %s\n", cfg.Digest.GitHubUsername)
	}
	if provider == nil {
		fmt.Fprintf(w, "Summarization: disabled\n")
	} else {
		fmt.Fprintf(w, "Provider: %s\n", provider.Name())
	}
}
