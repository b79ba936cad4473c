package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/roboco-io/ghdigest/internal/config"
	"github.com/roboco-io/ghdigest/internal/report"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ghdigest configuration",
	Long: `Manage the ghdigest configuration.

Config file location: ~/.ghdigest/config.yaml

Subcommands:
  show    display the current configuration
  init    create a default config file
  set     change a configuration value
  path    print the config file path`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Long: `Display the configuration as it is stored, plus the environment
variables the tool reads at run time.

API keys referenced via ${VAR} placeholders are expanded on load, not
here, so the stored placeholders stay visible. Key values from the
environment are masked.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long: `Create a default config file at ~/.ghdigest/config.yaml.

Fails when a config file already exists; pass --force to overwrite
it.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a configuration value",
	Long: `Change a configuration value and save the file.

Supported keys:
  default_provider         LLM provider (anthropic, openai, gemini, ollama)
  digest.time_range        digest window (e.g. 24h, 7d)
  digest.github_username   username for the review queue and activity sections

Examples:
  ghdigest config set default_provider openai
  ghdigest config set digest.time_range 7d
  ghdigest config set digest.github_username octocat`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		loader, err := config.NewLoader()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), loader.ConfigPath())
	},
}

var configForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loader, err := config.NewLoader()
	if err != nil {
		return fmt.Errorf("init config loader: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if loader.Exists() {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n\n", loader.ConfigPath())
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file: (using defaults)\n\n")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	fmt.Fprintln(cmd.OutOrStdout(), "Environment:")
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	envVars := []struct {
		key   string
		desc  string
		value string
	}{
		{"GHDIGEST_NO_LLM", "skip summarization", os.Getenv("GHDIGEST_NO_LLM")},
		{"EMAIL_METHOD", "email delivery method", os.Getenv("EMAIL_METHOD")},
		{"ANTHROPIC_API_KEY", "Anthropic API key", maskAPIKey(os.Getenv("ANTHROPIC_API_KEY"))},
		{"OPENAI_API_KEY", "OpenAI API key", maskAPIKey(os.Getenv("OPENAI_API_KEY"))},
		{"GEMINI_API_KEY", "Gemini API key", maskAPIKey(os.Getenv("GEMINI_API_KEY"))},
		{"SMTP_USER", "SMTP account", os.Getenv("SMTP_USER")},
		{"SMTP_PASSWORD", "SMTP password", maskAPIKey(os.Getenv("SMTP_PASSWORD"))},
	}

	for _, ev := range envVars {
		status := "(unset)"
		if ev.value != "" {
			status = ev.value
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", ev.key, ev.desc, status)
	}
	w.Flush()

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	loader, err := config.NewLoader()
	if err != nil {
		return fmt.Errorf("init config loader: %w", err)
	}

	if loader.Exists() && !configForce {
		return fmt.Errorf("config file already exists: %s\nuse --force to overwrite it", loader.ConfigPath())
	}

	if err := loader.Save(config.DefaultConfig()); err != nil {
		return fmt.Errorf("create config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file created: %s\n", loader.ConfigPath())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	loader, err := config.NewLoader()
	if err != nil {
		return fmt.Errorf("init config loader: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch key {
	case "default_provider":
		validProviders := []string{"anthropic", "openai", "gemini", "ollama"}
		if !contains(validProviders, value) {
			return fmt.Errorf("invalid provider: %s (supported: %s)", value, strings.Join(validProviders, ", "))
		}
		cfg.DefaultProvider = value

	case "digest.time_range":
		if _, err := report.ParseWindow(value); err != nil {
			return fmt.Errorf("invalid time range: %w", err)
		}
		cfg.Digest.TimeRange = value

	case "digest.github_username":
		cfg.Digest.GitHubUsername = value

	default:
		return fmt.Errorf("unknown config key: %s\nsupported keys: default_provider, digest.time_range, digest.github_username", key)
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config updated: %s = %s\n", key, value)
	return nil
}

func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
