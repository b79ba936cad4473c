// Package cli wires the ghdigest command tree: run, render, config,
// providers, and version.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped by the build via SetVersion.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "ghdigest",
	Short: "LLM-powered digest of recent GitHub PR activity",
	Long: `ghdigest collects merged pull requests from your repositories over a
time window, summarizes each one with an LLM, and assembles a markdown
report that also covers PRs awaiting your review and recent activity
on your own PRs. The report can be written to files, posted to Slack
webhooks, and sent by email.

Fetching rides on the gh CLI, so run 'gh auth login' before the first
digest.

Examples:
  ghdigest run --repos owner/repo --file report.md
  ghdigest run --repos owner/repo,owner/other --slack "$SLACK_WEBHOOK_URL"
  ghdigest render report.md -o report.html
  ghdigest config init`,
	SilenceUsage: true,
}

// SetVersion records the version string printed by the version
// command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ghdigest version",
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "ghdigest %s\n", version)
}
