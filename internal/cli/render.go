package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/roboco-io/ghdigest/internal/render"
	"github.com/spf13/cobra"
)

var renderOutput string

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a markdown report as email-ready HTML",
	Long: `Render a markdown digest report into the inline-styled HTML document
used for email delivery. Reads the report from a file, or from stdin
when no file is given.

Examples:
  ghdigest render report.md
  ghdigest render report.md -o report.html
  cat report.md | ghdigest render > report.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file path (default: stdout)")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	var markdown []byte
	var err error
	if len(args) == 1 {
		markdown, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read report: %w", err)
		}
	} else {
		markdown, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}

	html := render.HTML(string(markdown))

	if renderOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), html)
		return nil
	}
	if err := os.WriteFile(renderOutput, []byte(html), 0644); err != nil {
		return fmt.Errorf("write HTML: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "HTML written to: %s\n", renderOutput)
	return nil
}
