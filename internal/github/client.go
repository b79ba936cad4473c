// Package github wraps the gh CLI. All queries shell out to gh and
// decode its --json output, so the tool rides on the user's existing
// gh authentication instead of managing tokens itself.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrGHNotFound means the gh executable is not on PATH.
	ErrGHNotFound = errors.New("gh executable not found in PATH")
	// ErrNotAuthenticated means gh has no usable credentials.
	ErrNotAuthenticated = errors.New("gh is not authenticated, run 'gh auth login'")
)

// Client runs gh commands and decodes their JSON output. Fetch
// failures for a single query are written to the log writer and
// skipped where the original tool did the same, so one bad repo or
// day does not sink a whole digest run.
type Client struct {
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
	log         io.Writer
	now         func() time.Time
}

// NewClient verifies the gh CLI is installed and authenticated and
// returns a ready client. Warnings are written to log.
func NewClient(ctx context.Context, log io.Writer) (*Client, error) {
	c := &Client{
		execCommand: exec.CommandContext,
		log:         log,
		now:         time.Now,
	}
	if err := c.checkAuth(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) checkAuth(ctx context.Context) error {
	out, err := c.execCommand(ctx, "gh", "auth", "status").CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return ErrGHNotFound
		}
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", ErrNotAuthenticated, msg)
		}
		return ErrNotAuthenticated
	}
	return nil
}

// output runs a gh command and returns its stdout. On failure the
// command's stderr is folded into the error.
func (c *Client) output(ctx context.Context, args ...string) ([]byte, error) {
	out, err := c.execCommand(ctx, "gh", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return out, nil
}

func (c *Client) logf(format string, args ...any) {
	if c.log != nil {
		fmt.Fprintf(c.log, format+"\n", args...)
	}
}
