// Package deliver sends a finished report to its destinations:
// files, Slack webhooks, and email.
package deliver

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Sink is one delivery destination.
type Sink interface {
	// Send delivers the markdown report.
	Send(ctx context.Context, report string) error

	// Describe identifies the destination in error and progress
	// lines.
	Describe() string
}

// Fanout delivers the report to every sink and returns the number of
// successful deliveries. Failures are collected and joined so one bad
// destination does not block the rest.
func Fanout(ctx context.Context, report string, sinks ...Sink) (int, error) {
	var errs []error
	delivered := 0
	for _, sink := range sinks {
		if err := sink.Send(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Describe(), err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

func progressf(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, format+"\n", args...)
}
