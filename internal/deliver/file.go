package deliver

import (
	"context"
	"fmt"
	"io"
	"os"
)

// FileSink writes the report to a local file.
type FileSink struct {
	Path     string
	Progress io.Writer
}

// NewFile builds a file sink.
func NewFile(path string, progress io.Writer) *FileSink {
	return &FileSink{Path: path, Progress: progress}
}

// Describe identifies the sink by its path.
func (s *FileSink) Describe() string {
	return "file " + s.Path
}

// Send writes the markdown report to the path.
func (s *FileSink) Send(ctx context.Context, report string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	progressf(s.Progress, "Report written to: %s", s.Path)
	return nil
}
