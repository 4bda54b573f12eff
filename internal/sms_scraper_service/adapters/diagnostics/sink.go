// Package diagnostics stores upstream documents that could not be parsed.
package diagnostics

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileSink writes each captured document to <dir>/<name>.html, replacing the
// previous capture under the same name.
type FileSink struct {
	dir    string
	logger *slog.Logger
}

func NewFileSink(dir string, logger *slog.Logger) *FileSink {
	return &FileSink{dir: dir, logger: logger}
}

func (s *FileSink) Capture(ctx context.Context, name, document string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create diagnostics dir: %w", err)
	}
	path := filepath.Join(s.dir, FileName(name))
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		return fmt.Errorf("write diagnostic document: %w", err)
	}
	s.logger.InfoContext(ctx, "Saved diagnostic document", "path", path, "bytes", len(document))
	return nil
}

// FileName maps a capture name to a safe file name.
func FileName(name string) string {
	safe := unsafeNameRe.ReplaceAllString(name, "_")
	if safe == "" || safe == "." || safe == ".." {
		safe = "last_failed"
	}
	return safe + ".html"
}

// NopSink discards every capture.
type NopSink struct{}

func (NopSink) Capture(context.Context, string, string) error { return nil }
