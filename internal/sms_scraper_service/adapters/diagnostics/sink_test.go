package diagnostics

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_Capture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "debug")
	sink := NewFileSink(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, sink.Capture(context.Background(), "inbox-12025550123", "<html>first</html>"))
	require.NoError(t, sink.Capture(context.Background(), "inbox-12025550123", "<html>second</html>"))

	b, err := os.ReadFile(filepath.Join(dir, "inbox-12025550123.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>second</html>", string(b))
}

func TestFileSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewFileSink(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil))).Capture(ctx, "x", "y")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "inbox-1.html", FileName("inbox-1"))
	assert.Equal(t, "_etc_passwd.html", FileName("/etc/passwd"))
	assert.Equal(t, "last_failed.html", FileName(""))
	assert.Equal(t, "last_failed.html", FileName(".."))
}

func TestNopSink(t *testing.T) {
	assert.NoError(t, NopSink{}.Capture(context.Background(), "a", "b"))
}
