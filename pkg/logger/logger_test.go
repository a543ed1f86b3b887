package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "extract.log")
	log, err := NewLogger(
		WithLevel("debug"),
		WithEncoding("json"),
		WithOutputPaths([]string{path}),
		WithInitialField("service", "extract"),
	)
	require.NoError(t, err)

	log.Named("pipeline").Info("document processed", String("path", "a.txt"), Int("fields", 3))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"document processed"`)
	assert.Contains(t, string(data), `"logger":"pipeline"`)
	assert.Contains(t, string(data), `"service":"extract"`)
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := NewLogger(WithLevel("loud"), WithOutputPaths([]string{"stderr"}))
	assert.Error(t, err)
}

func TestTestLoggerSharesEntries(t *testing.T) {
	tl := NewTestLogger()
	child := tl.Named("agent").With(String("runId", "r1"))
	child.Warn("slow page", Int("page", 2))
	tl.Error("failed", Error(errors.New("boom")))

	entries := tl.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "agent", entries[0].Logger)
	assert.Equal(t, "r1", entries[0].FieldMap()["runId"])
	assert.Equal(t, int64(2), entries[0].FieldMap()["page"])
	assert.Len(t, tl.EntriesAt("ERROR"), 1)
	assert.NoError(t, child.Sync())

	tl.Clear()
	assert.Empty(t, tl.GetEntries())
}

func TestFromContext(t *testing.T) {
	tl := NewTestLogger()
	ctx := WithPath(WithRunID(context.Background(), "run-42"), "/tmp/a.pdf")

	id, ok := RunIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "run-42", id)

	FromContext(ctx, tl).Info("hello")
	fields := tl.GetEntries()[0].FieldMap()
	assert.Equal(t, "run-42", fields["runId"])
	assert.Equal(t, "/tmp/a.pdf", fields["path"])

	assert.Same(t, Logger(tl), FromContext(context.Background(), tl))
}
