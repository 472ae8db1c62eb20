package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatchImport_TriggersOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "import.csv")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	triggers := make(chan string, 1)
	w, err := watchImport(ctx, path, triggers, discardLogger())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("type\ntheft\n"), 0o600))

	select {
	case reason := <-triggers:
		assert.Equal(t, "import_csv_changed", reason)
	case <-time.After(5 * time.Second):
		t.Fatal("no trigger after writing the import csv")
	}
}

func TestWatchImport_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	triggers := make(chan string, 1)
	w, err := watchImport(ctx, filepath.Join(dir, "import.csv"), triggers, discardLogger())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	select {
	case reason := <-triggers:
		t.Fatalf("unexpected trigger %q", reason)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchImport_MissingDirectory(t *testing.T) {
	_, err := watchImport(context.Background(), filepath.Join(t.TempDir(), "nope", "import.csv"), make(chan string, 1), discardLogger())
	assert.Error(t, err)
}
