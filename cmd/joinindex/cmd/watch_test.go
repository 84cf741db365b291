package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchConfig_DebouncesWrites(t *testing.T) {
	// Given: a watcher on a config file that does not exist yet
	dir := t.TempDir()
	target := filepath.Join(dir, ".joinindex.yaml")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchConfig(ctx, []string{target}, 50*time.Millisecond, func(p string) { changed <- p })
	}()
	time.Sleep(100 * time.Millisecond)

	// When: an unrelated file changes, then the config is written twice
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(target, []byte("bench:\n  seed: 1\n"), 0644))
	require.NoError(t, os.WriteFile(target, []byte("bench:\n  seed: 2\n"), 0644))

	// Then: one change is reported for the config file
	select {
	case p := <-changed:
		assert.Equal(t, target, p)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case p := <-changed:
		t.Fatalf("unexpected second change: %s", p)
	case <-time.After(200 * time.Millisecond):
	}

	// And: cancelling stops the watcher
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchConfig_NoDirectories(t *testing.T) {
	err := watchConfig(context.Background(), []string{filepath.Join(t.TempDir(), "missing", "c.yaml")}, time.Millisecond, func(string) {})

	assert.Error(t, err)
}
