package watchonce

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitReturnsAfterDebouncedWrite(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Wait(ctx, Options{Dir: dir, Debounce: 50 * time.Millisecond})
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.sqlite"), []byte("x"), 0o644))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(4 * time.Second):
		t.Fatal("Wait did not return after a settled write")
	}
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Wait(ctx, Options{Dir: dir, Debounce: time.Second})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after context cancellation")
	}
}

func TestMatchesSuffixFiltersByBasename(t *testing.T) {
	require.True(t, matchesSuffix("/a/b/index.sqlite", []string{".sqlite"}))
	require.False(t, matchesSuffix("/a/b/notes.txt", []string{".sqlite"}))
	require.True(t, matchesSuffix("/a/b/notes.txt", nil))
}
