package lockfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFlockFunctions(t *testing.T) {
	t.Run("FlockExclusiveBlocking and FlockUnlock", func(t *testing.T) {
		tmpDir := t.TempDir()
		lockPath := filepath.Join(tmpDir, "test.lock")

		if err := os.WriteFile(lockPath, []byte("test"), 0644); err != nil {
			t.Fatalf("failed to create lock file: %v", err)
		}

		f, err := os.OpenFile(lockPath, os.O_RDWR, 0644)
		if err != nil {
			t.Fatalf("failed to open lock file: %v", err)
		}
		defer f.Close()

		if err := FlockExclusiveBlocking(f); err != nil {
			t.Errorf("FlockExclusiveBlocking failed: %v", err)
		}

		if err := FlockUnlock(f); err != nil {
			t.Errorf("FlockUnlock failed: %v", err)
		}
	})

	t.Run("flockExclusive non-blocking succeeds on unlocked file", func(t *testing.T) {
		tmpDir := t.TempDir()
		lockPath := filepath.Join(tmpDir, "test.lock")

		if err := os.WriteFile(lockPath, []byte("test"), 0644); err != nil {
			t.Fatalf("failed to create lock file: %v", err)
		}

		f, err := os.OpenFile(lockPath, os.O_RDWR, 0644)
		if err != nil {
			t.Fatalf("failed to open lock file: %v", err)
		}
		defer f.Close()

		if err := flockExclusive(f); err != nil {
			t.Errorf("flockExclusive should succeed on unlocked file: %v", err)
		}

		FlockUnlock(f)
	})

	t.Run("flockExclusive returns errLockHeld when already locked", func(t *testing.T) {
		tmpDir := t.TempDir()
		lockPath := filepath.Join(tmpDir, "test.lock")

		if err := os.WriteFile(lockPath, []byte("test"), 0644); err != nil {
			t.Fatalf("failed to create lock file: %v", err)
		}

		f1, err := os.OpenFile(lockPath, os.O_RDWR, 0644)
		if err != nil {
			t.Fatalf("failed to open lock file: %v", err)
		}
		defer f1.Close()

		if err := FlockExclusiveBlocking(f1); err != nil {
			t.Fatalf("failed to acquire first lock: %v", err)
		}
		defer FlockUnlock(f1)

		f2, err := os.OpenFile(lockPath, os.O_RDWR, 0644)
		if err != nil {
			t.Fatalf("failed to open second lock file handle: %v", err)
		}
		defer f2.Close()

		err = flockExclusive(f2)
		if err != errLockHeld {
			t.Errorf("expected errLockHeld, got %v", err)
		}
	})
}

func TestWithExclusiveRunsFnUnderLockAndCleansUp(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "index.sqlite")

	ran := false
	err := WithExclusive(target, func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithExclusive failed: %v", err)
	}
	if !ran {
		t.Error("expected fn to run")
	}

	if _, err := os.Stat(target + ".lock"); err != nil {
		t.Errorf("expected sidecar lock file to exist: %v", err)
	}
}

func TestWithExclusivePropagatesFnError(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "repo_config.json")

	wantErr := os.ErrPermission
	err := WithExclusive(target, func() error {
		return wantErr
	})
	if err != wantErr {
		t.Errorf("expected WithExclusive to propagate fn's error, got %v", err)
	}
}

func TestWithExclusiveSerializesConcurrentCallers(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "index.sqlite")

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		WithExclusive(target, func() error {
			close(started)
			<-release
			return nil
		})
		close(done)
	}()

	<-started

	secondRan := make(chan struct{})
	go func() {
		WithExclusive(target, func() error {
			close(secondRan)
			return nil
		})
	}()

	select {
	case <-secondRan:
		t.Fatal("second WithExclusive ran before the first released its lock")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-done
	<-secondRan
}
