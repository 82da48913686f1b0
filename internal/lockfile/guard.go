package lockfile

import (
	"os"
	"path/filepath"
)

// WithExclusive runs fn while holding a blocking exclusive flock on a
// sidecar "<path>.lock" file. It guards first-run races on shared
// .lattice/ artifacts (index.sqlite creation, repo_config.json rewrite)
// that fall outside SQLite's own WAL locking, since those races happen
// before (or independently of) any database connection existing.
func WithExclusive(path string, fn func() error) error {
	lockPath := path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := FlockExclusiveBlocking(f); err != nil {
		return err
	}
	defer FlockUnlock(f)

	return fn()
}
