package repo

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/latticehq/lattice/internal/latticeerr"
	"github.com/latticehq/lattice/internal/lockfile"
)

// CachePath returns the location of the cached repository configuration.
func CachePath(repoRoot string) string {
	return filepath.Join(repoRoot, ".lattice", "repo_config.json")
}

// LoadCached reads a previously detected Config if its git_mtime still
// matches the repository's current .git mtime, returning (nil, nil) on a
// miss (file absent, unreadable, or stale) rather than an error: a stale
// cache is an expected event, not a failure.
func LoadCached(repoRoot string) (*Config, error) {
	path := CachePath(repoRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil
	}

	currentMtime := gitMtime(filepath.Join(repoRoot, ".git"))
	if cfg.GitMtime != currentMtime {
		return nil, nil
	}
	return &cfg, nil
}

// SaveCache writes cfg to .lattice/repo_config.json, creating the
// .lattice directory if needed. The write is flock-guarded: detection
// reruns whenever .git's mtime moves, so two invocations that both see a
// stale cache at the same moment (a checkout finishing, a rebase landing)
// can race to rewrite it.
func SaveCache(repoRoot string, cfg Config) error {
	path := CachePath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return latticeerr.Wrap(latticeerr.WriteError, "create .lattice directory", err).WithPath(filepath.Dir(path))
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return latticeerr.Wrap(latticeerr.WriteError, "marshal repo config", err).WithPath(path)
	}
	err = lockfile.WithExclusive(path, func() error {
		return os.WriteFile(path, data, 0o644)
	})
	if err != nil {
		return latticeerr.Wrap(latticeerr.WriteError, "write repo config cache", err).WithPath(path)
	}
	return nil
}

// LoadOrDetect returns the cached Config when it is still fresh, or
// detects and caches a fresh one otherwise.
func LoadOrDetect(repoRoot string) (Config, error) {
	if cached, err := LoadCached(repoRoot); err == nil && cached != nil {
		return *cached, nil
	}
	cfg := Detect(repoRoot)
	if err := SaveCache(repoRoot, cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
