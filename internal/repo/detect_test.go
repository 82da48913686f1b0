package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectStandardRepoHasNoEdgeCases(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	cfg := Detect(root)
	require.False(t, cfg.IsShallow)
	require.False(t, cfg.IsWorktree)
	require.False(t, cfg.IsBare)
	require.Equal(t, OpNone, cfg.InProgressOp)
}

func TestDetectShallowClone(t *testing.T) {
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	require.NoError(t, os.Mkdir(gitDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "shallow"), []byte("abc123\n"), 0o644))

	cfg := Detect(root)
	require.True(t, cfg.IsShallow)
}

func TestDetectMergeInProgress(t *testing.T) {
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	require.NoError(t, os.Mkdir(gitDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "MERGE_HEAD"), []byte("deadbeef\n"), 0o644))

	cfg := Detect(root)
	require.Equal(t, OpMerge, cfg.InProgressOp)
}

func TestDetectWorktreePointerFile(t *testing.T) {
	root := t.TempDir()
	mainGit := filepath.Join(root, "main-git")
	worktreeDir := filepath.Join(mainGit, "worktrees", "feature")
	require.NoError(t, os.MkdirAll(worktreeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git"), []byte("gitdir: "+worktreeDir+"\n"), 0o644))

	cfg := Detect(root)
	require.True(t, cfg.IsWorktree)
	require.Equal(t, mainGit, cfg.MainGitDir)
	require.Equal(t, worktreeDir, cfg.WorktreeGitDir)
}

func TestDetectSubmodules(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitmodules"), []byte("[submodule \"x\"]\n"), 0o644))

	cfg := Detect(root)
	require.True(t, cfg.HasSubmodules)
}

func TestDetectPartialAndSparseFromConfig(t *testing.T) {
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	require.NoError(t, os.Mkdir(gitDir, 0o755))
	configContent := `[core]
	sparseCheckout = true
	bare = false
[remote "origin"]
	promisor = true
	partialclonefilter = blob:none
`
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "config"), []byte(configContent), 0o644))

	cfg := Detect(root)
	require.True(t, cfg.IsSparse)
	require.True(t, cfg.IsPartial)
	require.Equal(t, "blob:none", cfg.PartialFilter)
	require.False(t, cfg.IsBare)
}

func TestCacheRoundTripInvalidatesOnGitMtimeChange(t *testing.T) {
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	require.NoError(t, os.Mkdir(gitDir, 0o755))

	cfg, err := LoadOrDetect(root)
	require.NoError(t, err)
	require.False(t, cfg.IsShallow)

	cached, err := LoadCached(root)
	require.NoError(t, err)
	require.NotNil(t, cached)

	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "shallow"), []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(gitDir, cfg.DetectedAt.Add(3600_000_000_000), cfg.DetectedAt.Add(3600_000_000_000)))

	stale, err := LoadCached(root)
	require.NoError(t, err)
	require.Nil(t, stale)
}
