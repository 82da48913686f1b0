// Package repo detects non-standard git repository states (shallow,
// partial, sparse, worktree, submodules, bare, in-progress operations)
// that affect how Lattice should behave, per spec 4.6. Unlike the
// general-purpose git helpers this codebase inherited, detection here
// reads `.git` and its config directly rather than shelling out to the
// git binary, since every signal it needs is a file or a config key.
package repo

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// InProgressOp identifies an in-progress git operation that can leave the
// working tree in a state Lattice should not write into.
type InProgressOp string

const (
	OpNone       InProgressOp = ""
	OpRebase     InProgressOp = "Rebase"
	OpMerge      InProgressOp = "Merge"
	OpCherryPick InProgressOp = "CherryPick"
	OpRevert     InProgressOp = "Revert"
)

// Config captures the detected repository shape, cached at
// .lattice/repo_config.json keyed on .git's mtime (spec 4.6).
type Config struct {
	DetectedAt      time.Time    `json:"detected_at"`
	GitMtime        int64        `json:"git_mtime"`
	IsShallow       bool         `json:"is_shallow"`
	IsPartial       bool         `json:"is_partial"`
	PartialFilter   string       `json:"partial_filter,omitempty"`
	IsSparse        bool         `json:"is_sparse"`
	IsWorktree      bool         `json:"is_worktree"`
	MainGitDir      string       `json:"main_git_dir"`
	WorktreeGitDir  string       `json:"worktree_git_dir,omitempty"`
	HasSubmodules   bool         `json:"has_submodules"`
	IsBare          bool         `json:"is_bare"`
	InProgressOp    InProgressOp `json:"in_progress_op,omitempty"`
}

// Detect inspects repoRoot's .git entry and returns its Config. repoRoot
// need not be a git repository at all: in that case every field is its
// zero value and callers should treat the result as "no git edge cases".
func Detect(repoRoot string) Config {
	gitPath := filepath.Join(repoRoot, ".git")
	cfg := Config{
		DetectedAt: time.Now().UTC(),
		GitMtime:   gitMtime(gitPath),
		MainGitDir: gitPath,
	}

	cfg.IsShallow = fileExists(filepath.Join(gitPath, "shallow"))
	cfg.IsWorktree, cfg.MainGitDir, cfg.WorktreeGitDir = detectWorktree(gitPath)
	cfg.HasSubmodules = fileExists(filepath.Join(repoRoot, ".gitmodules"))

	configPath := filepath.Join(cfg.MainGitDir, "config")
	kv := parseGitConfig(configPath)
	cfg.IsPartial = kv["remote.origin.promisor"] != ""
	if cfg.IsPartial {
		cfg.PartialFilter = kv["remote.origin.partialclonefilter"]
	}
	cfg.IsSparse = strings.EqualFold(kv["core.sparsecheckout"], "true")
	cfg.IsBare = strings.EqualFold(kv["core.bare"], "true")

	effectiveGitDir := gitPath
	if cfg.WorktreeGitDir != "" {
		effectiveGitDir = cfg.WorktreeGitDir
	}
	cfg.InProgressOp = detectInProgressOp(effectiveGitDir)

	return cfg
}

func gitMtime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().Unix()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// detectWorktree reports whether gitPath is a worktree pointer file
// ("gitdir: <path>") rather than the real .git directory, returning the
// main and worktree-specific git directories when it is.
func detectWorktree(gitPath string) (isWorktree bool, mainGitDir, worktreeGitDir string) {
	info, err := os.Stat(gitPath)
	if err != nil || info.IsDir() {
		return false, gitPath, ""
	}

	content, err := os.ReadFile(gitPath)
	if err != nil {
		return true, gitPath, ""
	}
	line := strings.TrimSpace(strings.SplitN(string(content), "\n", 2)[0])
	target, ok := strings.CutPrefix(line, "gitdir: ")
	if !ok {
		return true, gitPath, ""
	}
	target = filepath.Clean(target)
	// target looks like <main>/.git/worktrees/<name>; walk up two levels.
	main := filepath.Dir(filepath.Dir(target))
	return true, main, target
}

// detectInProgressOp checks gitDir for the marker files git itself leaves
// behind during a rebase, merge, cherry-pick, or revert.
func detectInProgressOp(gitDir string) InProgressOp {
	switch {
	case fileExists(filepath.Join(gitDir, "rebase-merge")), fileExists(filepath.Join(gitDir, "rebase-apply")):
		return OpRebase
	case fileExists(filepath.Join(gitDir, "MERGE_HEAD")):
		return OpMerge
	case fileExists(filepath.Join(gitDir, "CHERRY_PICK_HEAD")):
		return OpCherryPick
	case fileExists(filepath.Join(gitDir, "REVERT_HEAD")):
		return OpRevert
	default:
		return OpNone
	}
}

// parseGitConfig does a minimal INI-style parse of a git config file,
// enough to answer the boolean/string lookups detection needs. Keys are
// returned lowercased and dotted ("section.subsection.key").
func parseGitConfig(path string) map[string]string {
	out := map[string]string{}
	f, err := os.Open(path)
	if err != nil {
		return out
	}
	defer f.Close()

	section := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = normalizeSection(line[1 : len(line)-1])
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])
		if section != "" {
			key = section + "." + key
		}
		out[key] = value
	}
	return out
}

// normalizeSection turns `remote "origin"` into `remote.origin`.
func normalizeSection(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 1 {
		return strings.ToLower(fields[0])
	}
	name := strings.ToLower(fields[0])
	sub := strings.Trim(strings.Join(fields[1:], " "), `"`)
	return name + "." + sub
}
