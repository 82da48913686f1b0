package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/latticehq/lattice/internal/config"
	"github.com/latticehq/lattice/internal/index"
)

var (
	jsonOutput bool
	repoFlag   string
	clientFlag string
)

// Styles for human-readable (non-JSON) output.
var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"})
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"})
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"})
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"})
	boldStyle  = lipgloss.NewStyle().Bold(true)
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "A local, filesystem-native knowledge and task engine",
	Long: `lattice manages Markdown documents with YAML frontmatter as a
knowledge base and task tracker, indexed in a local SQLite database for
fast querying. Documents are the source of truth; the index is a cache
rebuilt from the filesystem on demand.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "docs", Title: "Working With Documents:"},
		&cobra.Group{ID: "views", Title: "Views & Reports:"},
		&cobra.Group{ID: "coord", Title: "Coordination:"},
		&cobra.Group{ID: "maint", Title: "Maintenance:"},
	)

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output machine-readable JSON")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "repository root (default: auto-discover from cwd)")
	rootCmd.PersistentFlags().StringVar(&clientFlag, "client", "", "client id for newly minted lattice IDs (default: user config)")

	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("repo", rootCmd.PersistentFlags().Lookup("repo"))
	_ = viper.BindPFlag("client", rootCmd.PersistentFlags().Lookup("client"))
	viper.SetEnvPrefix("LATTICE")
	viper.AutomaticEnv()
}

// findRepoRoot walks up from cwd looking for a .lattice directory,
// mirroring the reference CLI's own upward-walk for its data directory.
func findRepoRoot() (string, error) {
	if repoFlag != "" {
		abs, err := filepath.Abs(repoFlag)
		if err != nil {
			return "", err
		}
		return abs, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, ".lattice")); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no .lattice directory found in %q or any parent (run 'lattice init' first)", mustGetwd())
		}
		dir = parent
	}
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

// openIndex opens the repository's index database, rebuilding on schema
// mismatch as internal/index.Open already handles internally.
func openIndex(ctx context.Context, repoRoot string) (*index.DB, error) {
	return index.Open(ctx, filepath.Join(latticeDirOf(repoRoot), "index.sqlite"))
}

func latticeDirOf(repoRoot string) string {
	return filepath.Join(repoRoot, ".lattice")
}

// resolveClientID returns the client id to stamp onto new documents:
// --client, then the repo's local override, then the user's default
// client, per spec's client-id resolution order.
func resolveClientID(repoRoot string) (string, error) {
	if clientFlag != "" {
		return clientFlag, nil
	}

	local := config.LoadLocalOverrides(repoRoot)
	if local.DefaultClientID != "" {
		return local.DefaultClientID, nil
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		userCfg, err := config.LoadUserConfig(homeDir)
		if err == nil && userCfg.DefaultClient != "" {
			if id, ok := userCfg.Clients[userCfg.DefaultClient]; ok {
				return id, nil
			}
		}
	}

	return "", fmt.Errorf("no client id configured: pass --client, set default-client-id in .lattice-local.yaml, or configure a default_client in ~/.lattice/config.toml")
}

func renderError(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
}
