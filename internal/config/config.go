// Package config loads Lattice's repo-scoped and per-user configuration.
// Repo config (.lattice/config.toml) uses TOML, mirroring the reference
// stack's use of BurntSushi/toml for structured on-disk config; a
// lightweight per-repo local-override file uses YAML, mirroring the
// reference's LocalConfig pattern (internal/config/local_config.go) of
// reading a small override struct directly off disk without going through
// a global config singleton.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// OverviewWeights are the ranking weights for spec 4.12.
type OverviewWeights struct {
	View     float64 `toml:"view"`
	Recency  float64 `toml:"recency"`
	Root     float64 `toml:"root"`
	HalfLife float64 `toml:"half_life_days"`
}

// DefaultOverviewWeights matches spec 4.12's defaults.
func DefaultOverviewWeights() OverviewWeights {
	return OverviewWeights{View: 0.5, Recency: 0.3, Root: 0.2, HalfLife: 7}
}

// FormatConfig controls the markdown formatter (spec 4.11).
type FormatConfig struct {
	LineWidth int  `toml:"line_width"`
	Parallel  bool `toml:"parallel"`
}

// DefaultFormatConfig matches spec 4.11's default width of 80.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{LineWidth: 80, Parallel: false}
}

// ClaimConfig controls claim staleness (spec 3/4.7).
type ClaimConfig struct {
	StaleAfterDays int `toml:"stale_after_days"`
}

// DefaultClaimConfig matches spec's default 7-day staleness.
func DefaultClaimConfig() ClaimConfig {
	return ClaimConfig{StaleAfterDays: 7}
}

// LoggingConfig holds the configured log level. No package in this module
// reads it to set up a logger.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// RepoConfig is the schema of <repo>/.lattice/config.toml.
type RepoConfig struct {
	Overview OverviewWeights `toml:"overview"`
	Format   FormatConfig    `toml:"format"`
	Claim    ClaimConfig     `toml:"claim"`
	Logging  LoggingConfig   `toml:"logging"`
}

// DefaultRepoConfig returns the built-in defaults for every section.
func DefaultRepoConfig() RepoConfig {
	return RepoConfig{
		Overview: DefaultOverviewWeights(),
		Format:   DefaultFormatConfig(),
		Claim:    DefaultClaimConfig(),
		Logging:  LoggingConfig{Level: "info"},
	}
}

// LoadRepoConfig reads <lattice-dir>/config.toml, applying defaults for any
// section not present in the file. A missing file is not an error — it
// yields the defaults.
func LoadRepoConfig(latticeDir string) (RepoConfig, error) {
	cfg := DefaultRepoConfig()
	path := filepath.Join(latticeDir, "config.toml")
	data, err := os.ReadFile(path) // #nosec G304 -- latticeDir is caller-controlled, not attacker input
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, err
	}
	if envLevel := os.Getenv("LATTICE_LOG_LEVEL"); envLevel != "" {
		cfg.Logging.Level = envLevel
	}
	return cfg, nil
}

// UserConfig is the schema of ~/.lattice/config.toml: the client id
// mapping and engine-wide defaults.
type UserConfig struct {
	// Clients maps a short human label (e.g. a machine or project name) to
	// the client-id used when generating Lattice IDs on this machine.
	Clients       map[string]string `toml:"clients"`
	DefaultClient string            `toml:"default_client"`
}

// LoadUserConfig reads ~/.lattice/config.toml. A missing file yields an
// empty UserConfig, not an error.
func LoadUserConfig(homeDir string) (UserConfig, error) {
	var cfg UserConfig
	path := filepath.Join(homeDir, ".lattice", "config.toml")
	data, err := os.ReadFile(path) // #nosec G304 -- homeDir is caller-controlled, not attacker input
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	_, err = toml.Decode(string(data), &cfg)
	return cfg, err
}

// LocalOverrides is a small set of per-repo overrides read directly off
// disk, bypassing RepoConfig, for tools that need a single setting before
// full config resolution (mirrors the reference's LocalConfig pattern).
type LocalOverrides struct {
	DefaultClientID string `yaml:"default-client-id"`
	IssuePathPrefix string `yaml:"issue-path-prefix"`
}

// LoadLocalOverrides reads <repo>/.lattice-local.yaml directly. Returns an
// empty (not nil) LocalOverrides if the file is absent or unparsable,
// matching the reference's "never block on local override parse errors"
// behavior.
func LoadLocalOverrides(repoRoot string) *LocalOverrides {
	path := filepath.Join(repoRoot, ".lattice-local.yaml")
	data, err := os.ReadFile(path) // #nosec G304 -- repoRoot is caller-controlled, not attacker input
	if err != nil {
		return &LocalOverrides{}
	}
	var lo LocalOverrides
	if err := yaml.Unmarshal(data, &lo); err != nil {
		return &LocalOverrides{}
	}
	return &lo
}
