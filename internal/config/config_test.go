package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRepoConfigDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadRepoConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultOverviewWeights(), cfg.Overview)
	assert.Equal(t, 80, cfg.Format.LineWidth)
	assert.Equal(t, 7, cfg.Claim.StaleAfterDays)
}

func TestLoadRepoConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	toml := "[format]\nline_width = 100\n\n[claim]\nstale_after_days = 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	cfg, err := LoadRepoConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Format.LineWidth)
	assert.Equal(t, 3, cfg.Claim.StaleAfterDays)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultOverviewWeights(), cfg.Overview)
}

func TestLoadUserConfigMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadUserConfig(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Clients)
}

func TestLoadLocalOverridesMissingIsEmptyNotNil(t *testing.T) {
	dir := t.TempDir()
	lo := LoadLocalOverrides(dir)
	require.NotNil(t, lo)
	assert.Equal(t, "", lo.DefaultClientID)
}

func TestLoadLocalOverridesParsesYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lattice-local.yaml"), []byte("default-client-id: K2X\n"), 0o644))
	lo := LoadLocalOverrides(dir)
	assert.Equal(t, "K2X", lo.DefaultClientID)
}
