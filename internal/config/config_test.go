package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, "master", cfg.Branch)
	require.Equal(t, 5, cfg.ChangelogDepth)
	require.NotEmpty(t, cfg.Provider)
	require.Contains(t, cfg.DefaultMetadata, "license")
	require.Contains(t, cfg.DefaultMetadata, "website")
	require.Contains(t, cfg.IgnorePatterns, "*.pyc")
	require.Contains(t, cfg.AssetFiles, "icon.png")
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	root := t.TempDir()
	contents := "provider: Example.org\nbranch: main\nchangelog_depth: 10\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, File), []byte(contents), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	require.Equal(t, "Example.org", cfg.Provider)
	require.Equal(t, "main", cfg.Branch)
	require.Equal(t, 10, cfg.ChangelogDepth)
	// Untouched settings keep their defaults.
	require.Equal(t, Default().DefaultMetadata, cfg.DefaultMetadata)
	require.Equal(t, Default().IgnorePatterns, cfg.IgnorePatterns)
}

func TestLoadMalformed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, File), []byte("provider: [unterminated"), 0o644))

	_, err := Load(root)
	require.Error(t, err)
}
