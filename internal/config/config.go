// Package config carries the repository-level settings for addon releases.
// Every setting has a built-in default; a kodi-repo.yaml file at the
// repository root can override individual values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// File is the optional per-repository override file.
	File = "kodi-repo.yaml"

	// ManifestName is the addon manifest file name, fixed by the addon
	// ecosystem.
	ManifestName = "addon.xml"

	// SrcDir is the embedded upstream checkout inside each addon directory.
	SrcDir = "src"
)

// Config is passed explicitly into the components that need it; it is
// never shared mutable process state.
type Config struct {
	// Provider is written into every released manifest's provider-name
	// attribute.
	Provider string `yaml:"provider"`

	// Branch is the upstream branch tracked by each embedded checkout.
	Branch string `yaml:"branch"`

	// ChangelogDepth caps how many upstream commits feed the news text.
	ChangelogDepth int `yaml:"changelog_depth"`

	// DefaultMetadata fills empty or missing manifest metadata fields.
	// Authored values are never overwritten.
	DefaultMetadata map[string]string `yaml:"default_metadata"`

	// AssetFiles are copied from the embedded checkout into the addon
	// directory on every release.
	AssetFiles []string `yaml:"asset_files"`

	// IgnorePatterns exclude build artifacts, version-control metadata and
	// editor files from the packaged archive. Patterns match base names.
	IgnorePatterns []string `yaml:"ignore_patterns"`
}

// Default returns the built-in repository settings.
func Default() Config {
	return Config{
		Provider:       "MattHuisman.nz",
		Branch:         "master",
		ChangelogDepth: 5,
		DefaultMetadata: map[string]string{
			"license": "GNU General Public License, v2",
			"website": "https://www.matthuisman.nz",
		},
		AssetFiles: []string{"icon.png", "fanart.jpg"},
		IgnorePatterns: []string{
			"__pycache__",
			".git*",
			"*.pyc",
			"*.pyo",
			"test.py",
			"*.psd",
			"*.code-workspace",
			".vscode*",
		},
	}
}

// Load returns Default overlaid with kodi-repo.yaml from root. A missing
// file is not an error.
func Load(root string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(root, File))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", File, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", File, err)
	}
	if cfg.ChangelogDepth <= 0 {
		cfg.ChangelogDepth = Default().ChangelogDepth
	}
	return cfg, nil
}
