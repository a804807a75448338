// Package index rebuilds the repository-wide addons.xml and its md5
// sidecar from the per-addon manifests. The index is derived state: every
// rebuild starts from scratch and never merges with a prior index.
package index

import (
	"crypto/md5"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/tinuva/kodi-repo/internal/config"
	"github.com/tinuva/kodi-repo/internal/fsutil"
	"github.com/tinuva/kodi-repo/internal/manifest"
)

const (
	// FileName is the aggregate manifest at the repository root.
	FileName = "addons.xml"

	// ChecksumName is the sidecar carrying the index md5.
	ChecksumName = "addons.xml.md5"
)

// Addons lists the immediate subdirectories of root in directory-listing
// order, skipping version-control metadata.
func Addons(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var addons []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ".git" {
			continue
		}
		addons = append(addons, entry.Name())
	}
	return addons, nil
}

// Builder regenerates the index for one repository root.
type Builder struct {
	Root   string
	Logger *slog.Logger
}

// Rebuild aggregates every readable addon manifest into a fresh
// addons.xml, then writes the md5 sidecar over the serialized bytes.
// Addons without a readable manifest are skipped.
func (b *Builder) Rebuild() error {
	indexPath := filepath.Join(b.Root, FileName)
	checksumPath := filepath.Join(b.Root, ChecksumName)

	oldSum := "absent"
	if sum, err := fsutil.FileMD5(indexPath); err == nil {
		oldSum = sum
	}

	addons, err := Addons(b.Root)
	if err != nil {
		return err
	}

	root := etree.NewElement("addons")
	count := 0
	for _, addon := range addons {
		doc, err := manifest.Load(filepath.Join(b.Root, addon, config.ManifestName))
		if err != nil {
			continue
		}
		root.AddChild(doc.Root().Copy())
		count++
	}

	data, err := manifest.Serialize(root)
	if err != nil {
		return err
	}
	if err := os.WriteFile(indexPath, data, 0o644); err != nil {
		return err
	}

	sum := fmt.Sprintf("%x", md5.Sum(data))
	sidecar := fmt.Sprintf("%s %s", sum, FileName)
	if err := os.WriteFile(checksumPath, []byte(sidecar), 0o644); err != nil {
		return err
	}

	b.Logger.Info("index_rebuilt",
		slog.String("old_md5", oldSum),
		slog.String("md5", sum),
		slog.Int("addons", count),
	)
	return nil
}
