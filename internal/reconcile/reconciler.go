// Package reconcile drives a single addon release from revert through
// packaging: it restores the working tree, pulls the upstream branch,
// pins the release commit, decides the next version, rewrites the
// manifest and builds the distributable archive.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinuva/kodi-repo/internal/adapters"
	"github.com/tinuva/kodi-repo/internal/changelog"
	"github.com/tinuva/kodi-repo/internal/config"
	"github.com/tinuva/kodi-repo/internal/domain"
	"github.com/tinuva/kodi-repo/internal/fsutil"
	"github.com/tinuva/kodi-repo/internal/index"
	"github.com/tinuva/kodi-repo/internal/manifest"
	"github.com/tinuva/kodi-repo/internal/version"
)

var (
	// ErrAddonNotFound reports a named addon with no directory.
	ErrAddonNotFound = errors.New("addon directory not found")

	// ErrMissingSource reports an addon whose embedded checkout is absent
	// even after initialization.
	ErrMissingSource = errors.New("addon source checkout is missing")

	// ErrCheckoutMismatch reports a pinned checkout that did not land on
	// the requested commit.
	ErrCheckoutMismatch = errors.New("could not check out requested commit")

	// ErrAlreadyUpToDate reports that automatic mode found no new upstream
	// commits. This is the expected nothing-changed outcome, not a defect.
	ErrAlreadyUpToDate = errors.New("already up to date")

	// ErrVersionNotHigher reports an explicit target version that does not
	// exceed the current manifest version.
	ErrVersionNotHigher = errors.New("target version is not higher than current version")

	// ErrRevertFailed reports a failure while discarding local changes.
	ErrRevertFailed = errors.New("revert failed")
)

const shortCommitLen = 7

// Reconciler releases addons under Root using an external git
// installation behind the adapters.Git contract.
type Reconciler struct {
	root   string
	git    adapters.Git
	cfg    config.Config
	logger *slog.Logger

	now func() time.Time
}

func New(root string, git adapters.Git, cfg config.Config, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		root:   root,
		git:    git,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Revert discards local modifications and untracked files in the addon's
// directory and restores the embedded checkout to its committed
// reference when one exists.
func (r *Reconciler) Revert(ctx context.Context, addon string) error {
	addonPath := filepath.Join(r.root, addon)
	if err := r.git.Revert(ctx, addonPath); err != nil {
		return fmt.Errorf("%w: %v", ErrRevertFailed, err)
	}

	srcPath := filepath.Join(addonPath, config.SrcDir)
	if _, err := os.Stat(srcPath); err != nil {
		return nil
	}
	if err := r.git.UpdateSubtree(ctx, addonPath, config.SrcDir); err != nil {
		return fmt.Errorf("%w: %v", ErrRevertFailed, err)
	}
	if err := r.git.HardReset(ctx, srcPath); err != nil {
		return fmt.Errorf("%w: %v", ErrRevertFailed, err)
	}
	return nil
}

// Update releases one addon against target and returns the built release.
func (r *Reconciler) Update(ctx context.Context, addon string, target domain.ReleaseTarget) (*domain.Release, error) {
	addonPath := filepath.Join(r.root, addon)
	manifestPath := filepath.Join(addonPath, config.ManifestName)
	srcPath := filepath.Join(addonPath, config.SrcDir)
	srcManifestPath := filepath.Join(srcPath, config.ManifestName)

	r.logger.Info("release_start",
		slog.String("addon", addon),
		slog.String("version", orSentinel(target.Version, "auto")),
		slog.String("commit", orSentinel(target.Commit, "head")),
	)

	if _, err := os.Stat(addonPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAddonNotFound, addonPath)
	}

	if err := r.Revert(ctx, addon); err != nil {
		return nil, err
	}

	// First release of an addon: the embedded checkout has never been
	// initialized, so its manifest is absent.
	if _, err := os.Stat(srcManifestPath); err != nil {
		if err := r.git.InitSubtree(ctx, addonPath, config.SrcDir, false); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(srcPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingSource, srcPath)
	}

	baseline := r.baseline(ctx, manifestPath, srcPath)

	if err := r.git.FetchAndMerge(ctx, srcPath, r.cfg.Branch); err != nil {
		return nil, err
	}
	if err := r.git.InitSubtree(ctx, srcPath, "", false); err != nil {
		return nil, err
	}

	if !target.HeadCommit() {
		if err := r.git.Checkout(ctx, srcPath, target.Commit); err != nil {
			return nil, err
		}
	}
	commit, err := r.git.CurrentCommit(ctx, srcPath)
	if err != nil {
		return nil, err
	}
	if !target.HeadCommit() && !strings.HasPrefix(commit, target.Commit) {
		return nil, fmt.Errorf("%w: #%s", ErrCheckoutMismatch, target.Commit)
	}
	if target.AutomaticVersion() && baseline.Commit == commit {
		return nil, fmt.Errorf("%w: %s %s is already using #%s",
			ErrAlreadyUpToDate, addon, baseline.Version, shortCommit(commit))
	}

	releaseVersion, err := r.decideVersion(target, baseline)
	if err != nil {
		return nil, err
	}
	shortID := shortCommit(commit)

	if err := r.writeManifest(ctx, srcManifestPath, manifestPath, srcPath, releaseVersion, shortID, baseline); err != nil {
		return nil, err
	}

	archive, err := r.pack(addon, addonPath, srcPath, manifestPath, releaseVersion)
	if err != nil {
		return nil, err
	}

	r.logger.Info("release_built",
		slog.String("addon", addon),
		slog.String("version", releaseVersion),
		slog.String("commit", shortID),
	)

	return &domain.Release{
		Addon:   addon,
		Version: releaseVersion,
		Commit:  shortID,
		Archive: archive,
	}, nil
}

// UpdateAll releases every addon in turn, best effort: a failing addon is
// logged and the rest continue.
func (r *Reconciler) UpdateAll(ctx context.Context) ([]*domain.Release, error) {
	addons, err := index.Addons(r.root)
	if err != nil {
		return nil, err
	}

	var releases []*domain.Release
	for _, addon := range addons {
		release, err := r.Update(ctx, addon, domain.ReleaseTarget{})
		if err != nil {
			r.logger.Warn("release_failed",
				slog.String("addon", addon),
				slog.String("error", err.Error()),
			)
			continue
		}
		releases = append(releases, release)
	}
	return releases, nil
}

// baseline is best effort: an unreadable manifest or checkout reference
// falls back to a first-release baseline.
func (r *Reconciler) baseline(ctx context.Context, manifestPath, srcPath string) domain.Baseline {
	base := domain.Baseline{Version: "0.0.0"}

	doc, err := manifest.Load(manifestPath)
	if err != nil {
		return base
	}
	if v := doc.Version(); v != "" {
		base.Version = v
	}
	if commit, err := r.git.CurrentCommit(ctx, srcPath); err == nil {
		base.Commit = commit
	}
	return base
}

func (r *Reconciler) decideVersion(target domain.ReleaseTarget, base domain.Baseline) (string, error) {
	current, err := version.Parse(base.Version)
	if err != nil {
		return "", fmt.Errorf("current version %q: %w", base.Version, err)
	}

	if target.AutomaticVersion() {
		return current.Bump().String(), nil
	}

	requested, err := version.Parse(target.Version)
	if err != nil {
		return "", err
	}
	if len(requested) > 3 {
		return "", fmt.Errorf("%w: %q", version.ErrTooManyParts, target.Version)
	}
	if !version.IsHigher(requested, current) {
		return "", fmt.Errorf("%w: %s <= %s", ErrVersionNotHigher, target.Version, base.Version)
	}
	return requested.Pad(3).String(), nil
}

// writeManifest composes the full new manifest in memory before touching
// the addon-level file.
func (r *Reconciler) writeManifest(ctx context.Context, srcManifestPath, manifestPath, srcPath, releaseVersion, shortID string, base domain.Baseline) error {
	doc, err := manifest.Load(srcManifestPath)
	if err != nil {
		return err
	}

	doc.SetAttributes(map[string]string{
		"version":       releaseVersion,
		"provider-name": r.cfg.Provider,
	})

	rangeSpec := changelog.RangeSpec(base.Commit, shortID)
	messages, err := r.git.LogMessages(ctx, srcPath, rangeSpec, r.cfg.ChangelogDepth)
	if err != nil {
		return err
	}
	changes := changelog.Format(messages, r.cfg.ChangelogDepth)
	news := changelog.NewsBlock(releaseVersion, shortID, r.now(), changes)

	defaults := make(map[string]string, len(r.cfg.DefaultMetadata)+1)
	for key, value := range r.cfg.DefaultMetadata {
		defaults[key] = value
	}
	defaults["news"] = news
	doc.FillMetadataDefaults(defaults)

	return doc.WriteFile(manifestPath)
}

// pack copies the addon assets, stages the source tree and compresses it
// into the versioned archive plus the -latest copy.
func (r *Reconciler) pack(addon, addonPath, srcPath, manifestPath, releaseVersion string) (string, error) {
	for _, name := range r.cfg.AssetFiles {
		src := filepath.Join(srcPath, name)
		dst := filepath.Join(addonPath, name)
		if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := fsutil.CopyFile(src, dst); err != nil {
			return "", err
		}
	}

	stageDir := filepath.Join(addonPath, addon)
	if err := os.RemoveAll(stageDir); err != nil {
		return "", err
	}
	defer os.RemoveAll(stageDir)

	if err := fsutil.CopyTree(srcPath, stageDir, r.cfg.IgnorePatterns); err != nil {
		return "", err
	}
	if err := fsutil.CopyFile(manifestPath, filepath.Join(stageDir, config.ManifestName)); err != nil {
		return "", err
	}

	archivePath := filepath.Join(addonPath, fmt.Sprintf("%s-%s.zip", addon, releaseVersion))
	if err := createZip(archivePath, stageDir); err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Base(archivePath), err)
	}
	if err := fsutil.CopyFile(archivePath, filepath.Join(addonPath, addon+"-latest.zip")); err != nil {
		return "", err
	}
	return archivePath, nil
}

func shortCommit(commit string) string {
	if len(commit) > shortCommitLen {
		return commit[:shortCommitLen]
	}
	return commit
}

func orSentinel(value, sentinel string) string {
	if value == "" {
		return sentinel
	}
	return value
}
