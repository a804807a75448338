package adapters

import "context"

// Git provides the version-control operations the tool delegates to an
// external git installation. Every workdir argument is the directory the
// command runs against.
type Git interface {
	// Revert discards local modifications and untracked files in workdir.
	Revert(ctx context.Context, workdir string) error

	// HardReset restores workdir to its committed reference.
	HardReset(ctx context.Context, workdir string) error

	// CurrentCommit reports the full commit id workdir is pinned to.
	CurrentCommit(ctx context.Context, workdir string) (string, error)

	// FetchAndMerge fetches branch from the tracked remote and merges it
	// into workdir.
	FetchAndMerge(ctx context.Context, workdir, branch string) error

	// Checkout moves workdir to ref.
	Checkout(ctx context.Context, workdir, ref string) error

	// LogMessages returns full commit messages for rangeSpec, most recent
	// first, at most limit entries. The changelog.AllHistory sentinel
	// selects every commit reachable from the current reference.
	LogMessages(ctx context.Context, workdir, rangeSpec string, limit int) ([]string, error)

	// InitSubtree initializes and updates the named embedded checkout of
	// workdir. An empty path covers all embedded checkouts; recursive
	// descends into nested ones.
	InitSubtree(ctx context.Context, workdir, path string, recursive bool) error

	// UpdateSubtree updates the named embedded checkout to its recorded
	// reference without initializing it.
	UpdateSubtree(ctx context.Context, workdir, path string) error

	// Commit records staged and tracked changes in workdir with message.
	Commit(ctx context.Context, workdir, message string) error

	// Push publishes workdir's current branch to remote.
	Push(ctx context.Context, workdir, remote string, force bool) error
}
