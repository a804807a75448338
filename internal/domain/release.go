package domain

// ReleaseTarget describes the version/commit pair a release should land
// on. Zero values carry the sentinels: an empty Version means "derive the
// next version automatically", an empty Commit means "latest on the
// tracked branch".
type ReleaseTarget struct {
	Version string
	Commit  string
}

// AutomaticVersion reports whether the next version should be derived
// from the current manifest version.
func (t ReleaseTarget) AutomaticVersion() bool {
	return t.Version == ""
}

// HeadCommit reports whether the release should track the head of the
// upstream branch rather than a pinned commit.
func (t ReleaseTarget) HeadCommit() bool {
	return t.Commit == ""
}

// Baseline is the version/commit pair an addon was at before
// reconciliation began, used to decide whether a release is warranted.
type Baseline struct {
	Version string
	Commit  string // empty when the embedded checkout reference was unreadable
}

// Release describes a completed addon build.
type Release struct {
	Addon   string
	Version string
	Commit  string // short id
	Archive string
}
