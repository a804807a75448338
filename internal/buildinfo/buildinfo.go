// Package buildinfo exposes version information stamped at build time.
package buildinfo

// Version is overridden with -ldflags when cutting a release.
var Version = "dev"
