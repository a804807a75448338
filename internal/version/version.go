// Package version implements the strict dotted-numeric version scheme used
// by addon manifests. Versions are sequences of non-negative integers
// compared component-by-component; no pre-release or build suffixes exist
// in this scheme.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalid reports a version string that is empty or contains a
	// non-numeric component.
	ErrInvalid = errors.New("invalid version")

	// ErrTooManyParts reports a version string with more than three
	// dot-separated components.
	ErrTooManyParts = errors.New("version has too many parts")
)

// Version is an ordered tuple of numeric components.
type Version []int

// Parse splits s on dots and requires every component to be a
// non-negative integer.
func Parse(s string) (Version, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalid)
	}

	parts := strings.Split(s, ".")
	v := make(Version, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		v = append(v, n)
	}

	return v, nil
}

// Compare orders two versions component-by-component, padding the shorter
// side with zero components first. It returns -1, 0 or 1.
func Compare(a, b Version) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}

// IsHigher reports whether target strictly exceeds current.
func IsHigher(target, current Version) bool {
	return Compare(target, current) > 0
}

// Pad returns a copy right-padded with zero components to at least n parts.
func (v Version) Pad(n int) Version {
	out := make(Version, len(v), n)
	copy(out, v)
	for len(out) < n {
		out = append(out, 0)
	}
	return out
}

// Bump returns the next automatic release version: same major, minor
// incremented, patch reset to zero.
func (v Version) Bump() Version {
	p := v.Pad(3)
	return Version{p[0], p[1] + 1, 0}
}

func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}
