// Package pep440 implements the version and constraint primitives used by
// the descriptor-resolution core.
//
// Python package versions are close to, but not quite, semantic versions:
// one- and two-part versions are common ("3.8", "2"), and pre-release tags
// use the PEP 440 spellings ("1.0.0a1", "2.1rc2"). Because of that we parse
// versions with our own anchored regex rather than a semver library.
package pep440

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is a validated package or interpreter version.
// Format: MAJOR[.MINOR[.PATCH]][{a|b|rc|dep}N]
// A Version is immutable once constructed.
type Version struct {
	raw   string
	major int
	minor int
	patch int
	pre   preRelease
}

// preRelease is an optional pre-release tag. A zero preRelease means a
// final release, which sorts after any pre-release of the same triple.
type preRelease struct {
	label string // "a", "b", "rc" or "dep"
	num   int
}

// versionRegex matches versions as they appear in Python descriptors:
//   - 1, 3.8, 1.2.3
//   - optional v-prefix: v1.2.3
//   - pre-release tag, optionally dot- or dash-separated: 1.0.0a1, 1.0.0-rc.2
var versionRegex = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:[-.]?(a|b|rc|dep)\.?(\d*))?$`)

// preOrder ranks pre-release labels. The empty label (final release) ranks
// highest.
var preOrder = map[string]int{"dep": 0, "a": 1, "b": 2, "rc": 3, "": 4}

// Parse creates a validated Version from a string.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	m := versionRegex.FindStringSubmatch(trimmed)
	if m == nil {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}

	major, _ := strconv.Atoi(m[1])
	var minor, patch int
	if m[2] != "" {
		minor, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		patch, _ = strconv.Atoi(m[3])
	}

	var pre preRelease
	if m[4] != "" {
		pre.label = m[4]
		if m[5] != "" {
			pre.num, _ = strconv.Atoi(m[5])
		}
	}

	return Version{raw: trimmed, major: major, minor: minor, patch: patch, pre: pre}, nil
}

// MustParse creates a Version or panics. Use only for constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// New creates a Version from explicit components.
func New(major, minor, patch int) Version {
	return Version{
		raw:   fmt.Sprintf("%d.%d.%d", major, minor, patch),
		major: major,
		minor: minor,
		patch: patch,
	}
}

// Major returns the major version number.
func (v Version) Major() int { return v.major }

// Minor returns the minor version number.
func (v Version) Minor() int { return v.minor }

// Patch returns the patch version number.
func (v Version) Patch() int { return v.patch }

// IsPrerelease reports whether this version carries a pre-release tag.
func (v Version) IsPrerelease() bool { return v.pre.label != "" }

// IsZero reports whether this is a zero-value Version.
func (v Version) IsZero() bool { return v.raw == "" }

// components reports how many numeric components the source string spelled
// out ("3.8" has two). Constraint ranges widen around omitted components.
func (v Version) components() int {
	base, _, _ := strings.Cut(strings.TrimPrefix(v.raw, "v"), "-")
	n := 1
	for _, part := range strings.Split(base, ".")[1:] {
		if part == "" || !isDigits(part) {
			break
		}
		n++
	}
	return n
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// String returns the canonical rendering, e.g. "1.2.3" or "1.0.0a1".
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
	if v.pre.label != "" {
		s += fmt.Sprintf("%s%d", v.pre.label, v.pre.num)
	}
	return s
}

// StringNoPatch returns the version without its patch component, e.g. "3.8".
func (v Version) StringNoPatch() string {
	return fmt.Sprintf("%d.%d", v.major, v.minor)
}

// Compare compares two versions.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
// Pre-release versions sort below the corresponding final release.
func (v Version) Compare(other Version) int {
	if v.major != other.major {
		return intCompare(v.major, other.major)
	}
	if v.minor != other.minor {
		return intCompare(v.minor, other.minor)
	}
	if v.patch != other.patch {
		return intCompare(v.patch, other.patch)
	}
	if c := intCompare(preOrder[v.pre.label], preOrder[other.pre.label]); c != 0 {
		return c
	}
	return intCompare(v.pre.num, other.pre.num)
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

// Equal reports whether v and other denote the same version.
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

func intCompare(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Versions is a sortable slice of Version.
type Versions []Version

func (v Versions) Len() int           { return len(v) }
func (v Versions) Swap(i, j int)      { v[i], v[j] = v[j], v[i] }
func (v Versions) Less(i, j int) bool { return v[i].Less(v[j]) }
