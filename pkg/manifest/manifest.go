// Package manifest implements the descriptor-resolution core: it reads the
// supported project-descriptor dialects (pyproject.toml with its native and
// Poetry sections, Pipfile, requirements.txt, installed-wheel metadata) and
// produces one canonical Config, expanding local path dependencies
// transitively along the way.
//
// The package is synchronous and free of shared state: every Parse call
// constructs and returns its own Config, and file reads are scoped
// (open, read fully, close). Callers that want concurrency parallelize
// above this package, one Config per call.
//
// Parse failures are fatal to the whole load operation: no partial Config
// is ever returned. A missing top-level descriptor is an absence, not an
// error — Parse returns (nil, nil).
package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/pyflow-dev/pyflow/pkg/pep440"
)

// Well-known descriptor filenames.
const (
	CfgFilename          = "pyproject.toml"
	PipfileFilename      = "Pipfile"
	RequirementsFilename = "requirements.txt"
)

// Adapter reads one descriptor dialect into a Config fragment.
type Adapter interface {
	// Parse reads the descriptor at path. A missing file yields (nil, nil);
	// malformed content yields a typed error and no Config.
	Parse(path string) (*Config, error)
	// Supports reports whether this adapter handles the given filename.
	Supports(filename string) bool
	// Type returns the dialect identifier (e.g., "pyproject.toml").
	Type() string
}

// Detect finds an adapter that supports the given file path.
// Returns an error if no adapter matches.
func Detect(path string, adapters ...Adapter) (Adapter, error) {
	name := filepath.Base(path)
	for _, a := range adapters {
		if a.Supports(name) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("unsupported descriptor: %s", name)
}

// Config is one project's full canonical descriptor. All fields are
// optional except the two requirement lists, which default to empty.
// Duplicate names inside a list are legitimate (they arise from merging
// multiple sources) and must be tolerated downstream.
type Config struct {
	Name           string
	PyVersion      *pep440.Version // required interpreter version
	Version        *pep440.Version
	Authors        []string
	License        string
	Extras         map[string]string // extra name -> description
	Description    string
	Classifiers    []string
	Keywords       []string
	Homepage       string
	Repository     string
	RepoURL        string
	PackageURL     string
	Readme         string
	Build          string // python file used to build non-python extensions
	Scripts        map[string]string // script name -> module:function
	PythonRequires string

	Reqs    []Req // runtime dependencies
	DevReqs []Req // development-only dependencies
}

// Req is a single dependency edge. A Req with neither Path nor Git set is
// a registry dependency; Path marks it local, Git remote-VCS. When both
// are set, Path takes precedence during local resolution.
type Req struct {
	Name              string
	Constraints       []pep440.Constraint // conjunctive; empty means any version
	Extra             string              // extra this req was declared under
	SysPlatform       string              // platform filter from markers
	PythonVersion     []pep440.Constraint // nested interpreter requirement
	InstallWithExtras []string            // extras to install with the dep
	Path              string              // local directory
	Git               string              // VCS URL
}

// IsLocal reports whether the requirement points at a local directory.
func (r Req) IsLocal() bool { return r.Path != "" }

// IsVCS reports whether the requirement points at a source-control URL.
func (r Req) IsVCS() bool { return r.Path == "" && r.Git != "" }
