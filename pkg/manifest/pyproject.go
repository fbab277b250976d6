package manifest

import (
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pyflow-dev/pyflow/pkg/errors"
	"github.com/pyflow-dev/pyflow/pkg/pep440"
)

// Pyproject parses pyproject.toml files. A single file may carry both a
// [tool.poetry] and a [tool.pyflow] section; the Poetry section is applied
// first into a fresh Config and the native section second, overwriting
// every field it sets. Dependency tables replace, never append.
type Pyproject struct {
	// Identity supplies the local source-control identity used as the
	// authors fallback when the native section declares `authors = []`.
	// Nil means the git config lookup.
	Identity func() []string
}

func (p *Pyproject) Type() string              { return "pyproject.toml" }
func (p *Pyproject) Supports(name string) bool { return name == CfgFilename }

// Parse reads a pyproject.toml into a Config. A missing file yields
// (nil, nil). Malformed TOML or an unparseable constraint aborts the whole
// load with a typed error; no partial Config is returned.
func (p *Pyproject) Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading %s", path)
	}

	var file pyprojectFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parsing %s", CfgFilename)
	}

	cfg := &Config{}

	// Poetry first: the native section wins on conflict.
	if file.Tool.Poetry != nil {
		if err := file.Tool.Poetry.applyTo(cfg, md); err != nil {
			return nil, err
		}
	}
	if file.Tool.Pyflow != nil {
		if err := file.Tool.Pyflow.applyTo(cfg, md, p.identity()); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (p *Pyproject) identity() func() []string {
	if p.Identity != nil {
		return p.Identity
	}
	return GitIdentity
}

// pyprojectFile mirrors the on-disk layout. Dependency values stay as
// toml.Primitive so each entry can be re-decoded as either a shorthand
// string or a table.
type pyprojectFile struct {
	Tool struct {
		Poetry *poetrySection `toml:"poetry"`
		Pyflow *pyflowSection `toml:"pyflow"`
	} `toml:"tool"`
}

type poetrySection struct {
	Name            *string                   `toml:"name"`
	Version         *string                   `toml:"version"`
	Authors         []string                  `toml:"authors"`
	License         *string                   `toml:"license"`
	Homepage        *string                   `toml:"homepage"`
	Description     *string                   `toml:"description"`
	Repository      *string                   `toml:"repository"`
	Readme          *string                   `toml:"readme"`
	Build           *string                   `toml:"build"`
	Classifiers     []string                  `toml:"classifiers"`
	Keywords        []string                  `toml:"keywords"`
	Extras          map[string]string         `toml:"extras"`
	Dependencies    map[string]toml.Primitive `toml:"dependencies"`
	DevDependencies map[string]toml.Primitive `toml:"dev-dependencies"`
}

type pyflowSection struct {
	Name            *string                   `toml:"name"`
	Version         *string                   `toml:"version"`
	PyVersion       *string                   `toml:"py_version"`
	Authors         []string                  `toml:"authors"`
	License         *string                   `toml:"license"`
	Homepage        *string                   `toml:"homepage"`
	Description     *string                   `toml:"description"`
	Repository      *string                   `toml:"repository"`
	PackageURL      *string                   `toml:"package_url"`
	Readme          *string                   `toml:"readme"`
	Build           *string                   `toml:"build"`
	Classifiers     []string                  `toml:"classifiers"`
	Keywords        []string                  `toml:"keywords"`
	Scripts         map[string]string         `toml:"scripts"`
	PythonRequires  *string                   `toml:"python_requires"`
	Dependencies    map[string]toml.Primitive `toml:"dependencies"`
	DevDependencies map[string]toml.Primitive `toml:"dev-dependencies"`
}

// applyTo copies every present Poetry field into cfg. A dependency
// literally named "python" (any case) sets the interpreter requirement
// instead of becoming a Req.
func (s *poetrySection) applyTo(cfg *Config, md toml.MetaData) error {
	if s.Name != nil {
		cfg.Name = *s.Name
	}
	if s.Authors != nil {
		cfg.Authors = s.Authors
	}
	if s.License != nil {
		cfg.License = *s.License
	}
	if s.Homepage != nil {
		cfg.Homepage = *s.Homepage
	}
	if s.Description != nil {
		cfg.Description = *s.Description
	}
	if s.Repository != nil {
		cfg.Repository = *s.Repository
	}
	if s.Readme != nil {
		cfg.Readme = *s.Readme
	}
	if s.Build != nil {
		cfg.Build = *s.Build
	}
	if s.Classifiers != nil {
		cfg.Classifiers = s.Classifiers
	}
	if s.Keywords != nil {
		cfg.Keywords = s.Keywords
	}
	if s.Extras != nil {
		cfg.Extras = s.Extras
	}
	if s.Version != nil {
		v, err := pep440.Parse(*s.Version)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidVersion, err, "version in %s", CfgFilename)
		}
		cfg.Version = &v
	}

	if s.Dependencies != nil {
		reqs, err := parseDeps(md, s.Dependencies)
		if err != nil {
			return err
		}
		cfg.Reqs = nil
		for _, req := range reqs {
			if strings.EqualFold(req.Name, "python") {
				if len(req.Constraints) > 0 {
					v := req.Constraints[0].Version
					cfg.PyVersion = &v
				}
				continue
			}
			cfg.Reqs = append(cfg.Reqs, req)
		}
	}
	if s.DevDependencies != nil {
		reqs, err := parseDeps(md, s.DevDependencies)
		if err != nil {
			return err
		}
		cfg.DevReqs = reqs
	}

	return nil
}

// applyTo copies every present native field into cfg, unconditionally
// overwriting whatever the Poetry pass set. An authors list that is
// present but empty falls back to the local source-control identity.
func (s *pyflowSection) applyTo(cfg *Config, md toml.MetaData, identity func() []string) error {
	if s.Name != nil {
		cfg.Name = *s.Name
	}
	if s.Authors != nil {
		if len(s.Authors) == 0 {
			cfg.Authors = identity()
		} else {
			cfg.Authors = s.Authors
		}
	}
	if s.License != nil {
		cfg.License = *s.License
	}
	if s.Homepage != nil {
		cfg.Homepage = *s.Homepage
	}
	if s.Description != nil {
		cfg.Description = *s.Description
	}
	if s.Repository != nil {
		cfg.Repository = *s.Repository
	}
	if s.PackageURL != nil {
		cfg.PackageURL = *s.PackageURL
	}
	if s.Readme != nil {
		cfg.Readme = *s.Readme
	}
	if s.Build != nil {
		cfg.Build = *s.Build
	}
	if s.Classifiers != nil {
		cfg.Classifiers = s.Classifiers
	}
	if s.Keywords != nil {
		cfg.Keywords = s.Keywords
	}
	if s.Scripts != nil {
		cfg.Scripts = s.Scripts
	}
	if s.PythonRequires != nil {
		cfg.PythonRequires = *s.PythonRequires
	}
	if s.Version != nil {
		v, err := pep440.Parse(*s.Version)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidVersion, err, "version in %s", CfgFilename)
		}
		cfg.Version = &v
	}
	if s.PyVersion != nil {
		v, err := pep440.Parse(*s.PyVersion)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidVersion, err, "py_version in %s", CfgFilename)
		}
		cfg.PyVersion = &v
	}

	if s.Dependencies != nil {
		reqs, err := parseDeps(md, s.Dependencies)
		if err != nil {
			return err
		}
		cfg.Reqs = reqs
	}
	if s.DevDependencies != nil {
		reqs, err := parseDeps(md, s.DevDependencies)
		if err != nil {
			return err
		}
		cfg.DevReqs = reqs
	}

	return nil
}

// depTable is the table form of a dependency declaration. `version` is
// accepted as an alias for `constrs` so Poetry-style tables decode too.
type depTable struct {
	Constrs *string  `toml:"constrs"`
	Version *string  `toml:"version"`
	Extras  []string `toml:"extras"`
	Path    *string  `toml:"path"`
	Git     *string  `toml:"git"`
	Python  *string  `toml:"python"`
}

// parseDeps converts a dependency table into Reqs. Each value is either a
// shorthand constraint string or a table with optional keys. Entries are
// emitted in name order so repeated loads of the same file yield the same
// slice; nothing downstream may rely on the on-disk table order.
func parseDeps(md toml.MetaData, deps map[string]toml.Primitive) ([]Req, error) {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Req, 0, len(names))
	for _, name := range names {
		req, err := parseDep(md, name, deps[name])
		if err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, nil
}

func parseDep(md toml.MetaData, name string, prim toml.Primitive) (Req, error) {
	req := Req{Name: name}

	// Shorthand: name = "version constraints".
	var shorthand string
	if err := md.PrimitiveDecode(prim, &shorthand); err == nil {
		constraints, err := pep440.ParseConstraints(shorthand)
		if err != nil {
			return Req{}, errors.Wrap(errors.ErrCodeInvalidConstraint, err,
				"constraints for %q in %s", name, CfgFilename)
		}
		req.Constraints = constraints
		return req, nil
	}

	var table depTable
	if err := md.PrimitiveDecode(prim, &table); err != nil {
		return Req{}, errors.Wrap(errors.ErrCodeInvalidManifest, err,
			"dependency %q in %s", name, CfgFilename)
	}

	constrs := table.Constrs
	if constrs == nil {
		constrs = table.Version
	}
	if constrs != nil {
		constraints, err := pep440.ParseConstraints(*constrs)
		if err != nil {
			return Req{}, errors.Wrap(errors.ErrCodeInvalidConstraint, err,
				"constraints for %q in %s", name, CfgFilename)
		}
		req.Constraints = constraints
	}
	if table.Extras != nil {
		req.InstallWithExtras = table.Extras
	}
	if table.Path != nil {
		req.Path = *table.Path
	}
	if table.Git != nil {
		req.Git = *table.Git
	}
	if table.Python != nil {
		c, err := pep440.ParseConstraint(*table.Python)
		if err != nil {
			return Req{}, errors.Wrap(errors.ErrCodeInvalidConstraint, err,
				"python version for %q in %s", name, CfgFilename)
		}
		req.PythonVersion = []pep440.Constraint{c}
	}

	return req, nil
}
