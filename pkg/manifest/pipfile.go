package manifest

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/pyflow-dev/pyflow/pkg/errors"
)

// Pipfile parses the legacy Pipfile package-list format. Only the two
// package tables are read; Pipfile metadata ([[source]], [requires]) has
// no counterpart in the canonical model.
type Pipfile struct{}

func (p *Pipfile) Type() string              { return "Pipfile" }
func (p *Pipfile) Supports(name string) bool { return name == PipfileFilename }

// Parse reads a Pipfile into a Config carrying only Reqs and DevReqs.
// A missing file yields (nil, nil); malformed content is fatal.
func (p *Pipfile) Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading %s", path)
	}

	var file pipfileFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parsing %s", PipfileFilename)
	}

	cfg := &Config{}
	if file.Packages != nil {
		if cfg.Reqs, err = parseDeps(md, file.Packages); err != nil {
			return nil, err
		}
	}
	if file.DevPackages != nil {
		if cfg.DevReqs, err = parseDeps(md, file.DevPackages); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

type pipfileFile struct {
	Packages    map[string]toml.Primitive `toml:"packages"`
	DevPackages map[string]toml.Primitive `toml:"dev-packages"`
}
