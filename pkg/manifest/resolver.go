package manifest

import (
	"path/filepath"
)

// ExpandLocalReqs finds every requirement whose Path is set, discovers
// additional requirements inside the referenced directory, and appends
// them to the list the triggering requirement came from. The path
// requirement itself is kept.
//
// Discovery order inside each directory:
//  1. a requirements.txt, via the Requirements adapter
//  2. a pyproject.toml, via the full Pyproject adapter (runtime Reqs only;
//     the nested project's dev requirements and metadata are discarded)
//  3. installed-wheel dist-info folders among the immediate children
//
// Newly appended path requirements are expanded in turn, so a chain of
// local projects unwinds to arbitrary depth. A set of canonical directory
// paths visited during this call bounds the recursion: a repeat visit
// (including a cycle between two local projects) is silently skipped.
//
// Output ordering is append-order across the three discovery steps, across
// path requirements in input order. Missing discovery files skip their
// step; a malformed discovered descriptor aborts the whole expansion.
func (c *Config) ExpandLocalReqs() error {
	visited := make(map[string]bool)

	found, err := expandPathReqs(c.Reqs, false, visited)
	if err != nil {
		return err
	}
	c.Reqs = append(c.Reqs, found...)

	found, err = expandPathReqs(c.DevReqs, true, visited)
	if err != nil {
		return err
	}
	c.DevReqs = append(c.DevReqs, found...)

	return nil
}

// expandPathReqs collects the requirements discovered under every path
// requirement in reqs. The dev flag selects which list of a discovered
// requirement file feeds the result, mirroring the list the triggering
// requirement came from.
func expandPathReqs(reqs []Req, dev bool, visited map[string]bool) ([]Req, error) {
	var result []Req
	for _, req := range reqs {
		if req.Path == "" {
			continue
		}

		dir, err := filepath.Abs(req.Path)
		if err != nil {
			continue
		}
		dir = filepath.Clean(dir)
		if visited[dir] {
			continue
		}
		visited[dir] = true

		var found []Req

		cfg, err := (&Requirements{}).Parse(filepath.Join(dir, RequirementsFilename))
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			if dev {
				found = append(found, cfg.DevReqs...)
			} else {
				found = append(found, cfg.Reqs...)
			}
		}

		cfg, err = (&Pyproject{}).Parse(filepath.Join(dir, CfgFilename))
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			found = append(found, cfg.Reqs...)
		}

		wheels, err := ScanDistInfo(dir)
		if err != nil {
			return nil, err
		}
		for _, w := range wheels {
			found = append(found, w.RequiresDist...)
		}

		nested, err := expandPathReqs(found, dev, visited)
		if err != nil {
			return nil, err
		}
		result = append(result, found...)
		result = append(result, nested...)
	}
	return result, nil
}
