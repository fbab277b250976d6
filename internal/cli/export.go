package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pyflow-dev/pyflow/pkg/manifest"
)

// configView is the JSON shape of a project descriptor. Versions and
// constraints are rendered as strings so the output is stable and readable
// by external tools.
type configView struct {
	Name      string            `json:"name,omitempty"`
	Version   string            `json:"version,omitempty"`
	PyVersion string            `json:"py_version,omitempty"`
	Authors   []string          `json:"authors,omitempty"`
	License   string            `json:"license,omitempty"`
	Homepage  string            `json:"homepage,omitempty"`
	Scripts   map[string]string `json:"scripts,omitempty"`
	Reqs      []reqView         `json:"dependencies"`
	DevReqs   []reqView         `json:"dev_dependencies,omitempty"`
}

type reqView struct {
	Name        string `json:"name"`
	Constraints string `json:"constraints,omitempty"`
	Path        string `json:"path,omitempty"`
	Git         string `json:"git,omitempty"`
	SysPlatform string `json:"sys_platform,omitempty"`
}

// toView converts a Config into its JSON representation.
func toView(cfg *manifest.Config) configView {
	v := configView{
		Name:     cfg.Name,
		Authors:  cfg.Authors,
		License:  cfg.License,
		Homepage: cfg.Homepage,
		Scripts:  cfg.Scripts,
		Reqs:     reqViews(cfg.Reqs),
	}
	if cfg.Version != nil {
		v.Version = cfg.Version.String()
	}
	if cfg.PyVersion != nil {
		v.PyVersion = cfg.PyVersion.StringNoPatch()
	}
	if len(cfg.DevReqs) > 0 {
		v.DevReqs = reqViews(cfg.DevReqs)
	}
	return v
}

func reqViews(reqs []manifest.Req) []reqView {
	views := make([]reqView, 0, len(reqs))
	for _, r := range reqs {
		rv := reqView{
			Name:        r.Name,
			Path:        r.Path,
			Git:         r.Git,
			SysPlatform: r.SysPlatform,
		}
		if len(r.Constraints) > 0 {
			rv.Constraints = r.ConstraintsString()
		}
		views = append(views, rv)
	}
	return views
}

// writeJSON serializes cfg as indented JSON to the writer.
func writeJSON(cfg *manifest.Config, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toView(cfg))
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
