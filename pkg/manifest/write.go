package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pyflow-dev/pyflow/pkg/errors"
)

// Write renders the Config in the native dialect and creates a new file at
// path. It refuses to overwrite an existing file: hand-edited manifests
// are never clobbered. Field coverage is intentionally partial — this
// serves the create-new-project case, not a round trip.
func (c *Config) Write(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.New(errors.ErrCodeFileExists, "`%s` already exists", filepath.Base(path))
	}

	var b strings.Builder

	b.WriteString("\n[tool.pyflow]\n")
	fmt.Fprintf(&b, "name = %q\n", c.Name)
	if c.PyVersion != nil {
		fmt.Fprintf(&b, "py_version = %q\n", c.PyVersion.StringNoPatch())
	} else {
		b.WriteString("py_version = \"3.8\"\n")
	}
	if c.Version != nil {
		fmt.Fprintf(&b, "version = %q\n", c.Version)
	} else {
		b.WriteString("version = \"0.1.0\"\n")
	}
	if len(c.Authors) > 0 {
		quoted := make([]string, len(c.Authors))
		for i, a := range c.Authors {
			quoted[i] = fmt.Sprintf("%q", a)
		}
		fmt.Fprintf(&b, "authors = [%s]\n", strings.Join(quoted, ", "))
	}
	if c.Description != "" {
		fmt.Fprintf(&b, "description = %q\n", c.Description)
	}
	if c.Homepage != "" {
		fmt.Fprintf(&b, "homepage = %q\n", c.Homepage)
	}

	b.WriteString("\n[tool.pyflow.scripts]\n")
	for _, name := range sortedKeys(c.Scripts) {
		fmt.Fprintf(&b, "%s = %q\n", name, c.Scripts[name])
	}

	b.WriteString("\n[tool.pyflow.dependencies]\n")
	writeDeps(&b, c.Reqs)

	b.WriteString("\n[tool.pyflow.dev-dependencies]\n")
	writeDeps(&b, c.DevReqs)

	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", path)
	}
	return nil
}

// writeDeps renders one dependency per line, sorted by name so repeated
// writes of the same Config produce identical files.
func writeDeps(b *strings.Builder, reqs []Req) {
	sorted := make([]Req, len(reqs))
	copy(sorted, reqs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, req := range sorted {
		b.WriteString(req.CfgString())
		b.WriteString("\n")
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
