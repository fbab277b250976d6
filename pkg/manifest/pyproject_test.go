package manifest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pyflow-dev/pyflow/pkg/errors"
	"github.com/pyflow-dev/pyflow/pkg/pep440"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func parsePyproject(t *testing.T, content string) *Config {
	t.Helper()
	parser := &Pyproject{Identity: func() []string { return nil }}
	cfg, err := parser.Parse(writeFixture(t, "pyproject.toml", content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("Parse returned nil Config for existing file")
	}
	return cfg
}

func TestPyproject_Supports(t *testing.T) {
	parser := &Pyproject{}

	tests := []struct {
		filename string
		want     bool
	}{
		{"pyproject.toml", true},
		{"Pyproject.toml", false},
		{"Pipfile", false},
		{"requirements.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := parser.Supports(tt.filename); got != tt.want {
				t.Errorf("Supports(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestPyproject_NativeDependencies(t *testing.T) {
	cfg := parsePyproject(t, `
[tool.pyflow]
name = "myproj"

[tool.pyflow.dependencies]
requests = ">=2.0,<3.0"
`)

	if cfg.Name != "myproj" {
		t.Errorf("Name = %q, want %q", cfg.Name, "myproj")
	}
	if len(cfg.Reqs) != 1 {
		t.Fatalf("got %d reqs, want 1", len(cfg.Reqs))
	}

	req := cfg.Reqs[0]
	if req.Name != "requests" {
		t.Errorf("Name = %q, want %q", req.Name, "requests")
	}
	if req.Path != "" || req.Git != "" {
		t.Errorf("Path/Git = %q/%q, want unset", req.Path, req.Git)
	}
	if len(req.Constraints) != 2 {
		t.Fatalf("got %d constraints, want 2", len(req.Constraints))
	}
	if req.Constraints[0].Op != pep440.OpGte || req.Constraints[0].Version.String() != "2.0.0" {
		t.Errorf("first constraint = %s, want >=2.0.0", req.Constraints[0])
	}
	if req.Constraints[1].Op != pep440.OpLt || req.Constraints[1].Version.String() != "3.0.0" {
		t.Errorf("second constraint = %s, want <3.0.0", req.Constraints[1])
	}
}

// Shorthand and table form must produce structurally equal Reqs.
func TestPyproject_DepShapeEquivalence(t *testing.T) {
	shorthand := parsePyproject(t, `
[tool.pyflow.dependencies]
foo = ">=1.0"
`)
	table := parsePyproject(t, `
[tool.pyflow.dependencies]
foo = { constrs = ">=1.0" }
`)

	if len(shorthand.Reqs) != 1 || len(table.Reqs) != 1 {
		t.Fatalf("got %d/%d reqs, want 1/1", len(shorthand.Reqs), len(table.Reqs))
	}
	if !reflect.DeepEqual(shorthand.Reqs[0], table.Reqs[0]) {
		t.Errorf("shorthand %+v != table %+v", shorthand.Reqs[0], table.Reqs[0])
	}
}

func TestPyproject_DepTableFields(t *testing.T) {
	cfg := parsePyproject(t, `
[tool.pyflow.dependencies]
local = { path = "../local", extras = ["full"] }
remote = { git = "https://github.com/example/remote", constrs = ">=0.5" }
pinned = { version = "==1.2.3", python = ">=3.7" }
`)

	byName := map[string]Req{}
	for _, req := range cfg.Reqs {
		byName[req.Name] = req
	}

	local := byName["local"]
	if local.Path != "../local" {
		t.Errorf("local.Path = %q, want %q", local.Path, "../local")
	}
	if !local.IsLocal() {
		t.Error("local.IsLocal() = false, want true")
	}
	if len(local.Constraints) != 0 {
		t.Errorf("local.Constraints = %v, want empty (any version)", local.Constraints)
	}
	if !reflect.DeepEqual(local.InstallWithExtras, []string{"full"}) {
		t.Errorf("local.InstallWithExtras = %v, want [full]", local.InstallWithExtras)
	}

	remote := byName["remote"]
	if !remote.IsVCS() {
		t.Error("remote.IsVCS() = false, want true")
	}
	if len(remote.Constraints) != 1 || remote.Constraints[0].Op != pep440.OpGte {
		t.Errorf("remote.Constraints = %v, want [>=0.5.0]", remote.Constraints)
	}

	// `version` accepted as alias for `constrs`
	pinned := byName["pinned"]
	if len(pinned.Constraints) != 1 || pinned.Constraints[0].Version.String() != "1.2.3" {
		t.Errorf("pinned.Constraints = %v, want [==1.2.3]", pinned.Constraints)
	}
	if len(pinned.PythonVersion) != 1 || pinned.PythonVersion[0].Op != pep440.OpGte {
		t.Errorf("pinned.PythonVersion = %v, want [>=3.7.0]", pinned.PythonVersion)
	}
}

// The native section overwrites every field the Poetry section set.
func TestPyproject_NativeOverridesPoetry(t *testing.T) {
	cfg := parsePyproject(t, `
[tool.poetry]
name = "poetry-name"
version = "1.0.0"
license = "MIT"
description = "poetry description"

[tool.poetry.dependencies]
flask = ">=1.0"
click = ">=7.0"

[tool.pyflow]
name = "pyflow-name"
version = "2.0.0"

[tool.pyflow.dependencies]
requests = ">=2.0"
`)

	if cfg.Name != "pyflow-name" {
		t.Errorf("Name = %q, want native value %q", cfg.Name, "pyflow-name")
	}
	if cfg.Version == nil || cfg.Version.String() != "2.0.0" {
		t.Errorf("Version = %v, want 2.0.0", cfg.Version)
	}
	// Fields only Poetry set are kept.
	if cfg.License != "MIT" {
		t.Errorf("License = %q, want %q", cfg.License, "MIT")
	}
	if cfg.Description != "poetry description" {
		t.Errorf("Description = %q, want poetry value", cfg.Description)
	}
	// Dependency lists replace, never append.
	if len(cfg.Reqs) != 1 || cfg.Reqs[0].Name != "requests" {
		t.Errorf("Reqs = %+v, want only requests", cfg.Reqs)
	}
}

func TestPyproject_PoetryOnly(t *testing.T) {
	cfg := parsePyproject(t, `
[tool.poetry]
name = "poetry-proj"
authors = ["A <a@example.com>"]

[tool.poetry.dependencies]
flask = "^1.1"
`)

	if cfg.Name != "poetry-proj" {
		t.Errorf("Name = %q, want %q", cfg.Name, "poetry-proj")
	}
	if !reflect.DeepEqual(cfg.Authors, []string{"A <a@example.com>"}) {
		t.Errorf("Authors = %v", cfg.Authors)
	}
	if len(cfg.Reqs) != 1 || cfg.Reqs[0].Name != "flask" {
		t.Fatalf("Reqs = %+v, want only flask", cfg.Reqs)
	}
	if cfg.Reqs[0].Constraints[0].Op != pep440.OpCaret {
		t.Errorf("op = %v, want caret", cfg.Reqs[0].Constraints[0].Op)
	}
}

// A Poetry dependency named "python" (any case) sets the interpreter
// requirement and never appears in Reqs.
func TestPyproject_PythonAsDependency(t *testing.T) {
	for _, spelling := range []string{"python", "Python"} {
		t.Run(spelling, func(t *testing.T) {
			cfg := parsePyproject(t, `
[tool.poetry.dependencies]
`+spelling+` = "^3.7"
requests = ">=2.0"
`)

			for _, req := range cfg.Reqs {
				if req.Name == spelling {
					t.Errorf("%q appears in Reqs", spelling)
				}
			}
			if cfg.PyVersion == nil {
				t.Fatal("PyVersion not set")
			}
			if got := cfg.PyVersion.String(); got != "3.7.0" {
				t.Errorf("PyVersion = %s, want 3.7.0", got)
			}
		})
	}
}

func TestPyproject_AuthorFallback(t *testing.T) {
	identity := func() []string { return []string{"Local User <local@example.com>"} }

	t.Run("empty list falls back", func(t *testing.T) {
		parser := &Pyproject{Identity: identity}
		cfg, err := parser.Parse(writeFixture(t, "pyproject.toml", `
[tool.pyflow]
authors = []
`))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		want := []string{"Local User <local@example.com>"}
		if !reflect.DeepEqual(cfg.Authors, want) {
			t.Errorf("Authors = %v, want %v", cfg.Authors, want)
		}
	})

	t.Run("explicit authors kept", func(t *testing.T) {
		parser := &Pyproject{Identity: identity}
		cfg, err := parser.Parse(writeFixture(t, "pyproject.toml", `
[tool.pyflow]
authors = ["A"]
`))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if !reflect.DeepEqual(cfg.Authors, []string{"A"}) {
			t.Errorf("Authors = %v, want [A]", cfg.Authors)
		}
	})

	t.Run("absent authors untouched", func(t *testing.T) {
		parser := &Pyproject{Identity: identity}
		cfg, err := parser.Parse(writeFixture(t, "pyproject.toml", `
[tool.poetry]
authors = ["P"]

[tool.pyflow]
name = "x"
`))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if !reflect.DeepEqual(cfg.Authors, []string{"P"}) {
			t.Errorf("Authors = %v, want Poetry value [P]", cfg.Authors)
		}
	})
}

func TestPyproject_Metadata(t *testing.T) {
	cfg := parsePyproject(t, `
[tool.pyflow]
name = "meta"
version = "0.3.0"
py_version = "3.9"
license = "Apache-2.0"
homepage = "https://example.com"
description = "a project"
keywords = ["deps", "packaging"]
classifiers = ["Programming Language :: Python :: 3"]
python_requires = ">=3.7"

[tool.pyflow.scripts]
serve = "meta.server:run"
`)

	if cfg.PyVersion == nil || cfg.PyVersion.StringNoPatch() != "3.9" {
		t.Errorf("PyVersion = %v, want 3.9", cfg.PyVersion)
	}
	if cfg.License != "Apache-2.0" || cfg.Homepage != "https://example.com" {
		t.Errorf("License/Homepage = %q/%q", cfg.License, cfg.Homepage)
	}
	if cfg.PythonRequires != ">=3.7" {
		t.Errorf("PythonRequires = %q", cfg.PythonRequires)
	}
	if got := cfg.Scripts["serve"]; got != "meta.server:run" {
		t.Errorf("Scripts[serve] = %q", got)
	}
	if len(cfg.Keywords) != 2 || len(cfg.Classifiers) != 1 {
		t.Errorf("Keywords/Classifiers = %v/%v", cfg.Keywords, cfg.Classifiers)
	}
}

func TestPyproject_MissingFile(t *testing.T) {
	parser := &Pyproject{}
	cfg, err := parser.Parse(filepath.Join(t.TempDir(), "pyproject.toml"))
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if cfg != nil {
		t.Errorf("missing file should yield nil Config, got %+v", cfg)
	}
}

func TestPyproject_MalformedTOML(t *testing.T) {
	parser := &Pyproject{}
	_, err := parser.Parse(writeFixture(t, "pyproject.toml", "[tool.pyflow\nname = oops"))
	if err == nil {
		t.Fatal("expected error for malformed TOML")
	}
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("code = %v, want INVALID_MANIFEST", errors.GetCode(err))
	}
}

// An unparseable constraint aborts the whole load; no partial Config.
func TestPyproject_BadConstraintFatal(t *testing.T) {
	parser := &Pyproject{}
	cfg, err := parser.Parse(writeFixture(t, "pyproject.toml", `
[tool.pyflow]
name = "broken"

[tool.pyflow.dependencies]
good = ">=1.0"
bad = ">=not.a.version"
`))
	if err == nil {
		t.Fatal("expected error for unparseable constraint")
	}
	if !errors.Is(err, errors.ErrCodeInvalidConstraint) {
		t.Errorf("code = %v, want INVALID_CONSTRAINT", errors.GetCode(err))
	}
	if cfg != nil {
		t.Errorf("partial Config returned: %+v", cfg)
	}
}
