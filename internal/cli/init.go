package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pyflow-dev/pyflow/pkg/errors"
	"github.com/pyflow-dev/pyflow/pkg/manifest"
	"github.com/pyflow-dev/pyflow/pkg/pep440"
)

// initOpts holds the command-line flags for the init command.
type initOpts struct {
	name string // project name (defaults to the working directory name)
	py   string // target Python version (e.g., "3.8")
}

// newInitCmd creates the init command, which scaffolds a pyproject.toml in the
// current directory. The command refuses to overwrite an existing manifest.
//
// The authors field is pre-filled from the local git identity when available.
func newInitCmd() *cobra.Command {
	var opts initOpts

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a pyproject.toml for the current project",
		Long: `Create a pyproject.toml with a [tool.pyflow] section in the current directory.

The project name defaults to the directory name, and the authors field is
pre-filled from git config when available. Init never overwrites an existing
pyproject.toml.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runInit(c, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "project name (defaults to directory name)")
	cmd.Flags().StringVar(&opts.py, "py", "", "target Python version (e.g., 3.8)")

	return cmd
}

// runInit builds a fresh Config from the init flags and writes it out.
func runInit(cmd *cobra.Command, opts *initOpts) error {
	logger := loggerFromContext(cmd.Context())

	name := opts.name
	if name == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "cannot determine working directory")
		}
		name = filepath.Base(wd)
	}
	if err := errors.ValidatePythonPackageName(name); err != nil {
		return err
	}

	cfg := &manifest.Config{
		Name:    name,
		Authors: manifest.GitIdentity(),
	}
	if opts.py != "" {
		v, err := pep440.Parse(opts.py)
		if err != nil {
			return err
		}
		cfg.PyVersion = &v
	}

	if err := cfg.Write(manifest.CfgFilename); err != nil {
		return err
	}

	logger.Debugf("Wrote %s for project %q", manifest.CfgFilename, name)
	printSuccess("Created %s", StyleHighlight.Render(manifest.CfgFilename))
	printDetail("project: %s", name)
	if cfg.PyVersion != nil {
		printDetail("python:  %s", cfg.PyVersion.StringNoPatch())
	}
	return nil
}
