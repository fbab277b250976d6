package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pyflow-dev/pyflow/pkg/errors"
	"github.com/pyflow-dev/pyflow/pkg/manifest"
)

// showOpts holds the command-line flags for the show command.
type showOpts struct {
	file   string // explicit descriptor path (auto-detected if empty)
	expand bool   // expand local path dependencies transitively
	dev    bool   // include dev dependencies
	asJSON bool   // emit JSON instead of styled output
	output string // output file for JSON (stdout if empty)
}

// newShowCmd creates the show command, which loads the project descriptor and
// prints its metadata and requirement lists. The descriptor is auto-detected
// (pyproject.toml first, then Pipfile) unless --file is given.
func newShowCmd() *cobra.Command {
	opts := showOpts{dev: true}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the project's requirements",
		Long: `Display the project descriptor's metadata and requirement lists.

Reads pyproject.toml if present, falling back to Pipfile. With --expand,
local path dependencies are resolved transitively: each path is searched
for a requirements.txt, a pyproject.toml, and installed wheel metadata,
and the discovered requirements are appended to the lists.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runShow(c, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "descriptor file to read (auto-detected if empty)")
	cmd.Flags().BoolVar(&opts.expand, "expand", false, "expand local path dependencies")
	cmd.Flags().BoolVar(&opts.dev, "dev", opts.dev, "include dev dependencies")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "emit JSON instead of styled output")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file for --json (stdout if empty)")

	return cmd
}

// runShow loads the descriptor, optionally expands local paths, and prints it.
func runShow(cmd *cobra.Command, opts *showOpts) error {
	logger := loggerFromContext(cmd.Context())

	cfg, source, err := loadConfig(opts.file)
	if err != nil {
		return err
	}
	if cfg == nil {
		printWarning("No %s or %s found in the current directory", manifest.CfgFilename, manifest.PipfileFilename)
		return nil
	}
	logger.Debugf("Loaded descriptor from %s", source)

	if opts.expand {
		prog := newProgress(logger)
		if err := cfg.ExpandLocalReqs(); err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Expanded local dependencies (%d runtime, %d dev)", len(cfg.Reqs), len(cfg.DevReqs)))
	}

	if opts.asJSON || opts.output != "" {
		out, err := openOutput(opts.output)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := writeJSON(cfg, out); err != nil {
			return err
		}
		if opts.output != "" {
			logger.Infof("Wrote descriptor to %s", opts.output)
		}
		return nil
	}

	printConfig(cfg, source, opts.dev)
	return nil
}

// loadConfig reads the descriptor at path, or auto-detects one in the current
// directory when path is empty. Returns (nil, "", nil) when nothing is found.
func loadConfig(path string) (*manifest.Config, string, error) {
	adapters := []manifest.Adapter{&manifest.Pyproject{}, &manifest.Pipfile{}, &manifest.Requirements{}}

	if path != "" {
		adapter, err := manifest.Detect(path, adapters...)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeUnsupported, err, "cannot read `%s`", filepath.Base(path))
		}
		cfg, err := adapter.Parse(path)
		if err != nil {
			return nil, "", err
		}
		if cfg == nil {
			return nil, "", errors.New(errors.ErrCodeFileNotFound, "`%s` does not exist", path)
		}
		return cfg, adapter.Type(), nil
	}

	// Auto-detect: pyproject.toml wins over Pipfile.
	for _, name := range []string{manifest.CfgFilename, manifest.PipfileFilename} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		adapter, err := manifest.Detect(name, adapters...)
		if err != nil {
			return nil, "", err
		}
		cfg, err := adapter.Parse(name)
		if err != nil {
			return nil, "", err
		}
		if cfg != nil {
			return cfg, adapter.Type(), nil
		}
	}
	return nil, "", nil
}

// printConfig renders the descriptor's metadata and requirement lists.
func printConfig(cfg *manifest.Config, source string, dev bool) {
	title := cfg.Name
	if title == "" {
		title = "(unnamed project)"
	}
	fmt.Println(StyleTitle.Render(title))

	if cfg.Version != nil {
		printKeyValue("version", cfg.Version.String())
	}
	if cfg.PyVersion != nil {
		printKeyValue("python", cfg.PyVersion.StringNoPatch())
	}
	if cfg.License != "" {
		printKeyValue("license", cfg.License)
	}
	printKeyValue("source", source)

	printNewline()
	printInfo("%d dependencies", len(cfg.Reqs))
	for _, r := range cfg.Reqs {
		printReq(r.Name, reqDetail(r))
	}

	if dev && len(cfg.DevReqs) > 0 {
		printNewline()
		printInfo("%d dev dependencies", len(cfg.DevReqs))
		for _, r := range cfg.DevReqs {
			printReq(r.Name, reqDetail(r))
		}
	}
}

// reqDetail summarizes where a requirement comes from: a constraint string
// for registry deps, the directory for local ones, the URL for VCS ones.
func reqDetail(r manifest.Req) string {
	switch {
	case r.IsLocal():
		return "path: " + r.Path
	case r.IsVCS():
		return "git: " + r.Git
	default:
		return r.ConstraintsString()
	}
}
