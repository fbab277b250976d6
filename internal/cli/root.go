package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with values
// injected via ldflags at build time.
//
// Parameters:
//   - v: semantic version string (e.g., "v1.2.3")
//   - c: git commit SHA (short or long form)
//   - d: build timestamp (e.g., "2026-08-30T14:32:01Z")
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the pyflow CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (init, show),
// configures logging based on the --verbose flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via loggerFromContext.
//
// Example:
//
//	func main() {
//	    cli.SetVersion("v1.0.0", "abc123", "2026-08-30")
//	    if err := cli.Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the pyflow CLI under the given context. Cancellation of
// ctx (e.g., on SIGINT) propagates to all running commands.
func ExecuteContext(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "pyflow",
		Short:        "Pyflow manages Python project manifests",
		Long:         `Pyflow reads and writes Python project manifests (pyproject.toml, Pipfile, requirements.txt), merging them into a single view of the project's requirements with local path dependencies resolved transitively.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("pyflow %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newInitCmd())
	root.AddCommand(newShowCmd())

	return root.ExecuteContext(ctx)
}
