package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pixeldrift/pixeldrift/pkg/buildinfo"
)

// Execute runs the pixeldrift CLI and returns an error if any command fails.
// This is the main entry point for the CLI application. The caller's context
// bounds the whole invocation; cancelling it (Ctrl-C) stops a run in flight
// without touching durable state.
//
// The function sets up the root command with all subcommands (run, cursor,
// cache, completion), configures logging based on the --verbose flag, and
// executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "pixeldrift",
		Short:        "Pixeldrift catches visual regressions in vector renderers",
		Long:         `Pixeldrift renders a corpus of vector documents with a candidate and a reference renderer, compares the output pixel by pixel, and halts on the first regression. Unchanged entries are skipped via content fingerprints and interrupted runs resume where they stopped.`,
		Version:      buildinfo.Version,
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

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newCursorCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
