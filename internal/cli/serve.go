package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/abacus/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a calculator session as MCP tools over stdio",
		Long: `Serve one calculator session over the Model Context Protocol on
stdin/stdout. Logs go to stderr.

Tools:
  calc.press    press space-separated keys
  calc.state    current render strings and keypad
  calc.clear    press C
  calc.history  completed calculations

Examples:
  abacus serve
  abacus serve --db ./abacus.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal presses to this SQLite database")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	logger := opts.logger(cmd.ErrOrStderr())

	sess, cleanup, err := opts.startSession(context.Background(), opts.Database, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	defer sess.Close()

	if err := server.New(sess, logger).ServeStdio(); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}
