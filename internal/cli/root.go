package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/abacus/internal/config"
	"github.com/roach88/abacus/internal/session"
	"github.com/roach88/abacus/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // .cue file or directory; empty for defaults
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the abacus CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "abacus",
		Short: "abacus - a left-to-right keypad calculator",
		Long: `A keypad calculator engine that evaluates strictly left to right.

Keys are the labels of the keypad buttons (0-9 . + - * / = C) or any alias
from the keymap configuration. "2 + 3 * 4 =" shows 20, not 14.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "CUE configuration file or directory")

	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// logger returns a text logger on w: Info by default, Debug with --verbose.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// startSession loads --config, opens dbPath as a journal (in-memory when
// empty) and starts a session on it. The returned cleanup closes the journal.
func (o *RootOptions) startSession(ctx context.Context, dbPath string, logger *slog.Logger) (*session.Session, func(), error) {
	cfg, err := config.Load(o.Config)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	configHash, err := cfg.Hash()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to hash config", err)
	}

	if dbPath == "" {
		dbPath = store.MemoryPath
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	sess, err := session.New(ctx,
		session.WithEngine(cfg.Engine()),
		session.WithKeyResolver(cfg.Keymap),
		session.WithStore(st),
		session.WithConfigHash(configHash),
		session.WithLogger(logger),
	)
	if err != nil {
		st.Close()
		return nil, nil, WrapExitError(ExitCommandError, "failed to start session", err)
	}

	return sess, func() { st.Close() }, nil
}
