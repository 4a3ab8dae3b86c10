package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/abacus/internal/calc"
	"github.com/roach88/abacus/internal/session"
)

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions
	Database string
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Drive a calculator from standard input",
		Long: `Read keys from standard input and print the display after every press.

Each whitespace-separated word on a line is one key. The words "help",
"keys" and "quit" are commands, not keys. The session ends at end of input.

With --format json every press prints one JSON object with the three render
strings.

Examples:
  abacus repl
  echo "2 + 3 =" | abacus repl
  abacus repl --db ./abacus.db --config ./abacus.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal presses to this SQLite database")

	return cmd
}

// lockedWriter serializes writes from the reader and the session loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}

func runRepl(opts *ReplOptions, cmd *cobra.Command) error {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	logger := opts.logger(cmd.ErrOrStderr())
	sess, cleanup, err := opts.startSession(ctx, opts.Database, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	out := &lockedWriter{w: cmd.OutOrStdout()}
	unsubscribe := sess.Subscribe(func(st calc.State) {
		printPress(out, opts.Format, st)
	})
	defer unsubscribe()

	go readKeys(cmd.InOrStdin(), sess, out)

	logger.Debug("repl started", "session", sess.ID())
	if err := sess.Run(ctx); err != nil && err != context.Canceled {
		return WrapExitError(ExitFailure, "session loop failed", err)
	}
	logger.Debug("repl stopped", "session", sess.ID(), "presses", sess.Seq())
	return nil
}

// readKeys feeds words from r into the session queue and closes the session
// at end of input or on "quit".
func readKeys(r io.Reader, sess *session.Session, out *lockedWriter) {
	defer sess.Close()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		for _, word := range strings.Fields(scanner.Text()) {
			switch word {
			case "quit", "exit":
				return
			case "help", "keys":
				out.printf("%s", keypadHelp())
				continue
			}
			if !sess.Enqueue(word) {
				return
			}
		}
	}
}

func printPress(out *lockedWriter, format string, st calc.State) {
	if format == "json" {
		data, err := json.Marshal(st.Render())
		if err != nil {
			return
		}
		out.printf("%s\n", data)
		return
	}
	out.printf("%s\n", st.Display)
}

func keypadHelp() string {
	var b strings.Builder
	for _, row := range calc.Keypad {
		b.WriteString(strings.Join(row, " "))
		b.WriteString("\n")
	}
	return b.String()
}
