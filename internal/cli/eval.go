package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/abacus/internal/calc"
	"github.com/roach88/abacus/internal/session"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Database string
}

// EvalResult is the JSON payload of the eval command.
type EvalResult struct {
	SessionID  string `json:"session_id"`
	Presses    int64  `json:"presses"`
	History    string `json:"history"`
	Expression string `json:"expression"`
	Display    string `json:"display"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <key>...",
		Short: "Press keys on a fresh calculator and print the result",
		Long: `Press each key in order on a fresh calculator and print the three
render strings: history, expression and display.

A single argument containing spaces is split into keys, so both forms work.

Exit codes:
  0 - All keys pressed
  2 - Command error (unknown key, bad config, etc.)

Examples:
  abacus eval 2 + 3 '*' 4 =
  abacus eval "9 / 0 ="
  abacus eval --db ./abacus.db "1 + 1 ="
  abacus eval --format json 7 x 6 enter`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal presses to this SQLite database")

	return cmd
}

func runEval(opts *EvalOptions, args []string, cmd *cobra.Command) error {
	ctx := context.Background()
	logger := opts.logger(cmd.ErrOrStderr())

	sess, cleanup, err := opts.startSession(ctx, opts.Database, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	defer sess.Close()

	formatter := newFormatter(opts.RootOptions, cmd)
	formatter.SessionID = sess.ID()

	for _, key := range splitKeys(args) {
		if _, err := sess.Press(ctx, key); err != nil {
			if formatter.JSON() {
				code := "E_PRESS"
				var sessErr *session.SessionError
				if errors.As(err, &sessErr) {
					code = string(sessErr.Code)
				}
				_ = formatter.Error(code, fmt.Sprintf("failed to press %q", key), newEvalResult(sess))
			}
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to press %q", key), err)
		}
	}
	formatter.VerboseLog("session %s: %d presses", sess.ID(), sess.Seq())

	if formatter.JSON() {
		return formatter.Success(newEvalResult(sess))
	}
	return formatter.Success(renderText(sess.State()))
}

func newEvalResult(sess *session.Session) EvalResult {
	r := sess.State().Render()
	return EvalResult{
		SessionID:  sess.ID(),
		Presses:    sess.Seq(),
		History:    r.History,
		Expression: r.Expression,
		Display:    r.Display,
	}
}

// splitKeys flattens arguments into keys, splitting each on whitespace.
func splitKeys(args []string) []string {
	var keys []string
	for _, arg := range args {
		keys = append(keys, strings.Fields(arg)...)
	}
	return keys
}

// renderText lays out the render strings as the calculator shows them:
// history lines, the expression line, then the display.
func renderText(st calc.State) string {
	r := st.Render()
	var b strings.Builder
	if r.History != "" {
		b.WriteString(r.History)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "expr: %s\n", strings.TrimSpace(r.Expression))
	fmt.Fprintf(&b, "  = %s", r.Display)
	return b.String()
}
