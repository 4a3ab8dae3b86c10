package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/abacus/internal/ir"
	"github.com/roach88/abacus/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Kind     string // optional - filter to one press kind
}

// TraceEvent is one journaled press in the trace timeline.
type TraceEvent struct {
	Seq        int64      `json:"seq"`
	ID         string     `json:"id"`
	Key        string     `json:"key"`
	Kind       string     `json:"kind"`
	Symbol     string     `json:"symbol"`
	Display    string     `json:"display"`
	Expression []string   `json:"expression"`
	Evaluation *TraceEval `json:"evaluation,omitempty"`
}

// TraceEval is the evaluation recorded for an "=" press.
type TraceEval struct {
	Tokens      []string `json:"tokens"`
	Outcome     string   `json:"outcome"`
	HistoryLine string   `json:"history_line,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	SessionID string       `json:"session_id"`
	Timeline  []TraceEvent `json:"timeline"`
	Stats     TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Presses      int    `json:"presses"`
	Evaluations  int    `json:"evaluations"`
	Failures     int    `json:"failures"`
	FinalDisplay string `json:"final_display"`
	HistoryLen   int    `json:"history_len"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <session-id>",
		Short: "Show the journaled presses of a session",
		Long: `Show every journaled press of a session in seq order, with the display
after it and, for "=", the tokens evaluated and the outcome.

The output includes:
- Timeline: every press with its resulting display
- Stats: press, evaluation and failure counts

Examples:
  abacus trace --db ./abacus.db 01939b2e-7c1a-7000-8000-000000000000
  abacus trace --db ./abacus.db <session-id> --kind equals
  abacus trace --db ./abacus.db <session-id> --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one press kind (digit|decimal|operator|equals|clear)")

	return cmd
}

func runTrace(opts *TraceOptions, sessionID string, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.ReadSession(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", sessionID))
		}
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	result, err := buildTrace(ctx, st, sessionID, opts.Kind)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build trace", err)
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	formatter.SessionID = sessionID
	if formatter.JSON() {
		return formatter.Report(result, nil)
	}
	return outputTraceText(cmd, result, opts.Verbose)
}

func buildTrace(ctx context.Context, st *store.Store, sessionID, kind string) (TraceResult, error) {
	presses, err := st.ReadPresses(ctx, sessionID)
	if err != nil {
		return TraceResult{}, err
	}
	evals, err := st.ReadEvaluations(ctx, sessionID)
	if err != nil {
		return TraceResult{}, err
	}
	summary, err := st.GetSessionSummary(ctx, sessionID)
	if err != nil {
		return TraceResult{}, err
	}

	return TraceResult{
		SessionID: sessionID,
		Timeline:  buildTimeline(presses, evals, kind),
		Stats: TraceStats{
			Presses:      summary.Presses,
			Evaluations:  summary.Evaluations,
			Failures:     summary.Failures,
			FinalDisplay: summary.FinalDisplay,
			HistoryLen:   summary.HistoryLen,
		},
	}, nil
}

// buildTimeline joins presses with their evaluations by seq.
// When kindFilter is set, only presses of that kind are kept.
func buildTimeline(presses []ir.PressRecord, evals []ir.EvaluationRecord, kindFilter string) []TraceEvent {
	bySeq := make(map[int64]ir.EvaluationRecord, len(evals))
	for _, ev := range evals {
		bySeq[ev.Seq] = ev
	}

	timeline := make([]TraceEvent, 0, len(presses))
	for _, p := range presses {
		if kindFilter != "" && p.Kind != kindFilter {
			continue
		}

		event := TraceEvent{
			Seq:        p.Seq,
			ID:         p.ID,
			Key:        p.Key,
			Kind:       p.Kind,
			Symbol:     p.Symbol,
			Display:    p.After.Display,
			Expression: p.After.Expression,
		}
		if ev, ok := bySeq[p.Seq]; ok {
			event.Evaluation = &TraceEval{
				Tokens:      ev.Tokens,
				Outcome:     ev.Outcome,
				HistoryLine: ev.HistoryLine,
			}
		}
		timeline = append(timeline, event)
	}
	return timeline
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Trace for Session: %s\n", result.SessionID)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no presses)")
	} else {
		for _, event := range result.Timeline {
			formatTimelineEvent(w, event, verbose)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Presses:      %d\n", result.Stats.Presses)
	fmt.Fprintf(w, "  Evaluations:  %d\n", result.Stats.Evaluations)
	fmt.Fprintf(w, "  Failures:     %d\n", result.Stats.Failures)
	fmt.Fprintf(w, "  History:      %d\n", result.Stats.HistoryLen)
	fmt.Fprintf(w, "  Display:      %s\n", result.Stats.FinalDisplay)

	return nil
}

// formatTimelineEvent formats a single timeline event for text output.
func formatTimelineEvent(w io.Writer, event TraceEvent, verbose bool) {
	fmt.Fprintf(w, "  [%d] %-8s %-3s -> %s\n", event.Seq, event.Kind, event.Key, event.Display)
	if ev := event.Evaluation; ev != nil {
		if ev.Outcome == ir.OutcomeOK {
			fmt.Fprintf(w, "       %s\n", ev.HistoryLine)
		} else {
			fmt.Fprintf(w, "       %s: %s\n", ev.Outcome, strings.Join(ev.Tokens, " "))
		}
	}
	if verbose {
		if event.Key != event.Symbol {
			fmt.Fprintf(w, "       Symbol: %s\n", event.Symbol)
		}
		fmt.Fprintf(w, "       Expression: [%s]\n", strings.Join(event.Expression, " "))
		fmt.Fprintf(w, "       ID: %s\n", truncateID(event.ID))
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
