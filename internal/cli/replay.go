package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/abacus/internal/config"
	"github.com/roach88/abacus/internal/ir"
	"github.com/roach88/abacus/internal/session"
	"github.com/roach88/abacus/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	SessionID     string          `json:"session_id"`
	Presses       int             `json:"presses"`
	FinalDisplay  string          `json:"final_display"`
	ConfigMatches bool            `json:"config_matches"`
	Deterministic bool            `json:"deterministic"`
	Mismatches    []MismatchEntry `json:"mismatches,omitempty"`
}

// MismatchEntry is one press whose replayed state differs from the journal.
type MismatchEntry struct {
	Seq  int64  `json:"seq"`
	Key  string `json:"key"`
	Want string `json:"want"`
	Got  string `json:"got"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [session-id]",
		Short: "Replay journaled sessions and verify determinism",
		Long: `Replay journaled presses through a fresh engine and verify that every
state hashes to the journaled after_hash.

The engine is built from --config. A session journaled under a different
configuration is still replayed, and reported with config_matches false.

Exit codes:
  0 - All sessions are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, unknown session, etc.)

Examples:
  abacus replay --db ./abacus.db
  abacus replay --db ./abacus.db 01939b2e-7c1a-7000-8000-000000000000
  abacus replay --db ./abacus.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := ""
			if len(args) == 1 {
				sessionID = args[0]
			}
			return runReplay(opts, sessionID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, sessionID string, cmd *cobra.Command) error {
	ctx := context.Background()
	logger := opts.logger(cmd.ErrOrStderr())

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	configHash, err := cfg.Hash()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash config", err)
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var sessions []ir.SessionRecord
	if sessionID != "" {
		rec, err := st.ReadSession(ctx, sessionID)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", sessionID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		sessions = []ir.SessionRecord{rec}
	} else {
		sessions, err = st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	if len(sessions) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, opts, ReplayResult{
				Sessions:         []ReplaySessionResult{},
				AllDeterministic: true,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in database.")
		return nil
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}

	for _, rec := range sessions {
		sessResult, err := replaySession(ctx, st, rec, cfg, configHash, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", rec.ID), err)
		}

		result.Sessions = append(result.Sessions, sessResult)
		if !sessResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, opts, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// openExistingStore opens path, refusing to create a new database.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func replaySession(ctx context.Context, st *store.Store, rec ir.SessionRecord, cfg *config.Config, configHash string, logger *slog.Logger) (ReplaySessionResult, error) {
	if rec.ConfigHash != configHash {
		logger.Warn("session was journaled under a different config",
			"session", rec.ID,
			"journaled", rec.ConfigHash,
			"current", configHash,
		)
	}

	replayed, err := session.Replay(ctx, st, rec.ID, cfg.Engine())
	if err != nil {
		return ReplaySessionResult{}, err
	}

	out := ReplaySessionResult{
		SessionID:     rec.ID,
		Presses:       replayed.Presses,
		FinalDisplay:  replayed.Final.Display,
		ConfigMatches: rec.ConfigHash == configHash,
		Deterministic: replayed.OK(),
	}
	for _, m := range replayed.Mismatches {
		out.Mismatches = append(out.Mismatches, MismatchEntry{Seq: m.Seq, Key: m.Key, Want: m.Want, Got: m.Got})
	}
	return out, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, opts *ReplayOptions, result ReplayResult) error {
	var failure *CLIError
	if !result.AllDeterministic {
		failure = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}

	if err := newFormatter(opts.RootOptions, cmd).Report(result, failure); err != nil {
		return err
	}
	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)
	fmt.Fprintln(w)

	for _, sess := range result.Sessions {
		status := "✓"
		if !sess.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Session: %s\n", status, sess.SessionID)
		fmt.Fprintf(w, "  Presses: %d, final display %q\n", sess.Presses, sess.FinalDisplay)
		if !sess.ConfigMatches {
			fmt.Fprintln(w, "  Note: journaled under a different config")
		}

		for _, m := range sess.Mismatches {
			if verbose {
				fmt.Fprintf(w, "  seq %d key %q: want %s, got %s\n", m.Seq, m.Key, m.Want, m.Got)
			} else {
				fmt.Fprintf(w, "  seq %d key %q: state differs\n", m.Seq, m.Key)
			}
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
