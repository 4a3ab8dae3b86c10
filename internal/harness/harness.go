package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/abacus/internal/config"
	"github.com/roach88/abacus/internal/session"
	"github.com/roach88/abacus/internal/store"
	"github.com/roach88/abacus/internal/testutil"
)

// Harness is the scenario execution engine.
// It drives one session per scenario with a deterministic step clock and
// a fixed session ID.
type Harness struct {
	store   *store.Store
	session *session.Session
	cfg     *config.Config
	steps   *testutil.StepCounter
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the scenario's configuration (defaults if none)
// 2. Start a journaled session with the fixed session ID
// 3. Press each step's keys, checking expect clauses after each step
// 4. Evaluate assertions against the final state
// 5. Replay the journal and report any state that does not reproduce
//
// An error is returned only if the scenario could not be executed at all;
// failed expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := config.Load(scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	configHash, err := cfg.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to hash config: %w", err)
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in scenarios
	ctx := context.Background()

	sess, err := session.New(ctx,
		session.WithEngine(cfg.Engine()),
		session.WithKeyResolver(cfg.Keymap),
		session.WithStore(st),
		session.WithConfigHash(configHash),
		session.WithIDGenerator(testutil.NewFixedSessionID(scenario.SessionID)),
		session.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	h := &Harness{
		store:   st,
		session: sess,
		cfg:     cfg,
		steps:   testutil.NewStepCounter(),
		logger:  logger,
	}

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, err
	}
	result.Final = sess.State()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	if err := h.checkReplay(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

// executeSteps presses every key of every step.
//
// A rejected key (unknown label) fails the scenario but does not stop it,
// so one typo reports every later mismatch as well.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		for _, key := range step.KeyList() {
			stepNo := h.steps.Next()

			st, err := h.session.Press(ctx, key)
			if err != nil {
				if session.IsUnknownKey(err) {
					h.steps.Reject(stepNo)
					result.AddError(fmt.Sprintf("steps[%d]: press %d: %v", i, stepNo, err))
					continue
				}
				return fmt.Errorf("step %d: press %q: %w", i, key, err)
			}

			result.AddPress(stepNo, h.session.Seq(), key, st)
			h.logger.Debug("step pressed",
				"step", i,
				"key", key,
				"seq", h.session.Seq(),
				"display", st.Display,
			)
		}

		for _, err := range checkExpect(i, h.session.State(), step.Expect, result.Transcript) {
			result.AddError(err.Error())
		}
	}
	return nil
}

// checkReplay re-folds the journal and records any mismatch as an error.
func (h *Harness) checkReplay(ctx context.Context, result *Result) error {
	replay, err := session.Replay(ctx, h.store, h.session.ID(), h.cfg.Engine())
	if err != nil {
		return fmt.Errorf("failed to replay session: %w", err)
	}
	if accepted := h.steps.Accepted(); int64(replay.Presses) != accepted {
		result.AddError(fmt.Sprintf("replay: journal has %d presses, %d keys were accepted", replay.Presses, accepted))
	}
	for _, m := range replay.Mismatches {
		result.AddError(fmt.Sprintf("replay: seq %d (%s) reached %s, journal has %s", m.Seq, m.Key, m.Got, m.Want))
	}
	if !replay.Final.Equal(result.Final) {
		result.AddError(fmt.Sprintf("replay: final display %q, session has %q", replay.Final.Display, result.Final.Display))
	}
	return nil
}
