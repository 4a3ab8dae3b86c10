package session

import (
	"context"
	"fmt"

	"github.com/roach88/abacus/internal/calc"
	"github.com/roach88/abacus/internal/ir"
	"github.com/roach88/abacus/internal/store"
)

// Mismatch is a journaled press whose replayed state hashes differently.
type Mismatch struct {
	Seq  int64
	Key  string
	Want string // Journaled after_hash
	Got  string // Hash of the replayed state
}

// ReplayResult reports a determinism check of one session.
type ReplayResult struct {
	SessionID  string
	Presses    int
	Mismatches []Mismatch
	Final      calc.State
}

// OK reports whether every replayed state matched the journal.
func (r ReplayResult) OK() bool {
	return len(r.Mismatches) == 0
}

// Replay re-folds a journaled session through engine, starting from
// calc.Initial(), and compares every resulting state against the journaled
// after_hash.
//
// Presses are re-applied from their resolved symbol, not their raw key, so
// a replay does not depend on the keymap that was in force. Replay only
// reads the journal; it never writes.
func Replay(ctx context.Context, st *store.Store, sessionID string, engine *calc.Engine) (ReplayResult, error) {
	result := ReplayResult{SessionID: sessionID, Final: calc.Initial()}

	if _, err := st.ReadSession(ctx, sessionID); err != nil {
		return result, fmt.Errorf("replay %s: %w", sessionID, err)
	}
	presses, err := st.ReadPresses(ctx, sessionID)
	if err != nil {
		return result, fmt.Errorf("replay %s: %w", sessionID, err)
	}

	state := calc.Initial()
	for _, p := range presses {
		ev, err := calc.ParseEvent(p.Symbol)
		if err != nil {
			return result, fmt.Errorf("replay %s: seq %d: %w", sessionID, p.Seq, err)
		}
		state = engine.Apply(state, ev)

		got, err := ir.SnapshotHash(Snapshot(state))
		if err != nil {
			return result, fmt.Errorf("replay %s: seq %d: %w", sessionID, p.Seq, err)
		}
		if got != p.AfterHash {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Seq:  p.Seq,
				Key:  p.Key,
				Want: p.AfterHash,
				Got:  got,
			})
		}
		result.Presses++
	}

	result.Final = state
	return result, nil
}
