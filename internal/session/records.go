package session

import (
	"fmt"

	"github.com/roach88/abacus/internal/calc"
	"github.com/roach88/abacus/internal/ir"
)

// Snapshot converts a state to its journaled form.
func Snapshot(st calc.State) ir.Snapshot {
	return ir.Snapshot{
		Display:      st.Display,
		CurrentInput: st.CurrentInput,
		Expression:   st.Expression,
		History:      st.History,
	}
}

// StateOf converts a journaled snapshot back to a state.
func StateOf(snap ir.Snapshot) calc.State {
	return calc.State{
		Display:      snap.Display,
		CurrentInput: snap.CurrentInput,
		Expression:   snap.Expression,
		History:      snap.History,
	}
}

func newPressRecord(sessionID string, seq int64, key string, ev calc.Event, before, after calc.State) (ir.PressRecord, error) {
	id, err := ir.PressID(sessionID, key, seq)
	if err != nil {
		return ir.PressRecord{}, err
	}
	afterSnap := Snapshot(after)
	hash, err := ir.SnapshotHash(afterSnap)
	if err != nil {
		return ir.PressRecord{}, err
	}
	return ir.PressRecord{
		ID:        id,
		SessionID: sessionID,
		Seq:       seq,
		Key:       key,
		Kind:      ev.Kind.String(),
		Symbol:    ev.Symbol,
		Before:    Snapshot(before),
		After:     afterSnap,
		AfterHash: hash,
	}, nil
}

func newEvaluationRecord(sessionID string, seq int64, tokens []string, out calc.Outcome, after calc.State) (ir.EvaluationRecord, error) {
	id, err := ir.EvaluationID(sessionID, seq, tokens)
	if err != nil {
		return ir.EvaluationRecord{}, fmt.Errorf("evaluation record: %w", err)
	}
	rec := ir.EvaluationRecord{
		ID:        id,
		SessionID: sessionID,
		Seq:       seq,
		Tokens:    tokens,
		Outcome:   ir.OutcomeOK,
		Display:   out.Display(),
	}
	if !out.OK() {
		rec.Outcome = string(out.Failure)
		return rec, nil
	}
	if n := len(after.History); n > 0 {
		rec.HistoryLine = after.History[n-1]
	}
	return rec, nil
}
