package store

import (
	"context"
	"fmt"

	"github.com/roach88/abacus/internal/ir"
)

// SessionSummary condenses a journaled session for listings.
type SessionSummary struct {
	SessionID    string
	Presses      int
	Evaluations  int
	Failures     int    // Evaluations whose outcome was not ok
	LastSeq      int64  // 0 if the session has no presses
	FinalDisplay string // Display after the last press, "0" if none
	HistoryLen   int
}

// GetSessionSummary reads a session's presses and evaluations and reports
// their counts and the final display.
func (s *Store) GetSessionSummary(ctx context.Context, sessionID string) (SessionSummary, error) {
	summary := SessionSummary{
		SessionID:    sessionID,
		FinalDisplay: "0",
	}

	presses, err := s.ReadPresses(ctx, sessionID)
	if err != nil {
		return summary, fmt.Errorf("get session summary: %w", err)
	}
	summary.Presses = len(presses)
	if n := len(presses); n > 0 {
		last := presses[n-1]
		summary.LastSeq = last.Seq
		summary.FinalDisplay = last.After.Display
		summary.HistoryLen = len(last.After.History)
	}

	evals, err := s.ReadEvaluations(ctx, sessionID)
	if err != nil {
		return summary, fmt.Errorf("get session summary: %w", err)
	}
	summary.Evaluations = len(evals)
	for _, ev := range evals {
		if ev.Outcome != ir.OutcomeOK {
			summary.Failures++
		}
	}

	return summary, nil
}
