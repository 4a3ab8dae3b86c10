package ir

// Snapshot is the journaled form of a calculator state.
type Snapshot struct {
	Display      string   `json:"display"`
	CurrentInput string   `json:"current_input"`
	Expression   []string `json:"expression"`
	History      []string `json:"history"`
}

// CanonicalMap converts the snapshot into the generic form MarshalCanonical
// accepts. Nil slices become empty arrays so that a fresh state and a cleared
// state hash identically.
func (s Snapshot) CanonicalMap() map[string]any {
	return map[string]any{
		"display":       s.Display,
		"current_input": s.CurrentInput,
		"expression":    stringsOrEmpty(s.Expression),
		"history":       stringsOrEmpty(s.History),
	}
}

// SessionRecord identifies one calculator session in the journal.
type SessionRecord struct {
	ID            string `json:"id"`
	ConfigHash    string `json:"config_hash"`
	EngineVersion string `json:"engine_version"`
	RecordVersion string `json:"record_version"`
}

// PressRecord is one button press and the states around it.
//
// Before and After are full snapshots so a journal can be audited without
// re-running the engine. AfterHash lets replay compare states cheaply.
type PressRecord struct {
	ID        string   `json:"id"`
	SessionID string   `json:"session_id"`
	Seq       int64    `json:"seq"`
	Key       string   `json:"key"`  // Label as typed, before keymap resolution
	Kind      string   `json:"kind"` // digit | decimal | operator | equals | clear
	Symbol    string   `json:"symbol"`
	Before    Snapshot `json:"before"`
	After     Snapshot `json:"after"`
	AfterHash string   `json:"after_hash"`
}

// EvaluationRecord is one "=" press and what it produced.
//
// Outcome is "ok" for success or the failure kind otherwise.
type EvaluationRecord struct {
	ID          string   `json:"id"`
	SessionID   string   `json:"session_id"`
	Seq         int64    `json:"seq"`
	Tokens      []string `json:"tokens"`
	Outcome     string   `json:"outcome"`
	Display     string   `json:"display"`
	HistoryLine string   `json:"history_line,omitempty"`
}

// OutcomeOK marks a successful evaluation.
const OutcomeOK = "ok"

func stringsOrEmpty(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
