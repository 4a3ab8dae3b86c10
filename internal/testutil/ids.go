package testutil

// FixedSessionID generates the same session ID every time.
//
// Scenarios pin their session ID so golden transcripts and journal press IDs
// are byte-identical across runs.
//
// Unlike session.FixedGenerator which returns IDs in sequence and panics
// when they run out, this generator never runs out.
//
// Thread-safety: FixedSessionID is stateless and safe for concurrent use.
type FixedSessionID struct {
	id string
}

// NewFixedSessionID creates a fixed session ID generator.
//
// The ID is typically set in the scenario YAML:
//
//	session_id: "scenario-0001"
//
// If id is empty, Generate() returns "test-session-default".
func NewFixedSessionID(id string) *FixedSessionID {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionID{id: id}
}

// Generate returns the fixed session ID.
//
// Implements session.IDGenerator.
func (g *FixedSessionID) Generate() string {
	return g.id
}
