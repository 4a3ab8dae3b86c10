package ir

// Version constants for journal records and the engine.
const (
	// RecordVersion is the journal record schema version.
	RecordVersion = "1"

	// EngineVersion is the abacus engine version.
	EngineVersion = "0.1.0"
)
