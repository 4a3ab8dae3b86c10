package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/abacus/internal/ir"
)

// marshalSnapshot converts a Snapshot to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so equal states are stored byte-identically.
func marshalSnapshot(s ir.Snapshot) (string, error) {
	data, err := ir.MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), nil
}

// marshalTokens converts a token list to canonical JSON TEXT.
func marshalTokens(tokens []string) (string, error) {
	if tokens == nil {
		tokens = []string{}
	}
	data, err := ir.MarshalCanonical(tokens)
	if err != nil {
		return "", fmt.Errorf("marshal tokens: %w", err)
	}
	return string(data), nil
}

// unmarshalSnapshot parses JSON TEXT to a Snapshot.
// Empty arrays decode to nil slices to match a freshly built state.
func unmarshalSnapshot(data string) (ir.Snapshot, error) {
	var s ir.Snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return ir.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	s.Expression = nilIfEmpty(s.Expression)
	s.History = nilIfEmpty(s.History)
	return s, nil
}

// unmarshalTokens parses JSON TEXT to a token list.
func unmarshalTokens(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var tokens []string
	if err := json.Unmarshal([]byte(data), &tokens); err != nil {
		return nil, fmt.Errorf("unmarshal tokens: %w", err)
	}
	return tokens, nil
}

func nilIfEmpty(xs []string) []string {
	if len(xs) == 0 {
		return nil
	}
	return xs
}
