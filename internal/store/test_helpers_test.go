package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/abacus/internal/ir"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// writeTestSession inserts a session with a placeholder config hash.
func writeTestSession(t *testing.T, s *Store, id string) {
	t.Helper()
	err := s.WriteSession(context.Background(), ir.SessionRecord{
		ID:            id,
		ConfigHash:    "cfg",
		EngineVersion: ir.EngineVersion,
		RecordVersion: ir.RecordVersion,
	})
	if err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
}

// createTestPress creates a press record whose After snapshot shows display.
func createTestPress(sessionID string, seq int64, key, display string) ir.PressRecord {
	after := ir.Snapshot{Display: display, CurrentInput: display}
	return ir.PressRecord{
		ID:        ir.MustPressID(sessionID, key, seq),
		SessionID: sessionID,
		Seq:       seq,
		Key:       key,
		Kind:      "digit",
		Symbol:    key,
		Before:    ir.Snapshot{Display: "0"},
		After:     after,
		AfterHash: ir.MustSnapshotHash(after),
	}
}
