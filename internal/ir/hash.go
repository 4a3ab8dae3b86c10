package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainPress      = "abacus/press/v1"
	DomainEvaluation = "abacus/evaluation/v1"
	DomainSnapshot   = "abacus/snapshot/v1"
	DomainConfig     = "abacus/config/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PressID computes the content-addressed ID of a press.
// The ID is stable across replays given the same session, key and seq.
func PressID(sessionID, key string, seq int64) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"session_id": sessionID,
		"key":        key,
		"seq":        seq,
	})
	if err != nil {
		return "", fmt.Errorf("PressID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPress, canonical), nil
}

// EvaluationID computes the content-addressed ID of an evaluation.
func EvaluationID(sessionID string, seq int64, tokens []string) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"session_id": sessionID,
		"seq":        seq,
		"tokens":     stringsOrEmpty(tokens),
	})
	if err != nil {
		return "", fmt.Errorf("EvaluationID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvaluation, canonical), nil
}

// SnapshotHash computes the content hash of a state snapshot.
// Equal states hash equally regardless of nil versus empty slices.
func SnapshotHash(s Snapshot) (string, error) {
	canonical, err := MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// ConfigHash computes the content hash of an engine configuration given in
// generic form.
func ConfigHash(cfg map[string]any) (string, error) {
	canonical, err := MarshalCanonical(cfg)
	if err != nil {
		return "", fmt.Errorf("ConfigHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConfig, canonical), nil
}

// MustSnapshotHash is like SnapshotHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSnapshotHash(s Snapshot) string {
	h, err := SnapshotHash(s)
	if err != nil {
		panic(err)
	}
	return h
}

// MustPressID is like PressID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPressID(sessionID, key string, seq int64) string {
	id, err := PressID(sessionID, key, seq)
	if err != nil {
		panic(err)
	}
	return id
}
