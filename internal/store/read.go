package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/abacus/internal/ir"
)

// ReadSession retrieves a single session by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, id string) (ir.SessionRecord, error) {
	var sess ir.SessionRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, config_hash, engine_version, record_version
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &sess.ConfigHash, &sess.EngineVersion, &sess.RecordVersion)
	if err != nil {
		return ir.SessionRecord{}, err
	}
	return sess, nil
}

// ListSessions returns all sessions ordered by ID.
// UUIDv7 session IDs sort by creation time, so this is also start order.
//
// Returns an empty slice (not nil) if the journal holds no sessions.
func (s *Store) ListSessions(ctx context.Context) ([]ir.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config_hash, engine_version, record_version
		FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []ir.SessionRecord{}
	for rows.Next() {
		var sess ir.SessionRecord
		if err := rows.Scan(&sess.ID, &sess.ConfigHash, &sess.EngineVersion, &sess.RecordVersion); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadPresses returns all presses for a session.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no records exist for the session.
func (s *Store) ReadPresses(ctx context.Context, sessionID string) ([]ir.PressRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, seq, key, kind, symbol, before, after, after_hash
		FROM presses
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query presses: %w", err)
	}
	defer rows.Close()

	presses := []ir.PressRecord{}
	for rows.Next() {
		p, err := scanPress(rows)
		if err != nil {
			return nil, err
		}
		presses = append(presses, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presses: %w", err)
	}
	return presses, nil
}

// LastPress returns the press with the highest seq in a session.
// Returns sql.ErrNoRows if the session has no presses.
func (s *Store) LastPress(ctx context.Context, sessionID string) (ir.PressRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, seq, key, kind, symbol, before, after, after_hash
		FROM presses
		WHERE session_id = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, sessionID)
	return scanPress(row)
}

// ReadEvaluations returns all evaluations for a session.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no records exist for the session.
func (s *Store) ReadEvaluations(ctx context.Context, sessionID string) ([]ir.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, seq, tokens, outcome, display, history_line
		FROM evaluations
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evals := []ir.EvaluationRecord{}
	for rows.Next() {
		var ev ir.EvaluationRecord
		var tokens string
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Seq, &tokens, &ev.Outcome, &ev.Display, &ev.HistoryLine); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		ev.Tokens, err = unmarshalTokens(tokens)
		if err != nil {
			return nil, err
		}
		evals = append(evals, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return evals, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanPress scans one press row. sql.ErrNoRows is returned unwrapped so
// callers can compare against it directly.
func scanPress(row scanner) (ir.PressRecord, error) {
	var p ir.PressRecord
	var before, after string
	err := row.Scan(&p.ID, &p.SessionID, &p.Seq, &p.Key, &p.Kind, &p.Symbol, &before, &after, &p.AfterHash)
	if err == sql.ErrNoRows {
		return ir.PressRecord{}, err
	}
	if err != nil {
		return ir.PressRecord{}, fmt.Errorf("scan press: %w", err)
	}

	if p.Before, err = unmarshalSnapshot(before); err != nil {
		return ir.PressRecord{}, err
	}
	if p.After, err = unmarshalSnapshot(after); err != nil {
		return ir.PressRecord{}, err
	}
	return p, nil
}
