package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/abacus/internal/ir"
)

// WriteSession inserts a session record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteSession(ctx context.Context, sess ir.SessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, config_hash, engine_version, record_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.ConfigHash,
		sess.EngineVersion,
		sess.RecordVersion,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WritePress inserts a press record.
// Uses ON CONFLICT DO NOTHING for idempotency - duplicate IDs are silently ignored.
// Other constraint violations (e.g., unknown session) still return errors.
//
// Note: The session referenced by SessionID must exist (foreign key constraint).
func (s *Store) WritePress(ctx context.Context, p ir.PressRecord) error {
	return writePress(ctx, s.db, p)
}

// WriteEvaluation inserts an evaluation record.
// Uses ON CONFLICT DO NOTHING for idempotency.
func (s *Store) WriteEvaluation(ctx context.Context, ev ir.EvaluationRecord) error {
	return writeEvaluation(ctx, s.db, ev)
}

// WritePressAtomic writes a press and, for "=" presses, its evaluation in a
// single transaction so a crash can never leave an evaluation without its
// press or the reverse.
func (s *Store) WritePressAtomic(ctx context.Context, p ir.PressRecord, ev *ir.EvaluationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write press atomic: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := writePress(ctx, tx, p); err != nil {
		return err
	}
	if ev != nil {
		if err := writeEvaluation(ctx, tx, *ev); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write press atomic: commit: %w", err)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func writePress(ctx context.Context, db execer, p ir.PressRecord) error {
	before, err := marshalSnapshot(p.Before)
	if err != nil {
		return fmt.Errorf("write press: %w", err)
	}
	after, err := marshalSnapshot(p.After)
	if err != nil {
		return fmt.Errorf("write press: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO presses
		(id, session_id, seq, key, kind, symbol, before, after, after_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		p.ID,
		p.SessionID,
		p.Seq,
		p.Key,
		p.Kind,
		p.Symbol,
		before,
		after,
		p.AfterHash,
	)
	if err != nil {
		return fmt.Errorf("write press: %w", err)
	}
	return nil
}

func writeEvaluation(ctx context.Context, db execer, ev ir.EvaluationRecord) error {
	tokens, err := marshalTokens(ev.Tokens)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO evaluations
		(id, session_id, seq, tokens, outcome, display, history_line)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		ev.ID,
		ev.SessionID,
		ev.Seq,
		tokens,
		ev.Outcome,
		ev.Display,
		ev.HistoryLine,
	)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	return nil
}
