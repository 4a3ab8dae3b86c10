package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory journal that vanishes on Close.
// It is the default: calculator history is not restored across restarts.
const MemoryPath = ":memory:"

// Store journals calculator sessions in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// pragma is a connection setting and the value SQLite must report back.
type pragma struct {
	name  string
	value string
	want  string // empty: accept whatever SQLite reports
}

// pragmas for a file journal. An in-memory database reports journal_mode
// "memory" whatever is requested, so the check is skipped there.
var pragmas = []pragma{
	{name: "journal_mode", value: "WAL"},
	{name: "synchronous", value: "NORMAL"},
	{name: "busy_timeout", value: "5000", want: "5000"},
	{name: "foreign_keys", value: "ON", want: "1"},
}

// migration upgrades the schema from version-1 to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations run in order against any database whose user_version is lower.
// Every statement must be idempotent.
var migrations = []migration{
	{
		version: 1,
		name:    "index evaluations by session",
		stmt:    `CREATE INDEX IF NOT EXISTS idx_evaluations_session_seq ON evaluations(session_id, seq)`,
	},
	{
		version: 2,
		name:    "index presses by kind",
		stmt:    `CREATE INDEX IF NOT EXISTS idx_presses_session_kind ON presses(session_id, kind)`,
	},
}

// SchemaVersion is the user_version of a fully migrated journal.
var SchemaVersion = migrations[len(migrations)-1].version

// Open opens the journal at path, creating it if needed, and brings its
// schema up to date. Pass MemoryPath for a journal that does not outlive
// the process.
//
// SQLite allows one writer, so the pool holds a single connection. That also
// keeps an in-memory database alive and shared for the life of the Store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.configure(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database. A nil or zero Store is a no-op.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database for ad hoc queries in tests and tools.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InMemory reports whether the journal lives only in this process.
func (s *Store) InMemory() bool {
	return s.path == MemoryPath
}

// SchemaVersion reports the journal's user_version.
func (s *Store) SchemaVersion() (int, error) {
	var v int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return v, nil
}

func (s *Store) configure() error {
	for _, p := range pragmas {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("failed to apply pragmas: set %s: %w", p.name, err)
		}
		if p.want == "" {
			continue
		}
		if err := s.verifyPragma(p.name, p.want); err != nil {
			return fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}
	if !s.InMemory() {
		if err := s.verifyPragma("journal_mode", "wal"); err != nil {
			return fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}
	return nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	version, err := s.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := s.db.Exec(m.stmt); err != nil {
			return fmt.Errorf("failed to apply schema: migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return fmt.Errorf("failed to apply schema: set user_version: %w", err)
		}
	}
	return nil
}

// verifyPragma checks that SQLite reports the expected value for a pragma.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
