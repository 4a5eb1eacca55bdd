package journal

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/awray/strand/internal/affinity"
	"github.com/awray/strand/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on mutations.source
const currentSchemaVersion = 1

// Mutation is one journaled change to the protected counter.
type Mutation struct {
	// Seq is the logical clock stamp; the global serialization order.
	Seq int64

	// Source names the origin that requested the mutation.
	Source string

	// Delta is the applied change.
	Delta int64

	// Total is the counter value after applying Delta.
	Total int64
}

// Journal is a SQLite-backed mutation journal with an internal serial
// writer gate.
type Journal struct {
	db     *sql.DB
	gate   *domain.Loop
	writes *affinity.Router
	logger *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithLogger sets the logger for write-behind failures and lifecycle
// events. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		j.logger = logger
	}
}

// Open creates or opens a journal database at the given path.
// Applies required pragmas and migrations automatically, and starts the
// writer gate. Idempotent with respect to the database file.
func Open(path string, opts ...Option) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY between the gate and readers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	j := &Journal{
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}

	j.gate = domain.NewLoop("journal-writer", domain.WithLogger(j.logger))
	j.writes = affinity.New(j.gate)
	return j, nil
}

// OpenMemory opens an in-memory journal, isolated per call.
// Used by tests and the default harness scenarios.
func OpenMemory(opts ...Option) (*Journal, error) {
	return Open(":memory:", opts...)
}

// Close drains the writer gate, then closes the database.
func (j *Journal) Close() error {
	if j.gate != nil {
		j.gate.Close()
		j.gate.Wait()
	}
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Gate returns the journal's writer gate domain. Exposed so callers can
// verify identity independence and submit gate-origin work in demos;
// production writes go through Write and Record.
func (j *Journal) Gate() domain.Domain {
	return j.gate
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	return runMigrations(db)
}

// runMigrations applies incremental migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
		version = 1
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the source index for databases created before v1.
// New databases get it from schema.sql.
func migrateToV1(db *sql.DB) error {
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_mutations_source ON mutations(source)"); err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}
