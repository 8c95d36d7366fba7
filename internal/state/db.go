// Package state provides an optional SQLite-backed alternative to the
// JSON history file, for users who want to query past orchestration runs
// with SQL instead of reading ~/.config/crossroads/history.json directly.
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/crossroads-cli/crossroads/internal/history"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

// DB wraps a SQLite connection holding the orchestration_runs table.
type DB struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// GlobalDBPath returns the path to the global crossroads database.
func GlobalDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "crossroads", "crossroads.db")
}

// Open opens a SQLite database at path, creating parent directories and
// enabling WAL mode and foreign keys.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &DB{conn: conn, path: path}, nil
}

// OpenGlobal opens the global crossroads database.
func OpenGlobal() (*DB, error) {
	return Open(GlobalDBPath())
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1OrchestrationRuns},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1OrchestrationRuns = `
CREATE TABLE IF NOT EXISTS orchestration_runs (
	id TEXT PRIMARY KEY,
	feature_name TEXT NOT NULL,
	state TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	result_json TEXT
);

CREATE INDEX IF NOT EXISTS idx_orchestration_runs_finished_at ON orchestration_runs(finished_at);
`

// InsertRun records a completed or failed run, then purges anything past
// history.MaxRecords, oldest first — mirroring the JSON history file's
// bounded-retention contract so the two backends stay equivalent in shape.
func (db *DB) InsertRun(record history.Record) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var resultJSON sql.NullString
	if record.Result != nil {
		data, err := json.Marshal(record.Result)
		if err != nil {
			return fmt.Errorf("marshal merge result: %w", err)
		}
		resultJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := db.conn.Exec(`
		INSERT INTO orchestration_runs (id, feature_name, state, started_at, finished_at, result_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.ID, record.FeatureName, string(record.State), formatTime(record.StartedAt), formatTime(record.FinishedAt), resultJSON)
	if err != nil {
		return fmt.Errorf("insert orchestration run: %w", err)
	}

	_, err = db.conn.Exec(`
		DELETE FROM orchestration_runs
		WHERE id NOT IN (
			SELECT id FROM orchestration_runs ORDER BY finished_at DESC LIMIT ?
		)
	`, history.MaxRecords)
	if err != nil {
		return fmt.Errorf("purge old orchestration runs: %w", err)
	}

	return nil
}

// RecentRuns returns up to limit runs, newest first. limit <= 0 returns
// history.MaxRecords.
func (db *DB) RecentRuns(limit int) ([]history.Record, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if limit <= 0 {
		limit = history.MaxRecords
	}

	rows, err := db.conn.Query(`
		SELECT id, feature_name, state, started_at, finished_at, result_json
		FROM orchestration_runs
		ORDER BY finished_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query orchestration runs: %w", err)
	}
	defer rows.Close()

	var out []history.Record
	for rows.Next() {
		var (
			id, featureName, state, startedAt, finishedAt string
			resultJSON                                    sql.NullString
		)
		if err := rows.Scan(&id, &featureName, &state, &startedAt, &finishedAt, &resultJSON); err != nil {
			return nil, fmt.Errorf("scan orchestration run: %w", err)
		}

		record := history.Record{
			ID:          id,
			FeatureName: featureName,
			State:       models.OrchestratorState(state),
		}
		if t, err := parseTime(startedAt); err == nil {
			record.StartedAt = t
		}
		if t, err := parseTime(finishedAt); err == nil {
			record.FinishedAt = t
		}
		if resultJSON.Valid {
			var result models.MergeResult
			if err := json.Unmarshal([]byte(resultJSON.String), &result); err == nil {
				record.Result = &result
			}
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// HistoryStore adapts DB to history.HistoryStore, so the SQLite backend is
// interchangeable with the default JSON file wherever orchestration runs
// are recorded or listed.
type HistoryStore struct {
	db *DB
}

var _ history.HistoryStore = (*HistoryStore)(nil)

// NewHistoryStore wraps an already-migrated DB as a history.HistoryStore.
func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Append records a completed or failed run, matching history.Service's
// bounded-retention contract.
func (s *HistoryStore) Append(record history.Record) error {
	return s.db.InsertRun(record)
}

// All returns up to history.MaxRecords runs, newest first. Query errors are
// swallowed and treated as empty history, matching history.Service's
// best-effort read contract.
func (s *HistoryStore) All() []history.Record {
	records, err := s.db.RecentRuns(0)
	if err != nil {
		return nil
	}
	return records
}
