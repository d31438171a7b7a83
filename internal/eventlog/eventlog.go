// Package eventlog records structured operational events in SQLite. Events
// carry ids and counters, never conversation content.
package eventlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Event type constants.
const (
	EventProcessStarted   = "process.started"
	EventMessageReceived  = "message.received"
	EventReplySent        = "reply.sent"
	EventCompletionFailed = "completion.failed"
	EventSessionStarted   = "session.started"
	EventSessionReset     = "session.reset"
	EventSessionEvicted   = "session.evicted"
	EventCircuitOpened    = "circuit.opened"
	EventCircuitClosed    = "circuit.closed"
)

// Log is an append-only event log backed by SQLite.
type Log struct {
	db *sql.DB
}

// Open opens (or creates) the event log database at path, ensuring the
// parent directory and schema exist.
func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create eventlog directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open eventlog at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping eventlog at %s: %w", path, err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY,
			timestamp INTEGER NOT NULL DEFAULT (unixepoch()),
			run_id TEXT,
			event_type TEXT NOT NULL,
			payload TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_events_run_id ON events(run_id);
		CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init eventlog schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record inserts an event. runID may be empty for events not tied to a
// pipeline run. payload is serialized to JSON; nil stores NULL.
func (l *Log) Record(runID, eventType string, payload map[string]any) error {
	var payloadJSON any
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		payloadJSON = string(data)
	}

	var run any
	if runID != "" {
		run = runID
	}
	if _, err := l.db.Exec(
		`INSERT INTO events (run_id, event_type, payload) VALUES (?, ?, ?)`,
		run, eventType, payloadJSON,
	); err != nil {
		return fmt.Errorf("insert event %s: %w", eventType, err)
	}
	return nil
}

// CountByType returns how many events of the given type are recorded.
func (l *Log) CountByType(eventType string) (int, error) {
	var n int
	err := l.db.QueryRow(
		`SELECT COUNT(*) FROM events WHERE event_type = ?`, eventType,
	).Scan(&n)
	return n, err
}
