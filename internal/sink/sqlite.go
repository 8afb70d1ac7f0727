// Package sink provides best-effort archival of actions outside the
// in-memory store. The store remains the source of truth; a sink is an
// extension point, not a durability promise.
package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/clario-app/reporter/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS actions (
	id               TEXT PRIMARY KEY,
	type             TEXT NOT NULL,
	timestamp        TEXT NOT NULL,
	user_id          TEXT,
	session_id       TEXT NOT NULL,
	status           TEXT NOT NULL,
	duration_ms      INTEGER,
	error            TEXT,
	metadata         TEXT,
	performance      TEXT
);
CREATE INDEX IF NOT EXISTS idx_actions_timestamp ON actions (timestamp);
`

// SQLite archives actions to a local database file. Writes are upserts
// keyed by action id, so completing an action updates its archived row.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and ensures
// the schema. Use ":memory:" for an ephemeral archive.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sink: open sqlite %s: %w", path, err)
	}
	// The writer is single-statement upserts; one connection avoids
	// SQLITE_BUSY under concurrent lifecycle calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sink: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// SaveAction upserts the action's archived row.
func (s *SQLite) SaveAction(ctx context.Context, a model.Action) error {
	metadata, err := nullableJSON(a.Metadata)
	if err != nil {
		return fmt.Errorf("sink: encode metadata: %w", err)
	}
	var performance any
	if a.Performance != nil {
		b, err := json.Marshal(a.Performance)
		if err != nil {
			return fmt.Errorf("sink: encode performance: %w", err)
		}
		performance = string(b)
	}

	var durationMs any
	if a.DurationMs != nil {
		durationMs = *a.DurationMs
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO actions (id, type, timestamp, user_id, session_id, status, duration_ms, error, metadata, performance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			duration_ms = excluded.duration_ms,
			error = excluded.error,
			performance = excluded.performance`,
		a.ID, string(a.Type), a.Timestamp.Format(time.RFC3339Nano), a.UserID,
		a.SessionID, string(a.Status), durationMs, a.Error, metadata, performance,
	)
	if err != nil {
		return fmt.Errorf("sink: upsert action %s: %w", a.ID, err)
	}
	return nil
}

// Count returns the number of archived actions.
func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sink: count actions: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func nullableJSON(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
