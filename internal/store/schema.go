package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	tableCredentials   = "credentials"
	tableRequestEvents = "request_events"
	tableSessionEvents = "session_events"
)

// Timestamps are stored as unix milliseconds so ordering and range
// filters work without driver-specific time parsing.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS credentials (
		slot       TEXT PRIMARY KEY,
		token      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		timestamp     INTEGER NOT NULL,
		method        TEXT NOT NULL,
		path          TEXT NOT NULL,
		status        INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       BOOLEAN NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS request_events_timestamp ON request_events (timestamp)`,
	`CREATE TABLE IF NOT EXISTS session_events (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence       INTEGER NOT NULL UNIQUE,
		timestamp      INTEGER NOT NULL,
		session_id     TEXT NOT NULL,
		task_id        INTEGER NOT NULL,
		action         TEXT NOT NULL,
		question_count INTEGER NOT NULL DEFAULT 0,
		correct_count  INTEGER NOT NULL DEFAULT 0,
		answer_index   INTEGER NOT NULL DEFAULT 0,
		earned         INTEGER NOT NULL DEFAULT 0,
		error_message  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS session_events_session_id ON session_events (session_id)`,
}

// migrate creates any missing tables and indexes.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	for _, ddl := range schemaDDL {
		if err := drv.Exec(ctx, ddl, []any{}, nil); err != nil {
			return fmt.Errorf("exec ddl: %w", err)
		}
	}
	return nil
}
