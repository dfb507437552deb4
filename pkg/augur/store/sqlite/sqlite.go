// Package sqlite implements the archive store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/civicsignal/augur/pkg/augur/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite archive with WAL mode enabled, creating the schema if
// needed.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	doc_id TEXT NOT NULL,
	date TEXT,
	received_at TEXT NOT NULL,
	sentence_count INTEGER NOT NULL,
	failed_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS record_events (
	record_id TEXT NOT NULL,
	sentence_idx INTEGER NOT NULL,
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	code TEXT NOT NULL,
	FOREIGN KEY(record_id) REFERENCES records(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_records_doc ON records(doc_id);
CREATE INDEX IF NOT EXISTS idx_record_events_record ON record_events(record_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRecord writes the record and its events in one transaction.
func (s *sqliteStore) SaveRecord(ctx context.Context, r store.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO records (id, doc_id, date, received_at, sentence_count, failed_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.DocID, r.Date, r.ReceivedAt.UTC().Format(time.RFC3339Nano),
		r.SentenceCount, r.FailedCount)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM record_events WHERE record_id = ?`, r.ID); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	for _, ev := range r.Events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO record_events (record_id, sentence_idx, source, target, code)
			VALUES (?, ?, ?, ?, ?)`,
			r.ID, ev.SentenceIndex, ev.Source, ev.Target, ev.Code)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	return tx.Commit()
}

// GetRecord returns one record with its events.
func (s *sqliteStore) GetRecord(ctx context.Context, id string) (store.Record, bool, error) {
	var r store.Record
	var receivedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, doc_id, date, received_at, sentence_count, failed_count
		FROM records WHERE id = ?`, id).
		Scan(&r.ID, &r.DocID, &r.Date, &receivedAt, &r.SentenceCount, &r.FailedCount)
	if err == sql.ErrNoRows {
		return store.Record{}, false, nil
	}
	if err != nil {
		return store.Record{}, false, err
	}

	if t, perr := time.Parse(time.RFC3339Nano, receivedAt); perr == nil {
		r.ReceivedAt = t
	}

	events, err := s.loadEvents(ctx, r.ID)
	if err != nil {
		return store.Record{}, false, err
	}
	r.Events = events
	return r, true, nil
}

// ListRecords returns records for a document, newest first.
func (s *sqliteStore) ListRecords(ctx context.Context, docID string, limit int) ([]store.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, doc_id, date, received_at, sentence_count, failed_count
		FROM records WHERE doc_id = ? ORDER BY id DESC LIMIT ?`, docID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		var r store.Record
		var receivedAt string
		if err := rows.Scan(&r.ID, &r.DocID, &r.Date, &receivedAt, &r.SentenceCount, &r.FailedCount); err != nil {
			return nil, err
		}
		if t, perr := time.Parse(time.RFC3339Nano, receivedAt); perr == nil {
			r.ReceivedAt = t
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		events, err := s.loadEvents(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Events = events
	}
	return out, nil
}

func (s *sqliteStore) loadEvents(ctx context.Context, recordID string) ([]store.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sentence_idx, source, target, code
		FROM record_events WHERE record_id = ? ORDER BY sentence_idx, rowid`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []store.Event
	for rows.Next() {
		var ev store.Event
		if err := rows.Scan(&ev.SentenceIndex, &ev.Source, &ev.Target, &ev.Code); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
