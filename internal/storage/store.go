package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pymovements/gazeseg/internal/events"

	_ "modernc.org/sqlite"
)

// SQLiteStore is an events.Repository backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ events.Repository = (*SQLiteStore)(nil)

// Open opens (or creates) the database at path and applies pending migrations.
// The path ":memory:" keeps everything in a single in-process connection.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := NewMigrationRunner(db).Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append inserts all records in one transaction; a duplicate event id rolls back
// the whole batch.
func (s *SQLiteStore) Append(ctx context.Context, records []events.Record) error {
	if len(records) == 0 {
		return nil
	}
	for _, record := range records {
		if err := events.ValidateRecord(record); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO event_records (event_id, recording_id, name, onset_time, offset_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err := stmt.ExecContext(ctx,
			record.EventID,
			record.RecordingID,
			record.Name,
			record.Onset,
			record.Offset,
			record.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return events.ErrDuplicateEventID
			}
			return fmt.Errorf("insert event %s: %w", record.EventID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Get(ctx context.Context, recordingID, eventID string) (events.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT event_id, recording_id, name, onset_time, offset_time, created_at
		FROM event_records
		WHERE recording_id = ? AND event_id = ?
	`, recordingID, eventID)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return events.Record{}, events.ErrRecordNotFound
	}
	return record, err
}

// ListByRecording returns the recording's records labeled name (all when name is
// empty), ordered like events.SortRecords.
func (s *SQLiteStore) ListByRecording(ctx context.Context, recordingID, name string) ([]events.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, recording_id, name, onset_time, offset_time, created_at
		FROM event_records
		WHERE recording_id = ? AND (? = '' OR name = ?)
	`, recordingID, name, name)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	records := make([]events.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	// created_at is parsed back to time.Time, so ordering happens here rather than in SQL.
	events.SortRecords(records)
	return records, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (events.Record, error) {
	var (
		record    events.Record
		createdAt string
	)
	if err := row.Scan(
		&record.EventID,
		&record.RecordingID,
		&record.Name,
		&record.Onset,
		&record.Offset,
		&createdAt,
	); err != nil {
		return events.Record{}, err
	}

	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return events.Record{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	record.CreatedAt = parsed
	return record, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
