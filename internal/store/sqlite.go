package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite keeps the snapshot in a single-row table so it survives process restarts.
type SQLite struct {
	DB *sql.DB
}

// OpenSQLite opens (or creates) the database file and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// A single connection serialises writers.
	db.SetMaxOpenConns(1)

	s := &SQLite{DB: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate session store: %w", err)
	}

	return s, nil
}

func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS session_snapshot (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	session_id TEXT NOT NULL DEFAULT '',
	client_id TEXT NOT NULL DEFAULT '',
	requirement_id TEXT NOT NULL DEFAULT '',
	status_filter TEXT NOT NULL DEFAULT '',
	resumes TEXT NOT NULL DEFAULT '[]',
	saved_at TEXT NOT NULL
);
`)
	return err
}

func (s *SQLite) Load(ctx context.Context) (*Snapshot, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT session_id, client_id, requirement_id, status_filter, resumes, saved_at
FROM session_snapshot WHERE id = 1`)

	var (
		snap    Snapshot
		resumes string
		savedAt string
	)

	switch err := row.Scan(&snap.SessionID, &snap.ClientID, &snap.RequirementID, &snap.StatusFilter, &resumes, &savedAt); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNoSnapshot
	case err != nil:
		return nil, err
	}

	if err := json.Unmarshal([]byte(resumes), &snap.Resumes); err != nil {
		return nil, fmt.Errorf("decode saved resumes: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return nil, fmt.Errorf("decode saved_at: %w", err)
	}
	snap.SavedAt = t

	return &snap, nil
}

func (s *SQLite) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.New("snapshot is required")
	}

	resumes, err := json.Marshal(snap.Resumes)
	if err != nil {
		return fmt.Errorf("encode resumes: %w", err)
	}

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err = s.DB.ExecContext(ctx, `
INSERT INTO session_snapshot (id, session_id, client_id, requirement_id, status_filter, resumes, saved_at)
VALUES (1, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	session_id = excluded.session_id,
	client_id = excluded.client_id,
	requirement_id = excluded.requirement_id,
	status_filter = excluded.status_filter,
	resumes = excluded.resumes,
	saved_at = excluded.saved_at`,
		snap.SessionID,
		snap.ClientID,
		snap.RequirementID,
		snap.StatusFilter,
		string(resumes),
		savedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLite) Clear(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM session_snapshot`)
	return err
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}
