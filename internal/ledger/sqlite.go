package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS activity_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	tool TEXT NOT NULL,
	mime TEXT NOT NULL DEFAULT '',
	bytes INTEGER NOT NULL DEFAULT 0,
	remote_url TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_kind_created ON activity_log(kind, created_at);
`

// SQLite stores activity in a local database file, for single-node
// deployments without Postgres.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and initializes) the database at path. ":memory:" is
// accepted for tests.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ledger: ensure directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: open sqlite: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: init sqlite: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) Record(ctx context.Context, a Activity) error {
	a = stamp(a)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_log (kind, tool, mime, bytes, remote_url, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(a.Kind), a.Tool, a.MIMEType, a.Bytes, a.RemoteURL, a.At.UnixMilli())
	if err != nil {
		return fmt.Errorf("ledger: record %s: %w", a.Kind, err)
	}
	return nil
}

func (s *SQLite) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	since := s.now().Add(-24 * time.Hour).UnixMilli()
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'upload' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'export' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'export' AND created_at >= ? THEN 1 ELSE 0 END), 0)
		FROM activity_log`, since)
	if err := row.Scan(&out.Uploads, &out.Exports, &out.ExportsLast24h); err != nil {
		return Summary{}, fmt.Errorf("ledger: summary: %w", err)
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
