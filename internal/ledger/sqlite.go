package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // register sqlite driver
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS ledger (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	date          TEXT NOT NULL,
	spend_quote   TEXT NOT NULL,
	quantity_base TEXT NOT NULL,
	fill_price    TEXT NOT NULL
);`

// SQLiteStore keeps the ledger in a single append-only table. Values are
// stored as decimal strings so they round-trip exactly.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the ledger database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=synchronous(full)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", ErrCorrupt, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, e Entry) (AppendResult, error) {
	if err := e.Validate(); err != nil {
		return AppendResult{}, err
	}
	rec := e.record()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledger (date, spend_quote, quantity_base, fill_price) VALUES (?, ?, ?, ?)`,
		rec[0], rec[1], rec[2], rec[3])
	if err != nil {
		return AppendResult{}, fmt.Errorf("insert ledger row: %w", err)
	}
	return AppendResult{}, nil
}

func (s *SQLiteStore) ReadAll(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, spend_quote, quantity_base, fill_price FROM ledger ORDER BY id`)
	if err != nil {
		return snap, fmt.Errorf("query ledger: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		rec := make([]string, 4)
		if err := rows.Scan(&rec[0], &rec[1], &rec[2], &rec[3]); err != nil {
			snap.Malformed++
			continue
		}
		e, err := parseRecord(rec)
		if err != nil {
			snap.Malformed++
			continue
		}
		snap.Entries = append(snap.Entries, e)
	}
	return snap, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
