// Package sqlite implements store.Store on top of modernc.org/sqlite,
// adapted from the teacher's WAL-mode sqlite backend to the shard-entry
// posting-list schema this module needs.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/qpick/pkg/qpick/internalerr"
	"github.com/cognicore/qpick/pkg/qpick/store"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database at path with WAL mode enabled and the
// shard-entry schema initialized.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	return &sqliteStore{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS shard_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ngram TEXT NOT NULL,
	pqid INTEGER NOT NULL,
	reminder INTEGER NOT NULL,
	weight INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_shard_entries_ngram ON shard_entries(ngram);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close implements store.Store.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// PutShardEntry implements store.Store.
func (s *sqliteStore) PutShardEntry(ctx context.Context, ngram string, pqid, reminder int64, weight byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shard_entries (ngram, pqid, reminder, weight) VALUES (?, ?, ?, ?)`,
		ngram, pqid, reminder, int(weight))
	if err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	return nil
}

// Lookup implements store.Store.
func (s *sqliteStore) Lookup(ctx context.Context, ngram string) ([]store.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pqid, reminder, weight FROM shard_entries WHERE ngram = ? ORDER BY id`, ngram)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		var r store.Row
		var weight int
		if err := rows.Scan(&r.PQID, &r.Reminder, &weight); err != nil {
			return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
		}
		r.Weight = byte(weight)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	return out, nil
}

// NgramCount implements store.Store.
func (s *sqliteStore) NgramCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT ngram) FROM shard_entries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	return count, nil
}

var _ store.Store = (*sqliteStore)(nil)
