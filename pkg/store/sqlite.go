package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS layouts (
    name       TEXT PRIMARY KEY,
    document   BLOB NOT NULL,
    updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps layouts in a single SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageErr(err, "mkdir db dir")
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storageErr(err, "open sqlite %s", path)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, storageErr(err, "apply schema")
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := errs.ValidateLayoutName(name); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM layouts WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, storageErr(err, "select layout %q", name)
	}
	return data, nil
}

func (s *SQLiteStore) Put(ctx context.Context, name string, data []byte) error {
	if err := errs.ValidateLayoutName(name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO layouts (name, document, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at
    `, name, data, time.Now().UnixNano())
	if err != nil {
		return storageErr(err, "upsert layout %q", name)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := errs.ValidateLayoutName(name); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE name = ?`, name)
	if err != nil {
		return storageErr(err, "delete layout %q", name)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(name)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT name, length(document), updated_at FROM layouts ORDER BY name
    `)
	if err != nil {
		return nil, storageErr(err, "list layouts")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var updated int64
		if err := rows.Scan(&e.Name, &e.Size, &updated); err != nil {
			return nil, storageErr(err, "scan layout row")
		}
		e.UpdatedAt = time.Unix(0, updated)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list layouts")
	}
	return out, nil
}

func (s *SQLiteStore) Backend() string { return "sqlite" }

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ Store = (*SQLiteStore)(nil)
