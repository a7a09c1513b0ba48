package store

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const (
	sqliteSchema = `CREATE TABLE IF NOT EXISTS app_data_store (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`
	sqliteLoad = `SELECT value FROM app_data_store WHERE key = ?1;`
	sqliteSave = `INSERT INTO app_data_store (key, value) VALUES (?1, ?2)
ON CONFLICT(key) DO UPDATE SET value = excluded.value;`
)

// SQLitePersister stores the blob as one row of an SQLite table.
type SQLitePersister struct {
	sqlDB *sql.DB
	key   string
}

func NewSQLitePersister(path, key string) (*SQLitePersister, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLitePersister{sqlDB: sqlDB, key: key}, nil
}

func (p *SQLitePersister) Load() ([]byte, error) {
	var value string
	err := p.sqlDB.QueryRow(sqliteLoad, p.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return []byte(value), nil
}

func (p *SQLitePersister) Save(blob []byte) error {
	if _, err := p.sqlDB.Exec(sqliteSave, p.key, string(blob)); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (p *SQLitePersister) Close() error {
	if p == nil || p.sqlDB == nil {
		return nil
	}
	return p.sqlDB.Close()
}
