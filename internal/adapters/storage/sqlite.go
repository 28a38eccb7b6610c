package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/healthtrack/symptom-agent/internal/domain"
)

// sqliteStore keeps the blob in a one-row key/value table.
type sqliteStore struct {
	db *sql.DB
}

func newSQLiteStore(dbPath string) (*sqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS app_state (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, StateKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *sqliteStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		StateKey, data)
	return err
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
