package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"banyan/internal/core/domain"
	"banyan/internal/core/ports"

	_ "modernc.org/sqlite"
)

// SQLiteStorage implements ports.KeyValue on a local SQLite file.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens the database at dbPath and creates the table if needed.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	s := &SQLiteStorage{db: db}
	if err := s.initDB(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return s, nil
}

var _ ports.KeyValue = (*SQLiteStorage)(nil)

func (s *SQLiteStorage) initDB() error {
	query := `
	CREATE TABLE IF NOT EXISTS client_store (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStorage) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM client_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return value, true, nil
}

func (s *SQLiteStorage) Set(key string, value []byte) error {
	query := `
	INSERT INTO client_store (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SQLiteStorage) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM client_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
