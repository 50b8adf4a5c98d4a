package storage

import (
	"context"
	"errors"
	"fmt"

	"banyan/internal/core/domain"
	"banyan/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage keeps client keys in a single table, one row per key.
type PostgresStorage struct {
	Pool *pgxpool.Pool
}

func NewPostgresStorage(ctx context.Context, connStr string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to connect to database: %v", domain.ErrStorageUnavailable, err)
	}

	s := &PostgresStorage{Pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

var _ ports.KeyValue = (*PostgresStorage)(nil)

func (s *PostgresStorage) initSchema(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS client_store (
		key TEXT PRIMARY KEY,
		value BYTEA NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.Pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("%w: failed to init schema: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PostgresStorage) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.Pool.QueryRow(context.Background(), "SELECT value FROM client_store WHERE key = $1", key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return value, true, nil
}

func (s *PostgresStorage) Set(key string, value []byte) error {
	_, err := s.Pool.Exec(context.Background(),
		`INSERT INTO client_store (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PostgresStorage) Delete(key string) error {
	if _, err := s.Pool.Exec(context.Background(), "DELETE FROM client_store WHERE key = $1", key); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	s.Pool.Close()
	return nil
}
