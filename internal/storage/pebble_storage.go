package storage

import (
	"errors"
	"fmt"

	"banyan/internal/core/domain"
	"banyan/internal/core/ports"
	"banyan/internal/logging"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"
)

// PebbleStorage is an embedded LSM store for clients that outgrow a single JSON file.
type PebbleStorage struct {
	db  *pebble.DB
	log *zap.Logger
}

// NewPebbleStorage opens (or creates) a Pebble database at path.
func NewPebbleStorage(path string, log *zap.Logger) (*PebbleStorage, error) {
	log = logging.OrNop(log)
	log.Info("opening_pebble_db", zap.String("path", path))
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		log.Error("pebble_open_failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return &PebbleStorage{db: db, log: log}, nil
}

var _ ports.KeyValue = (*PebbleStorage)(nil)

func (s *PebbleStorage) Get(key string) ([]byte, bool, error) {
	v, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		s.log.Error("get_key_failed", zap.String("key", key), zap.Error(err))
		return nil, false, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	defer closer.Close()
	// v is only valid until closer.Close.
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *PebbleStorage) Set(key string, value []byte) error {
	if err := s.db.Set([]byte(key), value, pebble.Sync); err != nil {
		s.log.Error("save_key_failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	s.log.Debug("save_key_ok", zap.String("key", key), zap.Int("len", len(value)))
	return nil
}

func (s *PebbleStorage) Delete(key string) error {
	if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PebbleStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	s.log.Info("pebble_closed")
	return nil
}
