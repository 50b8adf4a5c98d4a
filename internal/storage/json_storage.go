package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"banyan/internal/core/domain"
	"banyan/internal/core/ports"
)

// JSONStorage keeps every key in a single JSON file, the closest thing to a
// browser's localStorage on disk.
type JSONStorage struct {
	FilePath string
	// MaxBytes caps the encoded file size; zero means unlimited.
	MaxBytes int

	mu   sync.RWMutex
	Data StorageData
}

type StorageData struct {
	Entries map[string]string `json:"entries"`
}

func NewJSONStorage(filePath string, maxBytes int) (*JSONStorage, error) {
	s := &JSONStorage{
		FilePath: filePath,
		MaxBytes: maxBytes,
		Data:     StorageData{Entries: make(map[string]string)},
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if err := s.loadFromFile(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if s.Data.Entries == nil {
		s.Data.Entries = make(map[string]string)
	}
	return s, nil
}

var _ ports.KeyValue = (*JSONStorage)(nil)

func (s *JSONStorage) loadFromFile() error {
	file, err := os.ReadFile(s.FilePath)
	if err != nil {
		return err
	}
	return json.Unmarshal(file, &s.Data)
}

func (s *JSONStorage) saveToFile() error {
	data, err := json.MarshalIndent(s.Data, "", "  ")
	if err != nil {
		return err
	}
	if s.MaxBytes > 0 && len(data) > s.MaxBytes {
		return fmt.Errorf("%w: quota of %d bytes exceeded", domain.ErrStorageUnavailable, s.MaxBytes)
	}
	return os.WriteFile(s.FilePath, data, 0644)
}

func (s *JSONStorage) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.Data.Entries[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

// Set stores value under key. A write that would exceed MaxBytes leaves the
// previous value in place.
func (s *JSONStorage) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.Data.Entries[key]
	s.Data.Entries[key] = string(value)
	if err := s.saveToFile(); err != nil {
		if had {
			s.Data.Entries[key] = prev
		} else {
			delete(s.Data.Entries, key)
		}
		return err
	}
	return nil
}

func (s *JSONStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Data.Entries[key]; !ok {
		return nil
	}
	delete(s.Data.Entries, key)
	return s.saveToFile()
}

func (s *JSONStorage) Close() error { return nil }
