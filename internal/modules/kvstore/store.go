package kvstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

// Store is the local persistence sink. Last write wins; no read-modify-write
// guarantees beyond what callers provide themselves.
type Store interface {
	Get(key string, out any) (bool, error)
	Set(key string, value any) error
	Delete(key string) error
}

// FileStore keeps one JSON file per key under a directory. Writes go through
// a temp file and rename so a crashed write never truncates an existing key.
type FileStore struct {
	dir  string
	lock sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0770); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Get(key string, out any) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := jsoniter.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode key %q: %w", key, err)
	}
	return true, nil
}

func (s *FileStore) Set(key string, value any) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	data, err := jsoniter.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode key %q: %w", key, err)
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

func (s *FileStore) Delete(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryStore is a map-backed Store for tests and ephemeral sessions.
type MemoryStore struct {
	lock sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string, out any) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	data, ok := s.data[key]
	if !ok {
		return false, nil
	}
	return true, jsoniter.Unmarshal(data, out)
}

func (s *MemoryStore) Set(key string, value any) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	data, err := jsoniter.Marshal(value)
	if err != nil {
		return err
	}
	s.data[key] = data
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.data, key)
	return nil
}
