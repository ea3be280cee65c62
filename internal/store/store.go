package store

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Store is a namespaced key-value store over plain JSON files, the local
// counterpart of browser storage. Every operation fails soft: read, write and
// parse errors are logged and reported as "absent" instead of being returned
// to the caller. Values have no TTL; invalidation is the caller's job.
//
// The backing directory is shared state: concurrent processes writing the
// same key follow last-write-wins, with no cross-process coordination.
type Store struct {
	dir string
	log *zap.Logger
	mu  sync.Mutex
}

func New(dir string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, log: log}, nil
}

// Get reads the value stored under (namespace, key) into out. It returns
// false when the entry is absent or unreadable.
func (s *Store) Get(namespace, key string, out any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path(namespace, key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("store read failed",
				zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn("store entry is not valid JSON, treating as absent",
			zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set persists value under (namespace, key). Failures are logged only.
func (s *Store) Set(namespace, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("store marshal failed",
			zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Join(s.dir, namespace), 0o755); err != nil {
		s.log.Warn("store ensure namespace failed", zap.String("namespace", namespace), zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path(namespace, key), data, 0o644); err != nil {
		s.log.Warn("store write failed",
			zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
	}
}

// Remove deletes the entry. Removing an absent entry is a no-op.
func (s *Store) Remove(namespace, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(namespace, key)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("store remove failed",
			zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
	}
}

// Keys lists all keys present in a namespace, in no particular order.
func (s *Store) Keys(namespace string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(filepath.Join(s.dir, namespace))
	if err != nil {
		return nil
	}
	var keys []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok {
			continue
		}
		key, err := url.PathUnescape(name)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

func (s *Store) path(namespace, key string) string {
	return filepath.Join(s.dir, namespace, url.PathEscape(key)+".json")
}
