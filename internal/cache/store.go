// Package cache implements the two content-addressed stores used by the
// pipeline: AST results keyed by source hash and model responses keyed by
// prompt hash. Entries are plain JSON files with unbounded retention;
// invalidation is out of scope.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store maps hex content hashes to JSON blobs, one file per key. An optional
// in-memory LRU fronts disk reads for hot keys. Concurrent writers for the
// same key produce the same bytes, so the last write wins harmlessly.
type Store struct {
	root string

	mu  sync.Mutex
	mem *lru.Cache[string, []byte]
}

// New creates (or reuses) the cache directory at root. memEntries > 0
// enables the memory layer.
func New(root string, memEntries int) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("cache: root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	s := &Store{root: root}
	if memEntries > 0 {
		mem, err := lru.New[string, []byte](memEntries)
		if err != nil {
			return nil, err
		}
		s.mem = mem
	}
	return s, nil
}

// Key returns the hex sha256 of data. Identical input always maps to the
// same cache entry.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the blob for key, or ok=false on any miss. A missing or
// unreadable file is a miss, never an error; the caller recomputes.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool) {
	if s == nil || key == "" {
		return nil, false
	}
	if s.mem != nil {
		s.mu.Lock()
		v, ok := s.mem.Get(key)
		s.mu.Unlock()
		if ok {
			return append([]byte(nil), v...), true
		}
	}
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	if s.mem != nil {
		s.mu.Lock()
		s.mem.Add(key, append([]byte(nil), raw...))
		s.mu.Unlock()
	}
	return raw, true
}

// Set persists the blob for key. The write is atomic (tmp + rename) so a
// concurrent reader never observes a torn file.
func (s *Store) Set(_ context.Context, key string, blob []byte) error {
	if s == nil {
		return fmt.Errorf("cache: store is nil")
	}
	if key == "" {
		return fmt.Errorf("cache: key is required")
	}
	path := s.path(key)
	tmp, err := os.CreateTemp(s.root, "."+key+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	if s.mem != nil {
		s.mu.Lock()
		s.mem.Add(key, append([]byte(nil), blob...))
		s.mu.Unlock()
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, key+".json")
}
