// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"sync"

	"github.com/SofiSoft/sofisoft-admin/internal/port/outbound"
)

// MemoryKVStore implements outbound.KVStore with an in-memory map.
// Thread-safe for concurrent access. Nothing survives the process.
type MemoryKVStore struct {
	records map[string]string
	mu      sync.RWMutex
}

var _ outbound.KVStore = (*MemoryKVStore)(nil)

// NewKVStore creates an empty in-memory store.
func NewKVStore() *MemoryKVStore {
	return &MemoryKVStore{records: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *MemoryKVStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *MemoryKVStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = value
	return nil
}

