package store

import (
	"encoding/json"
	"sync"

	"github.com/RaoAkif/BotFusion/internal/chat"
)

// MemoryStore is an in-memory [Store] for tests and ephemeral sessions.
// Values are kept JSON-encoded so parse-failure semantics match the
// durable implementation exactly.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

// Save upserts a record under its timestamp key.
func (s *MemoryStore) Save(rec chat.Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[rec.Timestamp] = string(value)
	return nil
}

// Put stores a raw value under an arbitrary key, bypassing record
// encoding. Tests use it to simulate corrupt entries and reserved
// bookkeeping keys.
func (s *MemoryStore) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// LoadAll returns every parseable record except the reserved key.
func (s *MemoryStore) LoadAll() ([]chat.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []chat.Record
	for key, value := range s.entries {
		if key == ReservedKey {
			continue
		}
		var rec chat.Record
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadOne returns the record under the given timestamp, or (nil, nil)
// when missing or unparseable.
func (s *MemoryStore) LoadOne(timestamp string) (*chat.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.entries[timestamp]
	if !ok {
		return nil, nil
	}
	var rec chat.Record
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

// Len reports the number of stored entries, reserved key included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
