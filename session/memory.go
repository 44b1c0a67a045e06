package session

import (
	"context"
	"sync"
	"time"
)

// memoryEntry stores a session value and its last touched time.
type memoryEntry struct {
	value       []byte
	lastTouched time.Time
}

// expired returns true if the entry is older than maxAge.
func (e memoryEntry) expired(maxAge time.Duration) bool {
	return time.Since(e.lastTouched) > maxAge
}

// MemoryStore is a threadsafe in-memory key-value store, suitable for
// testing or single-instance use.
type MemoryStore struct {
	data map[string]memoryEntry
	mu   sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: map[string]memoryEntry{},
	}
}

// Start is a no-op for MemoryStore.
func (s *MemoryStore) Start(ctx context.Context) error { return nil }

// Stop is a no-op for MemoryStore.
func (s *MemoryStore) Stop(ctx context.Context) error { return nil }

// Delete removes any entry for the given id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// Exists returns true if the id is present in the store.
func (s *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[id]
	return ok, nil
}

// Get retrieves the value for the given id, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.value, nil
}

// Set saves or updates a value for the given id, renewing its age.
func (s *MemoryStore) Set(ctx context.Context, id string, val []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = memoryEntry{
		value:       val,
		lastTouched: time.Now(),
	}
	return nil
}

// Touch renews the age of the entry identified by id, implementing
// sliding expiration. Only the last access time is updated; the value
// is not changed. Returns ErrNotFound if the entry does not exist.
func (s *MemoryStore) Touch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.data[id]
	if !ok {
		return ErrNotFound
	}
	entry.lastTouched = time.Now()
	s.data[id] = entry
	return nil
}

// Purge deletes all entries older than maxAge.
func (s *MemoryStore) Purge(ctx context.Context,
	maxAge time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.data {
		if entry.expired(maxAge) {
			delete(s.data, id)
		}
	}
	return nil
}
