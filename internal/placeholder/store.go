package placeholder

import (
	"sort"
	"sync"
)

// Store is the session-scoped key/value store behind a SessionCache.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MemoryStore provides thread-safe in-memory storage of placeholders.
//
// Entries have no TTL. They live until removed via Delete() or Clear(), or
// until the store itself is dropped, which makes a MemoryStore the natural
// "browsing session" for a server process.
//
// # Example Usage
//
//	store := placeholder.NewMemoryStore()
//	cache := placeholder.NewSessionCache(store)
//	uri, err := cache.GetOrGenerate(ctx, key, gen)
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates and initializes an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]string),
	}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
}

// Delete removes key. Deleting a missing key does nothing.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.items = make(map[string]string)
	s.mu.Unlock()
}

// Len returns the number of entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Keys returns the stored keys in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}
