package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time // zero = never expires
}

// memoryTier is the bounded in-process tier of a two-tier cache. Eviction is
// by insertion order: when the cap is exceeded, the oldest inserted key goes
// first. Updating an existing key keeps its original position.
type memoryTier struct {
	mu      sync.Mutex
	cap     int
	entries map[string]memoryEntry
	order   []string
}

func newMemoryTier(cap int) *memoryTier {
	if cap <= 0 {
		cap = 200
	}
	return &memoryTier{
		cap:     cap,
		entries: make(map[string]memoryEntry, cap),
	}
}

// get returns the payload if present and unexpired. Expired entries are
// removed and reported as a miss.
func (t *memoryTier) get(key string, now time.Time) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
		t.removeLocked(key)
		return nil, false
	}
	return entry.payload, true
}

func (t *memoryTier) put(key string, payload []byte, expiresAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[key]; exists {
		t.entries[key] = memoryEntry{payload: payload, expiresAt: expiresAt}
		return
	}

	if len(t.entries) >= t.cap {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.entries, oldest)
	}

	t.entries[key] = memoryEntry{payload: payload, expiresAt: expiresAt}
	t.order = append(t.order, key)
}

func (t *memoryTier) removeLocked(key string) {
	delete(t.entries, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *memoryTier) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
