package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryCounter is a process-local Counter used when Redis is not
// configured. Counts are not shared between instances.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	count   int64
	expires time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{entries: make(map[string]*memoryEntry), now: time.Now}
}

func (m *MemoryCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || !now.Before(e.expires) {
		e = &memoryEntry{expires: now.Add(ttl)}
		m.entries[key] = e
		m.sweep(now)
	}
	e.count++
	return e.count, nil
}

func (m *MemoryCounter) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return -1, nil
	}
	return e.expires.Sub(m.now()), nil
}

// sweep drops expired windows; called with mu held.
func (m *MemoryCounter) sweep(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
}
