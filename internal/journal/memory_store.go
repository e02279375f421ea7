package journal

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// DefaultMemoryCapacity bounds the in-memory journal.
const DefaultMemoryCapacity = 1000

// MemoryStore is a bounded in-memory journal for development and for
// deployments without DATABASE_URL. Once full, the oldest entry is
// overwritten.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry // ring buffer
	next    int
	full    bool
}

// NewMemoryStore creates a journal holding at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{entries: make([]*Entry, capacity)}
}

func (m *MemoryStore) Record(_ context.Context, e *Entry) error {
	cp := *e
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.next] = &cp
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e != nil && e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) List(_ context.Context, f Filter) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := f.limit()
	result := make([]*Entry, 0, min(limit, m.lenLocked()))
	// Walk backwards from the most recent write.
	for i := 0; i < m.lenLocked() && len(result) < limit; i++ {
		idx := (m.next - 1 - i + len(m.entries)) % len(m.entries)
		e := m.entries[idx]
		if f.Tool != "" && e.Tool != f.Tool {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}
	return result, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// Len reports how many entries are held.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lenLocked()
}

func (m *MemoryStore) lenLocked() int {
	if m.full {
		return len(m.entries)
	}
	return m.next
}

var _ Store = (*MemoryStore)(nil)
