package results

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory results store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]*Record
	closed bool
}

// NewMemoryStore creates a new in-memory results store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*Record),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	stored := cloneRecord(rec)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	m.data[stored.RunID] = stored
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(runID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	rec, ok := m.data[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(rec), nil
}

// List implements Store.
func (m *MemoryStore) List() ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	infos := make([]Info, 0, len(m.data))
	for _, rec := range m.data {
		infos = append(infos, Info{
			RunID:     rec.RunID,
			Subject:   rec.Subject,
			Phase:     rec.Phase,
			Verified:  rec.Verified,
			CreatedAt: rec.CreatedAt,
			Size:      int64(len(rec.Report)),
		})
	}

	// Newest first
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})

	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, runID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the number of stored records. Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// cloneRecord copies rec so the store never aliases caller memory.
func cloneRecord(rec *Record) *Record {
	clone := *rec
	if rec.Report != nil {
		clone.Report = make([]byte, len(rec.Report))
		copy(clone.Report, rec.Report)
	}
	return &clone
}
