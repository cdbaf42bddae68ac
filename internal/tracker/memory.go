package tracker

import (
	"sort"
	"sync"
)

const subscriberBuffer = 100

// MemoryTracker is an in-memory implementation of [Tracker].
type MemoryTracker struct {
	mu          sync.RWMutex
	records     map[int]TaskRecord
	subscribers map[chan TaskRecord]struct{}
	subMu       sync.RWMutex
}

// NewMemoryTracker creates an empty [MemoryTracker].
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{
		records:     make(map[int]TaskRecord),
		subscribers: make(map[chan TaskRecord]struct{}),
	}
}

// Update stores rec under its Index and notifies subscribers.
func (m *MemoryTracker) Update(rec TaskRecord) {
	m.mu.Lock()
	m.records[rec.Index] = rec
	m.mu.Unlock()

	m.notifySubscribers(rec)
}

// GetAll returns a snapshot of all records sorted by Index.
func (m *MemoryTracker) GetAll() []TaskRecord {
	m.mu.RLock()
	out := make([]TaskRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Subscribe creates a subscription with a buffer of 100 updates. When the
// buffer is full, further updates are dropped for this subscriber.
func (m *MemoryTracker) Subscribe() <-chan TaskRecord {
	ch := make(chan TaskRecord, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *MemoryTracker) Unsubscribe(ch <-chan TaskRecord) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers never blocks; a full subscriber misses the update.
func (m *MemoryTracker) notifySubscribers(rec TaskRecord) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- rec:
		default:
		}
	}
}
