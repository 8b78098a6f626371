package persistence

import "sync"

// MemorySink keeps the record in process memory. It backs tests and
// ephemeral sessions that live only as long as the server
type MemorySink struct {
	mutex sync.RWMutex
	data  map[string]string
}

// NewMemorySink creates an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{
		data: make(map[string]string),
	}
}

// NewMemorySinkFrom creates an in-memory sink pre-populated with the
// given record
func NewMemorySinkFrom(record map[string]string) *MemorySink {
	sink := NewMemorySink()
	for key, value := range record {
		sink.data[key] = value
	}
	return sink
}

// Get returns the value stored under key
func (ms *MemorySink) Get(key string) (string, bool, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	value, ok := ms.data[key]
	return value, ok, nil
}

// Set stores value under key
func (ms *MemorySink) Set(key, value string) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	ms.data[key] = value
	return nil
}

// Snapshot returns a copy of the full record
func (ms *MemorySink) Snapshot() (map[string]string, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	out := make(map[string]string, len(ms.data))
	for key, value := range ms.data {
		out[key] = value
	}
	return out, nil
}

// Close closes the sink (no-op for memory storage)
func (ms *MemorySink) Close() error {
	return nil
}
