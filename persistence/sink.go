package persistence

// Sink defines the interface for the key-value record mirroring the
// editor's live state. Values are plain strings; a missing key is
// reported through the ok result, not an error. Implementations must
// be safe for concurrent use.
type Sink interface {
	// Get returns the value stored under key, with ok false when the
	// key is absent
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, leaving every other key untouched
	Set(key, value string) error

	// Snapshot returns a copy of the full record
	Snapshot() (map[string]string, error)

	// Close releases any resources held by the sink
	Close() error
}
