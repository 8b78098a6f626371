package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// JSONSink persists the record to a local JSON file. Every write
// replaces the file atomically through a temp file and rename, so a
// crash mid-write never leaves a half-written record behind.
type JSONSink struct {
	filePath string
	mutex    sync.RWMutex
	data     map[string]string
}

// NewJSONSink opens or creates a file-backed sink at filePath. A file
// that exists but does not parse counts as user-edited garbage: it is
// logged and replaced by an empty record on the next write.
func NewJSONSink(filePath string) (*JSONSink, error) {
	sink := &JSONSink{
		filePath: filePath,
		data:     make(map[string]string),
	}

	if err := sink.loadFromFile(); err != nil {
		return nil, fmt.Errorf("failed to load state file: %v", err)
	}

	return sink, nil
}

// Get returns the value stored under key
func (js *JSONSink) Get(key string) (string, bool, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	value, ok := js.data[key]
	return value, ok, nil
}

// Set stores value under key and writes the record to disk
func (js *JSONSink) Set(key, value string) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	js.data[key] = value
	return js.saveToFile()
}

// Snapshot returns a copy of the full record
func (js *JSONSink) Snapshot() (map[string]string, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	out := make(map[string]string, len(js.data))
	for key, value := range js.data {
		out[key] = value
	}
	return out, nil
}

// Close closes the sink (no-op for JSON file storage)
func (js *JSONSink) Close() error {
	return nil
}

// loadFromFile reads the record from disk if the file exists. Callers
// must not hold the mutex; the sink is not shared yet at load time.
func (js *JSONSink) loadFromFile() error {
	raw, err := os.ReadFile(js.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("State file %s is not valid JSON, starting from an empty record: %v", js.filePath, err)
		return nil
	}
	if data != nil {
		js.data = data
	}
	return nil
}

// saveToFile writes the record to a temp file in the same directory
// and renames it over the target. Callers must hold the mutex.
func (js *JSONSink) saveToFile() error {
	raw, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state record: %v", err)
	}

	dir := filepath.Dir(js.filePath)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %v", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp state file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %v", err)
	}
	if err := os.Rename(tmpName, js.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %v", err)
	}
	return nil
}
