package services

import (
	"fmt"
	"log"
	"sync"

	"github.com/devcomfort/instructable-pcgrl/models"
	"github.com/devcomfort/instructable-pcgrl/persistence"
)

// Sink keys owned by the state service. Everything else in the
// application reaches the stored record through this service, never
// through the sink directly.
const (
	KeyMap       = "map"
	KeyActiveTab = "activeTab"
)

// mapListener is one registered subscriber with its removal handle.
type mapListener struct {
	id int
	fn func(models.GridMap)
}

// StateService holds the live editor state behind the persistence
// sink: the current map under "map" and the active panel under
// "activeTab". Reads tolerate missing or malformed stored values by
// degrading to defaults; writes touch only their own key, so the rest
// of the record survives every update.
type StateService struct {
	sink  persistence.Sink
	shape models.GridShape

	mu        sync.Mutex
	listeners []mapListener
	nextID    int
}

// NewStateService wraps a sink with typed access to the editor state.
// shape sizes the default map used whenever no stored map is usable.
func NewStateService(sink persistence.Sink, shape models.GridShape) *StateService {
	return &StateService{sink: sink, shape: shape}
}

// DefaultMap builds the all-empty map for the configured shape.
func (s *StateService) DefaultMap() models.GridMap {
	return models.NewGridMap(s.shape)
}

// Map returns the current map. It never fails: a missing or corrupt
// stored value yields the default all-empty map instead.
func (s *StateService) Map() models.GridMap {
	m, _ := s.readMap()
	return m
}

// SetMap stores m as the current map and notifies subscribers. Other
// sink keys are left exactly as they are.
func (s *StateService) SetMap(m models.GridMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitMap(m)
}

// UpdateMap applies fn to the current map and stores the result. The
// read, the transform and the write happen under one lock, so two
// concurrent updates cannot interleave. When the stored value does
// not parse, fn receives the default map. Returns the stored result.
func (s *StateService) UpdateMap(fn func(models.GridMap) models.GridMap) (models.GridMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, _ := s.readMap()
	next := fn(current)
	if err := s.commitMap(next); err != nil {
		return nil, err
	}
	return next, nil
}

// Subscribe registers fn to run synchronously, in registration order,
// after every committed map change. fn receives the parsed map and
// runs on the mutating goroutine; it must not write back into the
// service. The returned function removes the subscription.
func (s *StateService) Subscribe(fn func(models.GridMap)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, mapListener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// ActiveTab returns the stored panel selection, or the default when
// the stored value is missing or not a known panel.
func (s *StateService) ActiveTab() models.UITab {
	raw, ok, err := s.sink.Get(KeyActiveTab)
	if err != nil {
		log.Printf("Failed to read active tab, using default: %v", err)
		return models.DefaultTab
	}
	if !ok {
		return models.DefaultTab
	}
	tab := models.UITab(raw)
	if !tab.Valid() {
		log.Printf("Stored active tab %q is not a known panel, using default", raw)
		return models.DefaultTab
	}
	return tab
}

// SetActiveTab stores the panel selection. Values outside the known
// panel set are rejected.
func (s *StateService) SetActiveTab(tab models.UITab) error {
	if !tab.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTab, string(tab))
	}
	return s.sink.Set(KeyActiveTab, string(tab))
}

// Fragment encodes the full state record as a share-link fragment.
func (s *StateService) Fragment() (string, error) {
	record, err := s.sink.Snapshot()
	if err != nil {
		return "", err
	}
	return persistence.EncodeFragment(record), nil
}

// Restore merges the keys of a share-link fragment into the sink.
// When the fragment carries a map value, subscribers are notified with
// the freshly parsed result; a map value that does not parse still
// notifies, with the default map.
func (s *StateService) Restore(fragment string) error {
	record, err := persistence.DecodeFragment(fragment)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range record {
		if err := s.sink.Set(key, value); err != nil {
			return err
		}
	}
	if _, ok := record[KeyMap]; ok {
		m, _ := s.readMap()
		s.notifyLocked(m)
	}
	return nil
}

// readMap loads and parses the stored map. Absent and malformed
// values both degrade to the default map; the second result reports
// whether the stored value was usable. This is the single fallback
// path shared by every read.
func (s *StateService) readMap() (models.GridMap, bool) {
	raw, ok, err := s.sink.Get(KeyMap)
	if err != nil {
		log.Printf("Failed to read stored map, using default: %v", err)
		return s.DefaultMap(), false
	}
	if !ok {
		return s.DefaultMap(), false
	}
	m, err := models.DecodeMap(raw)
	if err != nil {
		log.Printf("Stored map is unreadable, using default: %v", err)
		return s.DefaultMap(), false
	}
	return m, true
}

// commitMap writes the map and notifies subscribers. Callers must
// hold mu.
func (s *StateService) commitMap(m models.GridMap) error {
	raw, err := models.EncodeMap(m)
	if err != nil {
		return err
	}
	if err := s.sink.Set(KeyMap, raw); err != nil {
		return err
	}
	s.notifyLocked(m)
	return nil
}

// notifyLocked delivers m to every subscriber in registration order.
// Each subscriber gets its own copy. Callers must hold mu.
func (s *StateService) notifyLocked(m models.GridMap) {
	for _, l := range s.listeners {
		l.fn(m.Clone())
	}
}
