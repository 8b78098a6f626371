package services

import (
	"fmt"
	"sync"

	"github.com/devcomfort/instructable-pcgrl/models"
)

// EditorService applies user edits. It is the only component that
// talks to both the history and the live state: every accepted edit
// becomes one history entry and then one state write, so the history
// and the sink move together. A single mutex serializes all mutations,
// so edits arriving from different sessions commit one at a time and
// the live map is always the history's current entry.
type EditorService struct {
	history *HistoryService
	state   *StateService

	mu sync.Mutex
}

// NewEditorService wires the editing layer to its history and state.
func NewEditorService(history *HistoryService, state *StateService) *EditorService {
	return &EditorService{history: history, state: state}
}

// ApplyEdits places tiles for one discrete user edit, typically a
// whole brush stroke. Every cell is validated before anything
// changes; a stroke that leaves the map identical is dropped without
// touching the history. Returns the resulting map.
func (e *EditorService) ApplyEdits(edits []models.CellEdit) (models.GridMap, error) {
	if len(edits) == 0 {
		return nil, ErrEmptyEdit
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	current := e.state.Map()
	next := current.Clone()
	for _, edit := range edits {
		if !next.InBounds(edit.Row, edit.Col) {
			return nil, fmt.Errorf("%w: row %d col %d on a %dx%d map",
				ErrCellOutOfBounds, edit.Row, edit.Col, next.Rows(), next.Cols())
		}
		if !edit.Tile.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownTile, int(edit.Tile))
		}
		next[edit.Row][edit.Col] = edit.Tile
	}
	if next.Equal(current) {
		return current, nil
	}
	return e.commit(next)
}

// ClearMap resets the map to the default for its current shape, as
// one undoable edit.
func (e *EditorService) ClearMap() (models.GridMap, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	current := e.state.Map()
	next := models.NewGridMap(current.Shape())
	if next.Equal(current) {
		return current, nil
	}
	return e.commit(next)
}

// Resize replaces the map with an all-empty one of the given shape,
// as one undoable edit.
func (e *EditorService) Resize(shape models.GridShape) (models.GridMap, error) {
	if shape.Rows < 1 || shape.Cols < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidShape, shape.Rows, shape.Cols)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	current := e.state.Map()
	next := models.NewGridMap(shape)
	if next.Equal(current) {
		return current, nil
	}
	return e.commit(next)
}

// Undo steps back one history entry and makes it the live map. The
// bool result is false when there is nothing to undo; the error
// reports a failed state write after the history already moved.
func (e *EditorService) Undo() (models.GridMap, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.history.Undo()
	if !ok {
		return nil, false, nil
	}
	if err := e.state.SetMap(m); err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Redo steps forward one history entry and makes it the live map.
func (e *EditorService) Redo() (models.GridMap, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.history.Redo()
	if !ok {
		return nil, false, nil
	}
	if err := e.state.SetMap(m); err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// LoadCheckpoint rewinds to the history entry at cursor, discarding
// everything after it, and makes that entry the live map.
func (e *EditorService) LoadCheckpoint(cursor int) (models.GridMap, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, err := e.history.LoadCheckpoint(cursor)
	if err != nil {
		return nil, err
	}
	if err := e.state.SetMap(m); err != nil {
		return nil, err
	}
	return m, nil
}

// commit records next as a new history entry and makes it the live
// map, in that order. Callers must hold mu, so the cursor read here
// cannot go stale before the append lands.
func (e *EditorService) commit(next models.GridMap) (models.GridMap, error) {
	if err := e.history.Append(next, e.history.Cursor()); err != nil {
		return nil, err
	}
	if err := e.state.SetMap(next); err != nil {
		return nil, err
	}
	return next, nil
}
