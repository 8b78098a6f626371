package services

import (
	"fmt"
	"sync"

	"github.com/devcomfort/instructable-pcgrl/models"
)

// DefaultMaxHistory bounds the snapshot log when no explicit limit is
// configured.
const DefaultMaxHistory = 20

// HistoryService owns the bounded log of map snapshots and the cursor
// marking the present entry. It is the only place where the log and
// cursor change, and every mutation commits both under one lock, so
// the cursor always addresses a live entry.
//
// Stored snapshots are immutable: maps are cloned on the way in and on
// the way out, so callers can never change an entry after the fact.
type HistoryService struct {
	mu      sync.RWMutex
	entries []models.GridMap
	cursor  int
	max     int
}

// HistoryStatus is one consistent reading of the log's shape.
type HistoryStatus struct {
	Length    int  `json:"length"`
	Cursor    int  `json:"cursor"`
	MaxLength int  `json:"maxLength"`
	CanUndo   bool `json:"canUndo"`
	CanRedo   bool `json:"canRedo"`
}

// NewHistoryService creates a history seeded with the given snapshot
// as its only entry and the cursor on it. Seeding keeps every later
// Append well-formed: the log is never empty, so cursor 0 is always a
// valid argument. maxLength values below 1 fall back to
// DefaultMaxHistory.
func NewHistoryService(seed models.GridMap, maxLength int) *HistoryService {
	if maxLength < 1 {
		maxLength = DefaultMaxHistory
	}
	return &HistoryService{
		entries: []models.GridMap{seed.Clone()},
		cursor:  0,
		max:     maxLength,
	}
}

// Len returns the number of snapshots in the log.
func (h *HistoryService) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Cursor returns the index of the present entry.
func (h *HistoryService) Cursor() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor
}

// MaxLength returns the current retention limit.
func (h *HistoryService) MaxLength() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.max
}

// SetMaxLength changes the retention limit. The new limit is read by
// the next Append; an already longer log is not trimmed until then.
func (h *HistoryService) SetMaxLength(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxLength, n)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.max = n
	return nil
}

// CanUndo reports whether an entry exists before the cursor.
func (h *HistoryService) CanUndo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor > 0
}

// CanRedo reports whether an entry exists after the cursor.
func (h *HistoryService) CanRedo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor < len(h.entries)-1
}

// Status reports length, cursor, limit and step availability in one
// consistent read.
func (h *HistoryService) Status() HistoryStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HistoryStatus{
		Length:    len(h.entries),
		Cursor:    h.cursor,
		MaxLength: h.max,
		CanUndo:   h.cursor > 0,
		CanRedo:   h.cursor < len(h.entries)-1,
	}
}

// SetCursor moves the cursor to an existing entry. A cursor outside
// [0, length) is rejected and nothing changes.
func (h *HistoryService) SetCursor(cursor int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.checkCursor(cursor); err != nil {
		return err
	}
	h.cursor = cursor
	return nil
}

// Undo steps the cursor back one entry and returns that snapshot. The
// second result is false when the cursor already sits on the oldest
// entry; the cursor does not move in that case.
func (h *HistoryService) Undo() (models.GridMap, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor <= 0 {
		return nil, false
	}
	h.cursor--
	return h.entries[h.cursor].Clone(), true
}

// Redo steps the cursor forward one entry and returns that snapshot.
// The second result is false when the cursor already sits on the
// newest entry.
func (h *HistoryService) Redo() (models.GridMap, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor >= len(h.entries)-1 {
		return nil, false
	}
	h.cursor++
	return h.entries[h.cursor].Clone(), true
}

// Append records a new snapshot as the present entry. cursor must be
// the caller's view of the current cursor and must address a live
// entry. Everything after cursor is discarded first (editing after an
// undo branches the timeline and the old redo path is gone for good),
// then the oldest entries are dropped until the log fits the
// retention limit, and finally the cursor moves to the new tail. All
// of it commits in one step; no reader can observe a partial result.
func (h *HistoryService) Append(state models.GridMap, cursor int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.checkCursor(cursor); err != nil {
		return err
	}

	branched := make([]models.GridMap, 0, cursor+2)
	branched = append(branched, h.entries[:cursor+1]...)
	branched = append(branched, state.Clone())

	if over := len(branched) - h.max; over > 0 {
		branched = branched[over:]
	}

	h.entries = branched
	h.cursor = len(h.entries) - 1
	return nil
}

// LoadCheckpoint rewinds the timeline to an existing entry: the log is
// truncated to end at cursor, the cursor moves onto it, and the entry
// is returned. Truncation and repositioning commit together, so no
// reader can see the shortened log with a stale cursor.
func (h *HistoryService) LoadCheckpoint(cursor int) (models.GridMap, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.checkCursor(cursor); err != nil {
		return nil, err
	}
	h.entries = h.entries[:cursor+1]
	h.cursor = cursor
	return h.entries[cursor].Clone(), nil
}

// Entries returns a copy of the log, oldest first. Mutating the result
// does not touch the stored snapshots.
func (h *HistoryService) Entries() []models.GridMap {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.GridMap, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Clone()
	}
	return out
}

// checkCursor validates a cursor against the current log. Callers must
// hold the lock.
func (h *HistoryService) checkCursor(cursor int) error {
	if cursor < 0 || cursor >= len(h.entries) {
		return fmt.Errorf("%w: cursor %d, history length %d", ErrCursorOutOfRange, cursor, len(h.entries))
	}
	return nil
}
