package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devcomfort/instructable-pcgrl/models"
)

// snapshot builds a 3x3 map whose single wall cell encodes n, giving
// every test state a distinct identity
func snapshot(n int) models.GridMap {
	m := models.NewGridMap(models.GridShape{Rows: 3, Cols: 3})
	m[n/3%3][n%3] = models.TileWall
	return m
}

// === Construction ===

func TestNewHistoryServiceSeedsLog(t *testing.T) {
	seed := snapshot(0)
	h := NewHistoryService(seed, 10)

	require.Equal(t, 1, h.Len())
	require.Equal(t, 0, h.Cursor())
	require.False(t, h.CanUndo())
	require.False(t, h.CanRedo())
	require.True(t, h.Entries()[0].Equal(seed))
}

func TestNewHistoryServiceDefaultsMaxLength(t *testing.T) {
	h := NewHistoryService(snapshot(0), 0)
	require.Equal(t, DefaultMaxHistory, h.MaxLength())

	h = NewHistoryService(snapshot(0), -5)
	require.Equal(t, DefaultMaxHistory, h.MaxLength())
}

// === Append ===

func TestAppendAdvancesCursor(t *testing.T) {
	h := NewHistoryService(snapshot(0), 10)

	require.NoError(t, h.Append(snapshot(1), h.Cursor()))
	require.Equal(t, 2, h.Len())
	require.Equal(t, 1, h.Cursor())
	require.True(t, h.CanUndo())
	require.False(t, h.CanRedo())
}

func TestAppendBranchesAfterRollback(t *testing.T) {
	// Log [A,B,C,D] with the cursor rolled back to B
	a, b, c, d, x := snapshot(1), snapshot(2), snapshot(3), snapshot(4), snapshot(5)
	h := NewHistoryService(a, 10)
	require.NoError(t, h.Append(b, 0))
	require.NoError(t, h.Append(c, 1))
	require.NoError(t, h.Append(d, 2))
	require.NoError(t, h.SetCursor(1))

	// Appending X from cursor 1 discards C and D
	require.NoError(t, h.Append(x, 1))

	entries := h.Entries()
	require.Len(t, entries, 3)
	require.True(t, entries[0].Equal(a))
	require.True(t, entries[1].Equal(b))
	require.True(t, entries[2].Equal(x))
	require.Equal(t, 2, h.Cursor())
	require.False(t, h.CanRedo())
}

func TestAppendTrimsOldestBeyondLimit(t *testing.T) {
	// Seeded with D0 at a limit of 3, appending S1..S4 keeps only the
	// newest three snapshots
	h := NewHistoryService(snapshot(0), 3)

	s := []models.GridMap{snapshot(1), snapshot(2), snapshot(3), snapshot(4)}
	for _, m := range s {
		require.NoError(t, h.Append(m, h.Cursor()))
	}

	entries := h.Entries()
	require.Len(t, entries, 3)
	require.True(t, entries[0].Equal(s[1]))
	require.True(t, entries[1].Equal(s[2]))
	require.True(t, entries[2].Equal(s[3]))
	require.Equal(t, 2, h.Cursor())
}

func TestAppendRejectsInvalidCursor(t *testing.T) {
	h := NewHistoryService(snapshot(0), 10)

	require.ErrorIs(t, h.Append(snapshot(1), 1), ErrCursorOutOfRange)
	require.ErrorIs(t, h.Append(snapshot(1), -1), ErrCursorOutOfRange)

	// The rejected appends left the log alone
	require.Equal(t, 1, h.Len())
	require.Equal(t, 0, h.Cursor())
}

// === Undo / redo ===

func TestUndoRedoRoundTrip(t *testing.T) {
	a, b, c := snapshot(1), snapshot(2), snapshot(3)
	h := NewHistoryService(a, 10)
	require.NoError(t, h.Append(b, 0))
	require.NoError(t, h.Append(c, 1))

	m, ok := h.Undo()
	require.True(t, ok)
	require.True(t, m.Equal(b))
	require.Equal(t, 1, h.Cursor())

	m, ok = h.Redo()
	require.True(t, ok)
	require.True(t, m.Equal(c))
	require.Equal(t, 2, h.Cursor())
}

func TestUndoStopsAtOldestEntry(t *testing.T) {
	a, b, c := snapshot(1), snapshot(2), snapshot(3)
	h := NewHistoryService(a, 10)
	require.NoError(t, h.Append(b, 0))
	require.NoError(t, h.Append(c, 1))

	m, ok := h.Undo()
	require.True(t, ok)
	require.True(t, m.Equal(b))

	m, ok = h.Undo()
	require.True(t, ok)
	require.True(t, m.Equal(a))
	require.Equal(t, 0, h.Cursor())

	// A third undo is a no-op, not an error
	m, ok = h.Undo()
	require.False(t, ok)
	require.Nil(t, m)
	require.Equal(t, 0, h.Cursor())
}

func TestRedoStopsAtNewestEntry(t *testing.T) {
	h := NewHistoryService(snapshot(0), 10)
	require.NoError(t, h.Append(snapshot(1), 0))

	_, ok := h.Redo()
	require.False(t, ok)
	require.Equal(t, 1, h.Cursor())
}

// === Cursor ===

func TestSetCursorRejectsOutOfRange(t *testing.T) {
	h := NewHistoryService(snapshot(0), 10)
	require.NoError(t, h.Append(snapshot(1), 0))
	require.NoError(t, h.SetCursor(0))

	for _, cursor := range []int{-1, 2, 99} {
		err := h.SetCursor(cursor)
		require.ErrorIs(t, err, ErrCursorOutOfRange)
		require.Equal(t, 0, h.Cursor())
		require.Equal(t, 2, h.Len())
	}
}

// === Checkpoints ===

func TestLoadCheckpointTruncatesAndRepositions(t *testing.T) {
	a, b, c, d := snapshot(1), snapshot(2), snapshot(3), snapshot(4)
	h := NewHistoryService(a, 10)
	require.NoError(t, h.Append(b, 0))
	require.NoError(t, h.Append(c, 1))
	require.NoError(t, h.Append(d, 2))

	m, err := h.LoadCheckpoint(1)
	require.NoError(t, err)
	require.True(t, m.Equal(b))
	require.Equal(t, 2, h.Len())
	require.Equal(t, 1, h.Cursor())
	require.True(t, h.CanUndo())
	require.False(t, h.CanRedo())
}

func TestLoadCheckpointRejectsOutOfRange(t *testing.T) {
	h := NewHistoryService(snapshot(0), 10)

	_, err := h.LoadCheckpoint(1)
	require.ErrorIs(t, err, ErrCursorOutOfRange)
	require.Equal(t, 1, h.Len())
	require.Equal(t, 0, h.Cursor())
}

// === Retention ===

func TestSetMaxLengthAppliesToNextAppend(t *testing.T) {
	h := NewHistoryService(snapshot(0), 10)
	for n := 1; n <= 4; n++ {
		require.NoError(t, h.Append(snapshot(n), h.Cursor()))
	}
	require.Equal(t, 5, h.Len())

	// Tightening the limit leaves the log alone until the next append
	require.NoError(t, h.SetMaxLength(2))
	require.Equal(t, 5, h.Len())
	require.Equal(t, 2, h.MaxLength())

	require.NoError(t, h.Append(snapshot(5), h.Cursor()))
	entries := h.Entries()
	require.Len(t, entries, 2)
	require.True(t, entries[0].Equal(snapshot(4)))
	require.True(t, entries[1].Equal(snapshot(5)))
	require.Equal(t, 1, h.Cursor())
}

func TestSetMaxLengthRejectsNonPositive(t *testing.T) {
	h := NewHistoryService(snapshot(0), 10)

	require.ErrorIs(t, h.SetMaxLength(0), ErrInvalidMaxLength)
	require.ErrorIs(t, h.SetMaxLength(-3), ErrInvalidMaxLength)
	require.Equal(t, 10, h.MaxLength())
}

// === Isolation ===

func TestStoredSnapshotsAreIsolated(t *testing.T) {
	h := NewHistoryService(snapshot(0), 10)

	// Mutating the caller's map after Append must not reach the log
	mine := snapshot(1)
	require.NoError(t, h.Append(mine, 0))
	mine[0][0] = models.TileBat
	require.True(t, h.Entries()[1].Equal(snapshot(1)))

	// Mutating a returned snapshot must not reach the log either
	got, ok := h.Undo()
	require.True(t, ok)
	got[2][2] = models.TileBat
	require.True(t, h.Entries()[0].Equal(snapshot(0)))
}

func TestStatusReportsOneConsistentReading(t *testing.T) {
	h := NewHistoryService(snapshot(0), 5)
	require.NoError(t, h.Append(snapshot(1), 0))

	st := h.Status()
	require.Equal(t, 2, st.Length)
	require.Equal(t, 1, st.Cursor)
	require.Equal(t, 5, st.MaxLength)
	require.True(t, st.CanUndo)
	require.False(t, st.CanRedo)
}

func TestConcurrentMutationKeepsCursorInRange(t *testing.T) {
	h := NewHistoryService(snapshot(0), 4)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				h.Append(snapshot(n%9), h.Cursor())
				h.Undo()
				h.Redo()
				st := h.Status()
				if st.Cursor < 0 || st.Cursor >= st.Length {
					t.Errorf("cursor %d outside [0, %d)", st.Cursor, st.Length)
					return
				}
			}
		}()
	}
	wg.Wait()
}
