package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devcomfort/instructable-pcgrl/models"
	"github.com/devcomfort/instructable-pcgrl/persistence"
)

var testShape = models.GridShape{Rows: 2, Cols: 2}

func newTestState(t *testing.T, record map[string]string) *StateService {
	t.Helper()
	return NewStateService(persistence.NewMemorySinkFrom(record), testShape)
}

// === Reads ===

func TestMapFallsBackWhenAbsent(t *testing.T) {
	s := newTestState(t, nil)
	require.True(t, s.Map().Equal(models.NewGridMap(testShape)))
}

func TestMapFallsBackOnMalformedValue(t *testing.T) {
	s := newTestState(t, map[string]string{KeyMap: "not-json"})
	require.True(t, s.Map().Equal(models.NewGridMap(testShape)))
}

func TestMapReadsStoredValue(t *testing.T) {
	s := newTestState(t, map[string]string{KeyMap: "[[2,2],[1,1]]"})

	m := s.Map()
	require.Equal(t, models.TileWall, m[0][0])
	require.Equal(t, models.TileWall, m[0][1])
	require.Equal(t, models.TileEmpty, m[1][1])
}

// === Writes ===

func TestSetMapPreservesOtherKeys(t *testing.T) {
	sink := persistence.NewMemorySinkFrom(map[string]string{KeyActiveTab: "chat"})
	s := NewStateService(sink, testShape)

	next := models.NewGridMap(testShape)
	next[0][1] = models.TileBat
	require.NoError(t, s.SetMap(next))

	// The map landed and the unrelated key survived
	record, err := sink.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "chat", record[KeyActiveTab])
	stored, err := models.DecodeMap(record[KeyMap])
	require.NoError(t, err)
	require.True(t, stored.Equal(next))
}

func TestUpdateMapReadModifyWrite(t *testing.T) {
	s := newTestState(t, nil)

	got, err := s.UpdateMap(func(m models.GridMap) models.GridMap {
		m[1][0] = models.TileWall
		return m
	})
	require.NoError(t, err)
	require.Equal(t, models.TileWall, got[1][0])
	require.Equal(t, models.TileWall, s.Map()[1][0])
}

func TestUpdateMapFeedsDefaultOnParseFailure(t *testing.T) {
	s := newTestState(t, map[string]string{KeyMap: "{broken"})

	var seen models.GridMap
	_, err := s.UpdateMap(func(m models.GridMap) models.GridMap {
		seen = m.Clone()
		return m
	})
	require.NoError(t, err)
	require.True(t, seen.Equal(models.NewGridMap(testShape)))
}

// === Subscriptions ===

func TestSubscribersNotifiedInOrder(t *testing.T) {
	s := newTestState(t, nil)

	var order []string
	s.Subscribe(func(models.GridMap) { order = append(order, "first") })
	s.Subscribe(func(models.GridMap) { order = append(order, "second") })

	require.NoError(t, s.SetMap(models.NewGridMap(testShape)))
	require.Equal(t, []string{"first", "second"}, order)
}

func TestSubscriberReceivesIsolatedCopy(t *testing.T) {
	s := newTestState(t, nil)

	var got models.GridMap
	s.Subscribe(func(m models.GridMap) { got = m })

	next := models.NewGridMap(testShape)
	next[0][0] = models.TileBat
	require.NoError(t, s.SetMap(next))
	require.True(t, got.Equal(next))

	// Scribbling on the delivered copy must not reach the stored state
	got[0][0] = models.TileWall
	require.Equal(t, models.TileBat, s.Map()[0][0])
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := newTestState(t, nil)

	calls := 0
	unsubscribe := s.Subscribe(func(models.GridMap) { calls++ })

	require.NoError(t, s.SetMap(models.NewGridMap(testShape)))
	unsubscribe()
	require.NoError(t, s.SetMap(models.NewGridMap(testShape)))
	require.Equal(t, 1, calls)
}

// === Active tab ===

func TestActiveTabDefaultsAndValidation(t *testing.T) {
	s := newTestState(t, nil)
	require.Equal(t, models.DefaultTab, s.ActiveTab())

	require.NoError(t, s.SetActiveTab(models.TabAnimate))
	require.Equal(t, models.TabAnimate, s.ActiveTab())

	err := s.SetActiveTab(models.UITab("settings"))
	require.ErrorIs(t, err, ErrInvalidTab)
	require.Equal(t, models.TabAnimate, s.ActiveTab())
}

func TestActiveTabIgnoresGarbageValue(t *testing.T) {
	s := newTestState(t, map[string]string{KeyActiveTab: "blorp"})
	require.Equal(t, models.DefaultTab, s.ActiveTab())
}

// === Share fragments ===

func TestFragmentRoundTripBetweenSessions(t *testing.T) {
	s := newTestState(t, nil)
	next := models.NewGridMap(testShape)
	next[1][1] = models.TileWall
	require.NoError(t, s.SetMap(next))
	require.NoError(t, s.SetActiveTab(models.TabChat))

	fragment, err := s.Fragment()
	require.NoError(t, err)

	// A second session restored from the fragment sees the same state
	restored := newTestState(t, nil)
	require.NoError(t, restored.Restore(fragment))
	require.True(t, restored.Map().Equal(next))
	require.Equal(t, models.TabChat, restored.ActiveTab())
}

func TestRestoreNotifiesWithDefaultOnBadMap(t *testing.T) {
	s := newTestState(t, nil)

	var got models.GridMap
	calls := 0
	s.Subscribe(func(m models.GridMap) { got = m; calls++ })

	require.NoError(t, s.Restore("map=garbage&activeTab=draw"))
	require.Equal(t, 1, calls)
	require.True(t, got.Equal(models.NewGridMap(testShape)))
}

func TestRestoreWithoutMapKeyDoesNotNotify(t *testing.T) {
	s := newTestState(t, nil)
	calls := 0
	s.Subscribe(func(models.GridMap) { calls++ })

	require.NoError(t, s.Restore("activeTab=chat"))
	require.Equal(t, 0, calls)
	require.Equal(t, models.TabChat, s.ActiveTab())
}

func TestRestoreRejectsUnparseableFragment(t *testing.T) {
	s := newTestState(t, nil)
	require.Error(t, s.Restore("map=%zz"))
}
