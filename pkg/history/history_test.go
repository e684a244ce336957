package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hockey/pkg/core"
	"github.com/aretw0/hockey/pkg/history"
)

func mk(start, end int, name, note string) core.Marker {
	return core.Marker{StartFrame: start, EndFrame: end, EventName: name, Note: note}
}

func seeded(t *testing.T, markers ...core.Marker) (*core.Model, *history.History) {
	t.Helper()
	m := core.NewModel(nil)
	for _, x := range markers {
		_, err := m.Append(x)
		require.NoError(t, err)
	}
	return m, history.New(m)
}

func ptr[T any](v T) *T { return &v }

func TestEndToEndAddUndoRedo(t *testing.T) {
	m, h := seeded(t)

	require.NoError(t, h.Execute(history.NewAddMarker(mk(0, 30, "Goal", ""))))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, h.Execute(history.NewAddMarker(mk(40, 60, "Shot", ""))))
	assert.Equal(t, 2, m.Len())

	ok, err := h.Undo()
	require.NoError(t, err)
	assert.True(t, ok)
	require.Equal(t, 1, m.Len())
	first, _ := m.At(0)
	assert.Equal(t, "Goal", first.EventName)

	ok, err = h.Redo()
	require.NoError(t, err)
	assert.True(t, ok)
	require.Equal(t, 2, m.Len())
	shot, _ := m.At(1)
	assert.True(t, mk(40, 60, "Shot", "").Equal(shot))
}

func TestUndoRestoresExactState(t *testing.T) {
	base := []core.Marker{
		mk(0, 10, "Goal", "a"),
		mk(20, 30, "Turnover", ""),
		mk(40, 50, "Penalty", "slash"),
	}

	commands := map[string]func() history.Command{
		"add-middle": func() history.Command { return &history.AddMarker{Marker: mk(5, 6, "Goal", ""), At: 1} },
		"add-end":    func() history.Command { return history.NewAddMarker(mk(5, 6, "Goal", "")) },
		"delete":     func() history.Command { return history.NewDeleteMarker(1) },
		"modify": func() history.Command {
			return history.NewModifyMarker(2, core.MarkerPatch{EndFrame: ptr(55), Note: ptr("")})
		},
		"clear": func() history.Command { return history.NewClearMarkers() },
		"batch": func() history.Command {
			return history.NewBatch("two deletes", history.NewDeleteMarker(2), history.NewDeleteMarker(0))
		},
	}

	for name, build := range commands {
		t.Run(name, func(t *testing.T) {
			m, h := seeded(t, base...)
			before := m.Markers()

			require.NoError(t, h.Execute(build()))
			afterExec := m.Markers()

			ok, err := h.Undo()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, before, m.Markers(), "undo must restore every field including IDs")

			ok, err = h.Redo()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, afterExec, m.Markers(), "redo must reproduce the executed state")
		})
	}
}

func TestExecuteClearsRedo(t *testing.T) {
	_, h := seeded(t)

	require.NoError(t, h.Execute(history.NewAddMarker(mk(0, 1, "A", ""))))
	require.NoError(t, h.Execute(history.NewAddMarker(mk(2, 3, "B", ""))))
	_, _ = h.Undo()
	_, _ = h.Undo()
	assert.True(t, h.CanRedo())

	require.NoError(t, h.Execute(history.NewAddMarker(mk(4, 5, "C", ""))))
	assert.False(t, h.CanRedo())
	assert.True(t, h.CanUndo())
}

func TestEmptyStacks(t *testing.T) {
	_, h := seeded(t)

	ok, err := h.Undo()
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = h.Redo()
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestFailedExecuteLeavesStacks(t *testing.T) {
	m, h := seeded(t, mk(0, 1, "Goal", ""))
	require.NoError(t, h.Execute(history.NewAddMarker(mk(2, 3, "Goal", ""))))
	_, _ = h.Undo()

	err := h.Execute(history.NewDeleteMarker(7))
	assert.ErrorIs(t, err, core.ErrIndex)

	err = h.Execute(history.NewModifyMarker(0, core.MarkerPatch{EndFrame: ptr(-4)}))
	assert.ErrorIs(t, err, core.ErrValidation)

	assert.True(t, h.CanRedo(), "a failed command must not clear redo")
	undo, redo := h.Len()
	assert.Equal(t, 0, undo)
	assert.Equal(t, 1, redo)
	assert.Equal(t, 1, m.Len())
}

func TestBatchIsAllOrNothing(t *testing.T) {
	m, h := seeded(t, mk(0, 1, "Goal", ""), mk(2, 3, "Goal", ""))
	before := m.Markers()

	err := h.Execute(history.NewBatch("", history.NewDeleteMarker(0), history.NewDeleteMarker(5)))
	require.Error(t, err)
	assert.Equal(t, before, m.Markers())
	assert.False(t, h.CanUndo())
}

func TestMaxDepth(t *testing.T) {
	m := core.NewModel(nil)
	h := history.New(m, history.WithMaxDepth(3))

	for i := range 5 {
		require.NoError(t, h.Execute(history.NewAddMarker(mk(i, i, "Goal", ""))))
	}
	undo, _ := h.Len()
	assert.Equal(t, 3, undo)

	for h.CanUndo() {
		_, err := h.Undo()
		require.NoError(t, err)
	}
	assert.Equal(t, 2, m.Len(), "the two oldest adds fell off the stack")
}

func TestNamesAndSubscribe(t *testing.T) {
	_, h := seeded(t, mk(0, 1, "Goal", ""))

	calls := 0
	sub := h.Subscribe(func() { calls++ })

	require.NoError(t, h.Execute(history.NewAddMarker(mk(4, 8, "Penalty", ""))))
	assert.Equal(t, "Add Penalty marker", h.UndoName())
	assert.Equal(t, "", h.RedoName())

	_, _ = h.Undo()
	assert.Equal(t, "Add Penalty marker", h.RedoName())
	assert.Equal(t, 2, calls)

	sub.Unsubscribe()
	_, _ = h.Redo()
	assert.Equal(t, 2, calls)

	state, ok := h.State().(history.HistoryState)
	require.True(t, ok)
	assert.Equal(t, 1, state.UndoDepth)
	assert.Equal(t, history.DefaultMaxDepth, state.MaxDepth)
}

func TestDeleteShiftsAndUndoReinserts(t *testing.T) {
	m, h := seeded(t, mk(0, 1, "A", ""), mk(2, 3, "B", ""), mk(4, 5, "C", ""))
	before := m.Markers()

	cmd := history.NewDeleteMarker(1)
	require.NoError(t, h.Execute(cmd))
	assert.Equal(t, "B", cmd.Removed().EventName)

	after := m.Markers()
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[1])

	_, err := h.Undo()
	require.NoError(t, err)
	assert.Equal(t, before, m.Markers())
}

func TestPositionTracksUndo(t *testing.T) {
	_, h := seeded(t)
	start := h.Position()

	require.NoError(t, h.Execute(history.NewAddMarker(mk(0, 1, "Goal", ""))))
	afterFirst := h.Position()
	require.NoError(t, h.Execute(history.NewAddMarker(mk(2, 3, "Goal", ""))))
	assert.NotEqual(t, afterFirst, h.Position())

	_, err := h.Undo()
	require.NoError(t, err)
	assert.Equal(t, afterFirst, h.Position())
	_, err = h.Undo()
	require.NoError(t, err)
	assert.Equal(t, start, h.Position())

	_, err = h.Redo()
	require.NoError(t, err)
	assert.Equal(t, afterFirst, h.Position(), "redo returns to the same position")

	require.NoError(t, h.Execute(history.NewAddMarker(mk(4, 5, "Goal", ""))))
	branched := h.Position()
	assert.NotContains(t, []uint64{start, afterFirst}, branched)

	h.Clear()
	assert.NotContains(t, []uint64{start, afterFirst, branched}, h.Position())
}

func TestPositionSurvivesDepthLimit(t *testing.T) {
	m := core.NewModel(nil)
	h := history.New(m, history.WithMaxDepth(1))

	require.NoError(t, h.Execute(history.NewAddMarker(mk(0, 1, "Goal", ""))))
	first := h.Position()
	require.NoError(t, h.Execute(history.NewAddMarker(mk(2, 3, "Goal", ""))))

	_, err := h.Undo()
	require.NoError(t, err)
	assert.Equal(t, first, h.Position(), "oldest reachable state keeps its position")
}
