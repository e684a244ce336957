package session_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hockey/pkg/adapters/archive"
	"github.com/aretw0/hockey/pkg/core"
	"github.com/aretw0/hockey/pkg/query"
	"github.com/aretw0/hockey/pkg/session"
)

type recorder struct {
	mu          sync.Mutex
	full        int
	incremental [][]int
}

func (r *recorder) OnIncrementalUpdate(indices []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.incremental = append(r.incremental, indices)
}

func (r *recorder) OnFullRebuild() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.full++
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.full, len(r.incremental)
}

func newEditor(t *testing.T, opts ...session.Option) *session.Editor {
	t.Helper()
	e, err := session.New(append([]session.Option{session.WithStore(archive.New())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func ptr[T any](v T) *T { return &v }

func TestEditorEditing(t *testing.T) {
	e := newEditor(t)
	assert.False(t, e.Dirty())

	i, err := e.AddMarker(core.Marker{StartFrame: 10, EndFrame: 20, EventName: "Goal"})
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	_, err = e.AddMarker(core.Marker{StartFrame: 30, EndFrame: 40, EventName: "Penalty", Note: "hook"})
	require.NoError(t, err)
	_, err = e.AddMarker(core.Marker{StartFrame: 50, EndFrame: 60, EventName: "Turnover"})
	require.NoError(t, err)
	assert.True(t, e.Dirty())

	require.NoError(t, e.ModifyMarker(0, core.MarkerPatch{Note: ptr("five hole")}))
	m, err := e.Model().At(0)
	require.NoError(t, err)
	assert.Equal(t, "five hole", m.Note)
	assert.Equal(t, "Goal", m.EventName)

	before := e.Model().Markers()
	require.NoError(t, e.DeleteMarkers([]int{2, 0, 2}))
	require.Equal(t, 1, e.Model().Len())
	assert.Equal(t, "Penalty", e.Project().Markers[0].EventName)

	ok, err := e.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, e.Model().Markers(), "batch delete is one undo step")

	ok, err = e.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, e.Model().Len())

	require.NoError(t, e.ClearMarkers())
	assert.Equal(t, 0, e.Model().Len())
	undo, _ := e.History().Len()
	require.NoError(t, e.ClearMarkers())
	undoAfter, _ := e.History().Len()
	assert.Equal(t, undo, undoAfter, "clearing an empty project records nothing")

	entries := e.Filtered(query.Filter{})
	assert.Empty(t, entries)
}

func TestEditorValidation(t *testing.T) {
	e := newEditor(t, session.WithVideo(core.StaticVideo{Frames: 100, Rate: 25}))

	_, err := e.AddMarker(core.Marker{StartFrame: 1, EndFrame: 2, EventName: "Nope"})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = e.AddMarker(core.Marker{StartFrame: 1, EndFrame: 100, EventName: "Goal"})
	assert.ErrorIs(t, err, core.ErrValidation)

	assert.ErrorIs(t, e.DeleteMarker(3), core.ErrIndex)
	assert.False(t, e.History().CanUndo())
	assert.False(t, e.Dirty())
}

func TestEditorSaveOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	var hooked []string
	e := newEditor(t, session.WithRecentHook(func(r []string) { hooked = r }))
	require.NoError(t, e.NewProject("Semi Final", "semi.mp4", 25))

	assert.ErrorIs(t, e.Save(ctx, ""), session.ErrNoTarget)

	_, err := e.AddMarker(core.Marker{StartFrame: 5, EndFrame: 15, EventName: "Goal", Note: "pp"})
	require.NoError(t, err)
	require.NoError(t, e.Save(ctx, filepath.Join(dir, "semi")))
	assert.False(t, e.Dirty())

	path := filepath.Join(dir, "semi.hep")
	assert.Equal(t, path, e.Project().FilePath)
	assert.Equal(t, []string{path}, e.Recent())
	assert.Equal(t, []string{path}, hooked)

	// A second editor sees the same project.
	other := newEditor(t)
	require.NoError(t, other.Open(ctx, path))
	p := other.Project()
	assert.Equal(t, "Semi Final", p.Name)
	assert.Equal(t, 25.0, p.FPS)
	require.Len(t, p.Markers, 1)
	assert.True(t, p.Markers[0].Equal(core.Marker{StartFrame: 5, EndFrame: 15, EventName: "Goal", Note: "pp"}))
	assert.False(t, other.History().CanUndo(), "opening starts a fresh history")

	// A failed open keeps the current project.
	err = other.Open(ctx, filepath.Join(dir, "missing.hep"))
	assert.ErrorIs(t, err, core.ErrIO)
	assert.Equal(t, "Semi Final", other.Project().Name)
	assert.Equal(t, 1, other.Model().Len())

	// Saving to the same path needs no argument.
	_, err = other.AddMarker(core.Marker{StartFrame: 20, EndFrame: 20, EventName: "Hit"})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = other.AddMarker(core.Marker{StartFrame: 20, EndFrame: 20, EventName: "Penalty"})
	require.NoError(t, err)
	require.NoError(t, other.Save(ctx, ""))

	require.NoError(t, e.Open(ctx, path))
	assert.Equal(t, 2, e.Model().Len())
}

func TestEditorOpenAdoptsUnknownEvents(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.hep")

	p := core.NewProject("legacy", "", 30)
	p.Markers = []core.Marker{{ID: "x", StartFrame: 1, EndFrame: 1, EventName: "Attack"}}
	require.NoError(t, archive.New().Save(ctx, p, path))

	e := newEditor(t)
	require.NoError(t, e.Open(ctx, path))
	_, ok := e.Registry().Get("Attack")
	assert.True(t, ok)
	require.NoError(t, e.ModifyMarker(0, core.MarkerPatch{Note: ptr("edited")}))
}

func TestEditorObserversFollowProject(t *testing.T) {
	ctx := context.Background()
	e := newEditor(t, session.WithSettings(func() session.Settings {
		s := session.DefaultSettings()
		s.CoalesceDelay = time.Hour
		return s
	}()))

	rec := &recorder{}
	sub := e.Observe(rec)

	_, err := e.AddMarker(core.Marker{StartFrame: 1, EndFrame: 2, EventName: "Goal"})
	require.NoError(t, err)
	require.NoError(t, e.ModifyMarker(0, core.MarkerPatch{Note: ptr("n")}))
	e.Flush()
	full, inc := rec.counts()
	assert.Equal(t, 1, full, "add escalates the batch")
	assert.Equal(t, 0, inc)

	path := filepath.Join(t.TempDir(), "p.hep")
	require.NoError(t, e.Save(ctx, path))
	require.NoError(t, e.Open(ctx, path))
	full, _ = rec.counts()
	assert.Equal(t, 2, full, "opening rebuilds observers")

	require.NoError(t, e.ModifyMarker(0, core.MarkerPatch{Note: ptr("m")}))
	e.Flush()
	_, inc = rec.counts()
	assert.Equal(t, 1, inc)

	sub.Unsubscribe()
	require.NoError(t, e.ModifyMarker(0, core.MarkerPatch{Note: ptr("o")}))
	e.Flush()
	_, inc = rec.counts()
	assert.Equal(t, 1, inc)
}

func TestEditorClose(t *testing.T) {
	e := newEditor(t)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	_, err := e.AddMarker(core.Marker{StartFrame: 1, EndFrame: 2, EventName: "Goal"})
	assert.ErrorIs(t, err, session.ErrClosed)
	_, err = e.Undo()
	assert.ErrorIs(t, err, session.ErrClosed)
	assert.ErrorIs(t, e.Save(context.Background(), "x.hep"), session.ErrClosed)

	st := e.State().(session.EditorState)
	assert.True(t, st.Closed)
}

func TestEditorNoStore(t *testing.T) {
	e, err := session.New()
	require.NoError(t, err)
	defer e.Close()
	assert.ErrorIs(t, e.Open(context.Background(), "x.hep"), session.ErrNoStore)
}

func TestInvalidSettings(t *testing.T) {
	s := session.DefaultSettings()
	s.Mode = "sometimes"
	_, err := session.New(session.WithSettings(s))
	assert.Error(t, err)
}

func TestPushRecent(t *testing.T) {
	var list []string
	for i := 0; i < 12; i++ {
		list = session.PushRecent(list, filepath.Join("p", string(rune('a'+i))))
	}
	assert.Len(t, list, session.MaxRecent)
	assert.Equal(t, filepath.Join("p", "l"), list[0])

	list = session.PushRecent(list, filepath.Join("p", "f"))
	assert.Len(t, list, session.MaxRecent)
	assert.Equal(t, filepath.Join("p", "f"), list[0])
	assert.Equal(t, filepath.Join("p", "l"), list[1])
}

func TestAutosave(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := session.DefaultSettings()
	s.RecoveryDir = dir

	e := newEditor(t, session.WithSettings(s))
	_, err := e.AddMarker(core.Marker{StartFrame: 1, EndFrame: 2, EventName: "Goal"})
	require.NoError(t, err)

	var last string
	for i := 0; i < session.RecoveryKeep+2; i++ {
		last, err = e.Autosave(ctx)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	assert.True(t, e.Dirty(), "autosave does not count as saving")
	assert.Empty(t, e.Project().FilePath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, session.RecoveryKeep)

	latest, err := session.LatestRecovery(dir)
	require.NoError(t, err)
	assert.Equal(t, last, latest)

	p, err := archive.New().Load(ctx, latest)
	require.NoError(t, err)
	assert.Len(t, p.Markers, 1)

	st := e.State().(session.EditorState)
	assert.Equal(t, session.RecoveryKeep+2, st.Autosaves)

	_, err = session.LatestRecovery(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAutosaveNeedsDirectory(t *testing.T) {
	e := newEditor(t)
	_, err := e.Autosave(context.Background())
	assert.ErrorIs(t, err, session.ErrNoRecoveryDir)
}

func TestExternalChange(t *testing.T) {
	ctx := context.Background()
	s := session.DefaultSettings()
	s.WatchExternal = true
	e := newEditor(t, session.WithSettings(s))

	changes := make(chan session.ExternalChange, 4)
	e.OnExternalChange(func(c session.ExternalChange) { changes <- c })

	path := filepath.Join(t.TempDir(), "watched.hep")
	require.NoError(t, e.Save(ctx, path))

	// Let the watcher settle, then modify the file behind the editor's back.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0644))

	select {
	case c := <-changes:
		assert.Equal(t, path, c.Path)
		assert.False(t, c.Removed)
	case <-time.After(3 * time.Second):
		t.Fatal("expected an external change")
	}
}

func TestEditorUndoAfterEventTypeDeleted(t *testing.T) {
	e := newEditor(t)
	require.NoError(t, e.Registry().Add(core.EventType{Name: "Hit", Color: "#123456"}))

	_, err := e.AddMarker(core.Marker{StartFrame: 10, EndFrame: 12, EventName: "Hit"})
	require.NoError(t, err)
	added, err := e.Model().At(0)
	require.NoError(t, err)
	require.NoError(t, e.DeleteMarker(0))
	require.NoError(t, e.Registry().Delete("Hit"))

	ok, err := e.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	got, err := e.Model().At(0)
	require.NoError(t, err)
	assert.Equal(t, added, got, "undo restores the marker even though its type is gone")

	require.NoError(t, e.ModifyMarker(0, core.MarkerPatch{Note: ptr("late hit")}))
	assert.ErrorIs(t, e.ModifyMarker(0, core.MarkerPatch{EventName: ptr("Gone")}), core.ErrValidation)

	ok, err = e.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	got, err = e.Model().At(0)
	require.NoError(t, err)
	assert.Equal(t, added, got)
}

func TestEditorFollowsEventTypeChanges(t *testing.T) {
	e := newEditor(t)
	reg := e.Registry()
	require.NoError(t, reg.Add(core.EventType{Name: "Hit", Color: "#123456"}))
	for _, m := range []core.Marker{
		{StartFrame: 1, EndFrame: 2, EventName: "Hit"},
		{StartFrame: 3, EndFrame: 4, EventName: "Goal"},
		{StartFrame: 5, EndFrame: 6, EventName: "Hit", Note: "boards"},
	} {
		_, err := e.AddMarker(m)
		require.NoError(t, err)
	}
	names := func() []string {
		var out []string
		for _, m := range e.Model().Markers() {
			out = append(out, m.EventName)
		}
		return out
	}

	require.NoError(t, reg.Update("Hit", core.EventType{Name: "Body Check", Color: "#123456"}))
	assert.Equal(t, []string{"Body Check", "Goal", "Body Check"}, names())
	assert.Equal(t, "Rename Hit to Body Check", e.History().UndoName())

	_, err := e.Undo()
	require.NoError(t, err)
	assert.Equal(t, []string{"Hit", "Goal", "Hit"}, names())
	_, err = e.Redo()
	require.NoError(t, err)
	assert.Equal(t, []string{"Body Check", "Goal", "Body Check"}, names())

	require.NoError(t, reg.Delete("Body Check"))
	assert.Equal(t, []string{"Goal"}, names())

	ok, err := e.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Body Check", "Goal", "Body Check"}, names(), "type deletion undoes as one step")
	assert.Equal(t, "boards", e.Project().Markers[2].Note)
}

func TestEditorDirtyFollowsUndo(t *testing.T) {
	ctx := context.Background()
	e := newEditor(t)
	_, err := e.AddMarker(core.Marker{StartFrame: 1, EndFrame: 2, EventName: "Goal"})
	require.NoError(t, err)
	require.NoError(t, e.Save(ctx, filepath.Join(t.TempDir(), "game.hep")))
	assert.False(t, e.Dirty())

	_, err = e.AddMarker(core.Marker{StartFrame: 3, EndFrame: 4, EventName: "Goal"})
	require.NoError(t, err)
	assert.True(t, e.Dirty())

	_, err = e.Undo()
	require.NoError(t, err)
	assert.False(t, e.Dirty(), "back at the saved state")

	_, err = e.Undo()
	require.NoError(t, err)
	assert.True(t, e.Dirty(), "before the saved state")

	_, err = e.Redo()
	require.NoError(t, err)
	assert.False(t, e.Dirty())
}

func TestEditorFailedOpenKeepsRegistry(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.hep")
	p := core.NewProject("legacy", "", 30)
	p.Markers = []core.Marker{{StartFrame: 1, EndFrame: 1, EventName: "Attack"}}
	require.NoError(t, archive.New().Save(ctx, p, path))

	e := newEditor(t)
	require.NoError(t, e.Close())
	assert.ErrorIs(t, e.Open(ctx, path), session.ErrClosed)
	_, ok := e.Registry().Get("Attack")
	assert.False(t, ok, "a failed open must not register event types")
}
