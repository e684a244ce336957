package events

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hockey/pkg/core"
)

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry()
	assert.Len(t, r.All(), len(Defaults))

	goal, ok := r.Get("Goal")
	require.True(t, ok)
	assert.Equal(t, "#FF0000", goal.Color)

	e, ok := r.ByShortcut("g")
	require.True(t, ok, "shortcut lookup is case-insensitive")
	assert.Equal(t, "Goal", e.Name)

	_, ok = r.ByShortcut("")
	assert.False(t, ok)
	assert.Equal(t, FallbackColor, r.Color("Unknown"))
	assert.Empty(t, r.Custom())
}

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Add(core.EventType{Name: "Hit", Color: "#123abc", Shortcut: "J"}))
	assert.ErrorIs(t, r.Add(core.EventType{Name: "Hit", Color: "#123abc"}), ErrExists)
	assert.ErrorIs(t, r.Add(core.EventType{Name: "Check", Color: "red"}), ErrInvalidColor)
	assert.ErrorIs(t, r.Add(core.EventType{Name: "Check", Color: "#000000", Shortcut: "g"}), ErrShortcutTaken)
	assert.ErrorIs(t, r.Add(core.EventType{Name: " ", Color: "#000000"}), ErrEmptyName)

	require.Len(t, r.Custom(), 1)
	assert.Equal(t, "Hit", r.Custom()[0].Name)
}

func TestRegistryUpdate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(core.EventType{Name: "Hit", Color: "#123abc", Shortcut: "J"}))

	// keeping its own shortcut is not a conflict
	require.NoError(t, r.Update("Hit", core.EventType{Name: "Body Check", Color: "#123abc", Shortcut: "J"}))
	_, ok := r.Get("Hit")
	assert.False(t, ok)
	_, ok = r.Get("Body Check")
	assert.True(t, ok)

	assert.ErrorIs(t, r.Update("Missing", core.EventType{Name: "X", Color: "#000000"}), ErrNotFound)
	assert.ErrorIs(t, r.Update("Body Check", core.EventType{Name: "Goal", Color: "#000000"}), ErrExists)
	assert.ErrorIs(t, r.Update("Body Check", core.EventType{Name: "Body Check", Color: "#000000", Shortcut: "P"}), ErrShortcutTaken)
}

func TestRegistryDeleteAndReset(t *testing.T) {
	r := NewRegistry()
	calls := 0
	sub := r.Subscribe(func() { calls++ })

	require.NoError(t, r.Add(core.EventType{Name: "Hit", Color: "#123abc"}))
	assert.ErrorIs(t, r.Delete("Goal"), ErrProtected)
	assert.ErrorIs(t, r.Delete("Nope"), ErrNotFound)
	require.NoError(t, r.Delete("Hit"))

	require.NoError(t, r.Add(core.EventType{Name: "Hit", Color: "#123abc"}))
	r.Reset()
	assert.Empty(t, r.Custom())
	assert.Equal(t, 4, calls)

	sub.Unsubscribe()
	r.Reset()
	assert.Equal(t, 4, calls)
}

func TestRegistryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")

	t.Run("Missing File Yields Defaults", func(t *testing.T) {
		r, err := LoadFile(path)
		require.NoError(t, err)
		assert.Len(t, r.All(), len(Defaults))
	})

	t.Run("Round Trip", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Update("Goal", core.EventType{Name: "Goal", Color: "#00FF00", Shortcut: "Q"}))
		require.NoError(t, r.Add(core.EventType{Name: "Attack", Color: "#8b0000", Shortcut: "G"}))
		require.NoError(t, r.SaveFile(path))

		loaded, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, r.All(), loaded.All())
	})

	t.Run("Rejects Conflicting Shortcuts", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		content := "events:\n  - name: Hit\n    color: \"#000000\"\n    shortcut: g\n"
		require.NoError(t, os.WriteFile(bad, []byte(content), 0644))

		_, err := LoadFile(bad)
		assert.ErrorIs(t, err, ErrShortcutTaken)
	})

	t.Run("Rejects Garbage", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("events: [\n"), 0644))
		_, err := LoadFile(bad)
		assert.Error(t, err)
	})
}

func TestRegistryChanges(t *testing.T) {
	r := NewRegistry()
	var got []Change
	sub := r.OnChange(func(c Change) { got = append(got, c) })
	defer sub.Unsubscribe()

	require.NoError(t, r.Add(core.EventType{Name: "Hit", Color: "#123abc"}))
	require.NoError(t, r.Update("Hit", core.EventType{Name: "Hit", Color: "#000000"}))
	require.NoError(t, r.Update("Hit", core.EventType{Name: "Body Check", Color: "#000000"}))
	require.NoError(t, r.Add(core.EventType{Name: "Icing", Color: "#ffffff"}))
	require.NoError(t, r.Delete("Icing"))
	require.NoError(t, r.Add(core.EventType{Name: "Icing", Color: "#ffffff"}))
	r.Reset()

	assert.Equal(t, []Change{
		{Kind: ChangeAdded, Name: "Hit"},
		{Kind: ChangeUpdated, Name: "Hit"},
		{Kind: ChangeRenamed, Name: "Body Check", OldName: "Hit"},
		{Kind: ChangeAdded, Name: "Icing"},
		{Kind: ChangeDeleted, Name: "Icing", Removed: []string{"Icing"}},
		{Kind: ChangeAdded, Name: "Icing"},
		{Kind: ChangeReset, Removed: []string{"Body Check", "Icing"}},
	}, got)
}
