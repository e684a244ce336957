package platform_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hockey/internal/platform"
	"github.com/aretw0/hockey/pkg/core"
	"github.com/aretw0/hockey/pkg/events"
	"github.com/aretw0/hockey/pkg/session"
)

func TestNewWiresEditor(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	reg := events.NewRegistry()
	require.NoError(t, reg.Add(core.EventType{Name: "Forecheck", Color: "#123456", Shortcut: "Q"}))
	require.NoError(t, reg.SaveFile(filepath.Join(dir, "events.yaml")))

	ed, err := platform.New(
		platform.WithConfigDir(dir),
		platform.WithRecordingMode(session.ModeFixedLength),
	)
	require.NoError(t, err)
	defer ed.Close()

	assert.Equal(t, session.ModeFixedLength, ed.Settings().Mode)
	_, ok := ed.Registry().Get("Forecheck")
	assert.True(t, ok, "custom events come from the events file")

	res, err := ed.HandleHotkey("q", 300)
	require.NoError(t, err)
	assert.Equal(t, session.HotkeyAdded, res.Action)

	require.NoError(t, ed.Save(ctx, filepath.Join(dir, "final")))
	path := filepath.Join(dir, "final.hep")

	cfg, err := platform.LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, cfg.Recent(), "recent projects are persisted")
}

func TestNewWithoutConfig(t *testing.T) {
	s := session.DefaultSettings()
	s.HistoryDepth = 3
	ed, err := platform.New(platform.WithoutConfig(), platform.WithSettings(s))
	require.NoError(t, err)
	defer ed.Close()

	for i := 0; i < 5; i++ {
		_, err := ed.AddMarker(core.Marker{StartFrame: i, EndFrame: i, EventName: "Goal"})
		require.NoError(t, err)
	}
	undo, _ := ed.History().Len()
	assert.Equal(t, 3, undo)
	assert.Len(t, ed.Registry().All(), len(events.Defaults))
}

func TestNewRejectsBadSettings(t *testing.T) {
	_, err := platform.New(platform.WithoutConfig(), platform.WithRecordingMode("later"))
	assert.Error(t, err)
}
