package session

import (
	"fmt"
	"time"

	"github.com/aretw0/hockey/pkg/history"
	"github.com/aretw0/hockey/pkg/reactive"
)

// RecordingMode selects how hotkeys turn into markers.
type RecordingMode string

const (
	// ModeDynamic records between two presses.
	ModeDynamic RecordingMode = "dynamic"
	// ModeFixedLength records a fixed-length segment per press.
	ModeFixedLength RecordingMode = "fixed_length"
)

// MaxRecent bounds the recent projects list.
const MaxRecent = 10

// Settings are the editor preferences.
type Settings struct {
	Mode          RecordingMode
	FixedDuration float64 // seconds
	PreRoll       float64 // seconds
	PostRoll      float64 // seconds

	HistoryDepth   int
	CoalesceDelay  time.Duration
	MaxIncremental int

	Autosave         bool
	AutosaveInterval time.Duration
	RecoveryDir      string

	// WatchExternal reports modifications of the open project file made by
	// other programs.
	WatchExternal bool
}

// DefaultSettings returns the stock preferences.
func DefaultSettings() Settings {
	return Settings{
		Mode:             ModeDynamic,
		FixedDuration:    10,
		PreRoll:          3,
		PostRoll:         0,
		HistoryDepth:     history.DefaultMaxDepth,
		CoalesceDelay:    reactive.DefaultDelay,
		MaxIncremental:   reactive.DefaultMaxIncremental,
		AutosaveInterval: 5 * time.Minute,
	}
}

// Validate rejects settings the editor cannot run with.
func (s Settings) Validate() error {
	switch s.Mode {
	case ModeDynamic, ModeFixedLength:
	default:
		return fmt.Errorf("unknown recording mode %q", s.Mode)
	}
	if s.FixedDuration <= 0 {
		return fmt.Errorf("fixed duration must be positive, got %v", s.FixedDuration)
	}
	if s.PreRoll < 0 || s.PostRoll < 0 {
		return fmt.Errorf("pre/post roll must not be negative")
	}
	if s.Autosave && s.AutosaveInterval <= 0 {
		return fmt.Errorf("autosave interval must be positive")
	}
	return nil
}

// PushRecent moves path to the front of list, dropping duplicates and
// anything past MaxRecent.
func PushRecent(list []string, path string) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, path)
	for _, p := range list {
		if p != path {
			out = append(out, p)
		}
	}
	if len(out) > MaxRecent {
		out = out[:MaxRecent]
	}
	return out
}
