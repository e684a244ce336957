package session

import (
	"github.com/aretw0/hockey/pkg/core"
)

// HotkeyAction is the outcome of HandleHotkey.
type HotkeyAction int

const (
	// HotkeyIgnored means the key is not bound to an event type.
	HotkeyIgnored HotkeyAction = iota
	// HotkeyStarted means a dynamic recording began.
	HotkeyStarted
	// HotkeyAdded means a marker was added.
	HotkeyAdded
)

// HotkeyResult describes what a key press did.
type HotkeyResult struct {
	Action HotkeyAction
	Event  string
	// Index is the new marker's index when Action is HotkeyAdded.
	Index int
}

type recording struct {
	event string
	frame int
}

// Recording reports a dynamic recording in progress.
func (e *Editor) Recording() (event string, startFrame int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.recording == nil {
		return "", 0, false
	}
	return e.recording.event, e.recording.frame, true
}

// CancelRecording drops a dynamic recording in progress.
func (e *Editor) CancelRecording() {
	e.mu.Lock()
	e.recording = nil
	e.mu.Unlock()
}

// HandleHotkey turns a shortcut press at frame into markers according to the
// recording mode. In dynamic mode the first press starts a recording and the
// next press of any bound key ends it with that key's event type. In
// fixed-length mode every press adds a segment.
func (e *Editor) HandleHotkey(key string, frame int) (HotkeyResult, error) {
	et, ok := e.registry.ByShortcut(key)
	if !ok {
		return HotkeyResult{Action: HotkeyIgnored}, nil
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return HotkeyResult{}, ErrClosed
	}
	st := e.settings
	fps := e.project.FPS
	total := 0
	if e.video != nil {
		if e.video.FPS() > 0 {
			fps = e.video.FPS()
		}
		total = e.video.TotalFrames()
	}

	var m core.Marker
	switch st.Mode {
	case ModeFixedLength:
		start := frame - seconds(st.PreRoll, fps)
		end := start + seconds(st.FixedDuration, fps) + seconds(st.PostRoll, fps)
		m = core.Marker{StartFrame: max(0, start), EndFrame: end, EventName: et.Name}

	default:
		if e.recording == nil {
			e.recording = &recording{event: et.Name, frame: frame}
			e.mu.Unlock()
			if e.logger != nil {
				e.logger.Debug("recording started", "event", et.Name, "frame", frame)
			}
			return HotkeyResult{Action: HotkeyStarted, Event: et.Name}, nil
		}
		first, last := e.recording.frame, frame
		if last < first {
			first, last = last, first
		}
		e.recording = nil
		m = core.Marker{
			StartFrame: max(0, first-seconds(st.PreRoll, fps)),
			EndFrame:   last + seconds(st.PostRoll, fps),
			EventName:  et.Name,
		}
	}
	e.mu.Unlock()

	if total > 0 && m.EndFrame >= total {
		m.EndFrame = total - 1
	}
	if m.EndFrame < m.StartFrame {
		m.EndFrame = m.StartFrame
	}
	idx, err := e.AddMarker(m)
	if err != nil {
		return HotkeyResult{}, err
	}
	return HotkeyResult{Action: HotkeyAdded, Event: et.Name, Index: idx}, nil
}

// seconds converts a duration in seconds to whole frames, truncating.
func seconds(sec, fps float64) int {
	return int(sec * fps)
}
