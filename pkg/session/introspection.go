package session

import "github.com/aretw0/introspection"

// EditorState exposes internal state for observability.
type EditorState struct {
	Project      string `json:"project"`
	FilePath     string `json:"file_path,omitempty"`
	Markers      int    `json:"markers"`
	Dirty        bool   `json:"dirty"`
	Mode         string `json:"mode"`
	Recording    string `json:"recording,omitempty"`
	Watching     string `json:"watching,omitempty"`
	Autosaves    int    `json:"autosaves"`
	LastAutosave string `json:"last_autosave,omitempty"`
	Recent       int    `json:"recent"`
	Closed       bool   `json:"closed"`
	History      any    `json:"history,omitempty"`
	Scheduler    any    `json:"scheduler,omitempty"`
}

// State implements introspection.Introspectable.
func (e *Editor) State() any {
	e.mu.Lock()
	st := EditorState{
		Project:      e.project.Name,
		FilePath:     e.project.FilePath,
		Markers:      e.model.Len(),
		Dirty:        e.dirtyLocked(),
		Mode:         string(e.settings.Mode),
		Watching:     e.watchPath,
		Autosaves:    e.autosaves,
		LastAutosave: e.lastAuto,
		Recent:       len(e.recent),
		Closed:       e.closed,
	}
	if e.recording != nil {
		st.Recording = e.recording.event
	}
	hist, sched := e.history, e.sched
	e.mu.Unlock()

	st.History = hist.State()
	st.Scheduler = sched.State()
	return st
}

// ComponentType implements introspection.Component.
func (e *Editor) ComponentType() string {
	return "editor"
}

var _ introspection.Introspectable = (*Editor)(nil)
var _ introspection.Component = (*Editor)(nil)
