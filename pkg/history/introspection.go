package history

import (
	"github.com/aretw0/introspection"
)

// HistoryState exposes internal state for observability.
type HistoryState struct {
	UndoDepth int    `json:"undo_depth"`
	RedoDepth int    `json:"redo_depth"`
	MaxDepth  int    `json:"max_depth"`
	NextUndo  string `json:"next_undo,omitempty"`
	NextRedo  string `json:"next_redo,omitempty"`
}

// State implements introspection.Introspectable.
func (h *History) State() any {
	undo, redo := h.Len()
	return HistoryState{
		UndoDepth: undo,
		RedoDepth: redo,
		MaxDepth:  h.maxDepth,
		NextUndo:  h.UndoName(),
		NextRedo:  h.RedoName(),
	}
}

// ComponentType implements introspection.Component.
func (h *History) ComponentType() string {
	return "history"
}

var _ introspection.Introspectable = (*History)(nil)
var _ introspection.Component = (*History)(nil)
