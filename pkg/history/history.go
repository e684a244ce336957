// Package history implements the undo/redo engine. Commands are the only
// sanctioned way to mutate a marker model.
package history

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/hockey/pkg/core"
)

// DefaultMaxDepth bounds the undo stack when no depth is configured.
const DefaultMaxDepth = 50

// History holds the undo and redo stacks for one model.
type History struct {
	mu       sync.Mutex
	model    *core.Model
	undo     []entry
	redo     []entry
	maxDepth int
	logger   *slog.Logger

	// seq numbers executed commands; base is the position with an empty
	// undo stack.
	seq  uint64
	base uint64

	listeners []*listener
}

type listener struct {
	fn func()
}

type entry struct {
	cmd Command
	id  uint64
}

// Option configures a History.
type Option func(*History)

// WithMaxDepth limits the undo stack. Zero or negative means DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.maxDepth = n
		}
	}
}

// WithLogger sets the logger for the history.
func WithLogger(logger *slog.Logger) Option {
	return func(h *History) {
		h.logger = logger
	}
}

// New creates a history bound to model.
func New(model *core.Model, opts ...Option) *History {
	h := &History{
		model:    model,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute applies cmd and records it. The redo stack is cleared.
// If Apply fails, neither stack changes.
func (h *History) Execute(cmd Command) error {
	h.mu.Lock()
	if err := cmd.Apply(h.model); err != nil {
		h.mu.Unlock()
		return err
	}
	h.seq++
	h.undo = append(h.undo, entry{cmd: cmd, id: h.seq})
	h.redo = nil
	if drop := len(h.undo) - h.maxDepth; drop > 0 {
		h.base = h.undo[drop-1].id
		h.undo = slices.Delete(h.undo, 0, drop)
	}
	h.mu.Unlock()

	if h.logger != nil {
		h.logger.Debug("command executed", "command", cmd.Name())
	}
	h.notify()
	return nil
}

// Undo reverts the most recent command. It reports false when there is
// nothing to undo. A command whose Revert fails stays on the undo stack.
func (h *History) Undo() (bool, error) {
	h.mu.Lock()
	if len(h.undo) == 0 {
		h.mu.Unlock()
		return false, nil
	}
	top := h.undo[len(h.undo)-1]
	cmd := top.cmd
	if err := cmd.Revert(h.model); err != nil {
		h.mu.Unlock()
		return false, err
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, top)
	h.mu.Unlock()

	if h.logger != nil {
		h.logger.Debug("command undone", "command", cmd.Name())
	}
	h.notify()
	return true, nil
}

// Redo re-applies the most recently undone command.
func (h *History) Redo() (bool, error) {
	h.mu.Lock()
	if len(h.redo) == 0 {
		h.mu.Unlock()
		return false, nil
	}
	top := h.redo[len(h.redo)-1]
	cmd := top.cmd
	if err := cmd.Apply(h.model); err != nil {
		h.mu.Unlock()
		return false, err
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, top)
	h.mu.Unlock()

	if h.logger != nil {
		h.logger.Debug("command redone", "command", cmd.Name())
	}
	h.notify()
	return true, nil
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// UndoName returns the name of the command Undo would revert, or "".
func (h *History) UndoName() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return ""
	}
	return h.undo[len(h.undo)-1].cmd.Name()
}

// RedoName returns the name of the command Redo would apply, or "".
func (h *History) RedoName() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return ""
	}
	return h.redo[len(h.redo)-1].cmd.Name()
}

// Len returns the sizes of the undo and redo stacks.
func (h *History) Len() (undo, redo int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo), len(h.redo)
}

// Position identifies the model state reached through this history. Undoing
// back to an earlier state returns its earlier position. States that cannot
// be reached by undo or redo get positions never seen before.
func (h *History) Position() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return h.base
	}
	return h.undo[len(h.undo)-1].id
}

// Clear drops both stacks without touching the model.
func (h *History) Clear() {
	h.mu.Lock()
	h.undo = nil
	h.redo = nil
	h.seq++
	h.base = h.seq
	h.mu.Unlock()
	h.notify()
}

// Subscribe registers fn to run after every execute, undo, redo or clear.
func (h *History) Subscribe(fn func()) core.Subscription {
	l := &listener{fn: fn}
	h.mu.Lock()
	h.listeners = append(h.listeners, l)
	h.mu.Unlock()

	return core.NewSubscription(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.listeners = slices.DeleteFunc(h.listeners, func(x *listener) bool { return x == l })
	})
}

func (h *History) notify() {
	h.mu.Lock()
	ls := slices.Clone(h.listeners)
	h.mu.Unlock()
	for _, l := range ls {
		l.fn()
	}
}
