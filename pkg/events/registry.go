// Package events manages the event types markers are tagged with.
package events

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/hockey/pkg/core"
)

var (
	ErrExists        = errors.New("event type already exists")
	ErrNotFound      = errors.New("event type not found")
	ErrProtected     = errors.New("default event types cannot be deleted")
	ErrInvalidColor  = errors.New("color must be #RRGGBB")
	ErrShortcutTaken = errors.New("shortcut already assigned")
	ErrEmptyName     = errors.New("event type name is empty")
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Defaults are always available and cannot be deleted.
var Defaults = []core.EventType{
	{Name: "Goal", Color: "#FF0000", Shortcut: "G", Description: "Goal scored"},
	{Name: "Shot on Goal", Color: "#FF5722", Shortcut: "H", Description: "Shot on goal"},
	{Name: "Missed Shot", Color: "#FF9800", Shortcut: "M", Description: "Shot missed the net"},
	{Name: "Blocked Shot", Color: "#795548", Shortcut: "B", Description: "Shot blocked"},
	{Name: "Zone Entry", Color: "#2196F3", Shortcut: "Z", Description: "Entry into offensive zone"},
	{Name: "Zone Exit", Color: "#03A9F4", Shortcut: "X", Description: "Exit from defensive zone"},
	{Name: "Dump In", Color: "#00BCD4", Shortcut: "D", Description: "Dump puck into zone"},
	{Name: "Turnover", Color: "#607D8B", Shortcut: "T", Description: "Loss of puck possession"},
	{Name: "Takeaway", Color: "#4CAF50", Shortcut: "A", Description: "Puck possession gained"},
	{Name: "Faceoff Win", Color: "#8BC34A", Shortcut: "F", Description: "Faceoff won"},
	{Name: "Faceoff Loss", Color: "#558B2F", Shortcut: "L", Description: "Faceoff lost"},
	{Name: "Defensive Block", Color: "#3F51B5", Shortcut: "K", Description: "Shot blocked in defense"},
	{Name: "Penalty", Color: "#9C27B0", Shortcut: "P", Description: "Penalty called"},
}

// FallbackColor is used for markers whose event type is unknown.
const FallbackColor = "#CCCCCC"

// ChangeKind is the type of registry mutation.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeUpdated ChangeKind = "updated"
	ChangeRenamed ChangeKind = "renamed"
	ChangeDeleted ChangeKind = "deleted"
	ChangeReset   ChangeKind = "reset"
)

// Change describes one committed registry mutation.
type Change struct {
	Kind ChangeKind
	// Name is the affected type, or its new name after a rename.
	Name    string
	OldName string
	// Removed lists the names that no longer exist, for deletes and resets.
	Removed []string
}

// Registry is the set of known event types. It implements core.EventRegistry.
type Registry struct {
	mu        sync.RWMutex
	events    map[string]core.EventType
	listeners []*func(Change)
}

// NewRegistry creates a registry holding the defaults plus extra.
// Extra entries override defaults with the same name.
func NewRegistry(extra ...core.EventType) *Registry {
	r := &Registry{events: make(map[string]core.EventType)}
	for _, e := range Defaults {
		r.events[e.Name] = e
	}
	for _, e := range extra {
		if e.Name != "" {
			r.events[e.Name] = e
		}
	}
	return r
}

// Get returns the event type called name.
func (r *Registry) Get(name string) (core.EventType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[name]
	return e, ok
}

// All returns every event type sorted by name.
func (r *Registry) All() []core.EventType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Color returns the display color of name, or FallbackColor.
func (r *Registry) Color(name string) string {
	if e, ok := r.Get(name); ok {
		return e.Color
	}
	return FallbackColor
}

// ByShortcut finds the event bound to key, case-insensitively.
func (r *Registry) ByShortcut(key string) (core.EventType, bool) {
	if key == "" {
		return core.EventType{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.events {
		if strings.EqualFold(e.Shortcut, key) {
			return e, true
		}
	}
	return core.EventType{}, false
}

// Add registers a new event type.
func (r *Registry) Add(e core.EventType) error {
	r.mu.Lock()
	if err := r.checkLocked(e, ""); err != nil {
		r.mu.Unlock()
		return err
	}
	if _, ok := r.events[e.Name]; ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrExists, e.Name)
	}
	r.events[e.Name] = e
	r.mu.Unlock()

	r.notify(Change{Kind: ChangeAdded, Name: e.Name})
	return nil
}

// Update replaces the event type oldName with e, renaming it if the names differ.
func (r *Registry) Update(oldName string, e core.EventType) error {
	r.mu.Lock()
	if _, ok := r.events[oldName]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, oldName)
	}
	if oldName != e.Name {
		if _, ok := r.events[e.Name]; ok {
			r.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrExists, e.Name)
		}
	}
	if err := r.checkLocked(e, oldName); err != nil {
		r.mu.Unlock()
		return err
	}
	delete(r.events, oldName)
	r.events[e.Name] = e
	r.mu.Unlock()

	if oldName != e.Name {
		r.notify(Change{Kind: ChangeRenamed, Name: e.Name, OldName: oldName})
	} else {
		r.notify(Change{Kind: ChangeUpdated, Name: e.Name})
	}
	return nil
}

// Delete removes a custom event type.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	if _, ok := r.events[name]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if IsDefault(name) {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProtected, name)
	}
	delete(r.events, name)
	r.mu.Unlock()

	r.notify(Change{Kind: ChangeDeleted, Name: name, Removed: []string{name}})
	return nil
}

// Reset drops every custom event type and restores the defaults.
func (r *Registry) Reset() {
	r.mu.Lock()
	var removed []string
	for name := range r.events {
		if !IsDefault(name) {
			removed = append(removed, name)
		}
	}
	sort.Strings(removed)
	r.events = make(map[string]core.EventType)
	for _, e := range Defaults {
		r.events[e.Name] = e
	}
	r.mu.Unlock()

	r.notify(Change{Kind: ChangeReset, Removed: removed})
}

// Custom returns the event types that are not defaults, sorted by name.
func (r *Registry) Custom() []core.EventType {
	return slices.DeleteFunc(r.All(), func(e core.EventType) bool {
		return IsDefault(e.Name)
	})
}

// IsDefault reports whether name is one of the built-in event types.
func IsDefault(name string) bool {
	return slices.ContainsFunc(Defaults, func(e core.EventType) bool { return e.Name == name })
}

func (r *Registry) checkLocked(e core.EventType, exclude string) error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if !colorPattern.MatchString(e.Color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, e.Color)
	}
	if e.Shortcut == "" {
		return nil
	}
	for _, other := range r.events {
		if other.Name != exclude && strings.EqualFold(other.Shortcut, e.Shortcut) {
			return fmt.Errorf("%w: %s is used by %s", ErrShortcutTaken, e.Shortcut, other.Name)
		}
	}
	return nil
}

// Subscribe registers fn to run after every change to the registry.
func (r *Registry) Subscribe(fn func()) core.Subscription {
	return r.OnChange(func(Change) { fn() })
}

// OnChange registers fn to receive every change, after the registry lock is
// released. fn may read the registry.
func (r *Registry) OnChange(fn func(Change)) core.Subscription {
	p := &fn
	r.mu.Lock()
	r.listeners = append(r.listeners, p)
	r.mu.Unlock()
	return core.NewSubscription(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.listeners = slices.DeleteFunc(r.listeners, func(x *func(Change)) bool { return x == p })
	})
}

func (r *Registry) notify(c Change) {
	r.mu.RLock()
	ls := slices.Clone(r.listeners)
	r.mu.RUnlock()
	for _, l := range ls {
		(*l)(c)
	}
}

var _ core.EventRegistry = (*Registry)(nil)
