// Package query computes read-only views over a marker sequence.
// Every function is a linear scan and never mutates its input.
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/hockey/pkg/core"
)

// Entry is a marker together with its position in the unfiltered sequence.
type Entry struct {
	Index  int
	Marker core.Marker
}

// FilterByEventTypes returns markers whose event name is in allowed.
// An empty set means no filtering.
func FilterByEventTypes(markers []core.Marker, allowed map[string]struct{}) []core.Marker {
	if len(allowed) == 0 {
		return slices.Clone(markers)
	}
	out := make([]core.Marker, 0, len(markers))
	for _, m := range markers {
		if _, ok := allowed[m.EventName]; ok {
			out = append(out, m)
		}
	}
	return out
}

// FilterByHasNotes returns markers with a note that is not blank.
func FilterByHasNotes(markers []core.Marker) []core.Marker {
	out := make([]core.Marker, 0, len(markers))
	for _, m := range markers {
		if hasNote(m) {
			out = append(out, m)
		}
	}
	return out
}

func hasNote(m core.Marker) bool {
	return strings.TrimSpace(m.Note) != ""
}

// Set builds a name set from a list.
func Set(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Filter is the combined filter state of a view. Active criteria compose with AND.
type Filter struct {
	EventTypes map[string]struct{}
	HasNotes   bool
	// Pattern is a glob over event names, e.g. "Shot*" or "{Goal,Penalty}".
	Pattern string
}

// Active reports whether any criterion is set.
func (f Filter) Active() bool {
	return len(f.EventTypes) > 0 || f.HasNotes || f.Pattern != ""
}

// Validate checks the glob syntax.
func (f Filter) Validate() error {
	if f.Pattern != "" && !doublestar.ValidatePattern(f.Pattern) {
		return fmt.Errorf("invalid event pattern %q", f.Pattern)
	}
	return nil
}

// Match reports whether m passes every active criterion.
func (f Filter) Match(m core.Marker) bool {
	if len(f.EventTypes) > 0 {
		if _, ok := f.EventTypes[m.EventName]; !ok {
			return false
		}
	}
	if f.HasNotes && !hasNote(m) {
		return false
	}
	if f.Pattern != "" {
		ok, err := doublestar.Match(f.Pattern, m.EventName)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// Apply returns the matching markers with their original indices, in order.
func (f Filter) Apply(markers []core.Marker) []Entry {
	out := make([]Entry, 0, len(markers))
	for i, m := range markers {
		if f.Match(m) {
			out = append(out, Entry{Index: i, Marker: m})
		}
	}
	return out
}

// Markers is Apply without the indices.
func (f Filter) Markers(markers []core.Marker) []core.Marker {
	out := make([]core.Marker, 0, len(markers))
	for _, m := range markers {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

// Prune drops event types the registry no longer knows and reports whether
// the filter changed.
func (f *Filter) Prune(reg core.EventRegistry) bool {
	changed := false
	for name := range f.EventTypes {
		if _, ok := reg.Get(name); !ok {
			delete(f.EventTypes, name)
			changed = true
		}
	}
	return changed
}
