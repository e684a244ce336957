package core

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Model is the ordered marker sequence of a project.
//
// Markers are addressed by position. Any insertion or removal shifts the
// positions of later markers, so callers must never cache an index across a
// structural change. Every successful mutation is reported to subscribers
// synchronously, in mutation order, after the model lock is released.
type Model struct {
	mu        sync.RWMutex
	markers   []Marker
	validator Validator

	subMu  sync.Mutex
	subs   map[int]func(ChangeEvent)
	order  []int
	nextID int
}

// NewModel creates an empty model. A nil validator falls back to ValidateMarker.
func NewModel(v Validator) *Model {
	if v == nil {
		v = ValidatorFunc(ValidateMarker)
	}
	return &Model{
		validator: v,
		subs:      make(map[int]func(ChangeEvent)),
	}
}

// SetValidator swaps the validator used for subsequent mutations.
func (m *Model) SetValidator(v Validator) {
	if v == nil {
		v = ValidatorFunc(ValidateMarker)
	}
	m.mu.Lock()
	m.validator = v
	m.mu.Unlock()
}

// Len returns the number of markers.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.markers)
}

// At returns the marker at index.
func (m *Model) At(index int) (Marker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.markers) {
		return Marker{}, &IndexError{Op: "at", Index: index, Len: len(m.markers)}
	}
	return m.markers[index], nil
}

// Markers returns a snapshot copy of the sequence.
func (m *Model) Markers() []Marker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.markers)
}

// IndexOf returns the current position of the marker with the given ID, or -1.
func (m *Model) IndexOf(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, mk := range m.markers {
		if mk.ID == id {
			return i
		}
	}
	return -1
}

// Append adds a marker at the end of the sequence.
func (m *Model) Append(mk Marker) (int, error) {
	return m.Add(mk, m.Len())
}

// Add inserts a marker at position at, which must lie in [0, Len].
// A marker without ID gets a fresh one.
func (m *Model) Add(mk Marker, at int) (int, error) {
	m.mu.Lock()
	if at < 0 || at > len(m.markers) {
		n := len(m.markers)
		m.mu.Unlock()
		return 0, &IndexError{Op: "add", Index: at, Len: n + 1}
	}
	if err := m.validator.Validate(mk); err != nil {
		m.mu.Unlock()
		return 0, err
	}
	if mk.ID == "" {
		mk.ID = uuid.NewString()
	}
	m.markers = slices.Insert(m.markers, at, mk)
	m.mu.Unlock()

	m.emit(ChangeEvent{Kind: ChangeAdded, Indices: []int{at}})
	return at, nil
}

// Remove deletes and returns the marker at index.
func (m *Model) Remove(index int) (Marker, error) {
	m.mu.Lock()
	if index < 0 || index >= len(m.markers) {
		n := len(m.markers)
		m.mu.Unlock()
		return Marker{}, &IndexError{Op: "remove", Index: index, Len: n}
	}
	removed := m.markers[index]
	m.markers = slices.Delete(m.markers, index, index+1)
	m.mu.Unlock()

	m.emit(ChangeEvent{Kind: ChangeRemoved, Indices: []int{index}})
	return removed, nil
}

// Update applies a partial update to the marker at index and returns the
// marker as it was before the update.
func (m *Model) Update(index int, patch MarkerPatch) (Marker, error) {
	m.mu.Lock()
	if index < 0 || index >= len(m.markers) {
		n := len(m.markers)
		m.mu.Unlock()
		return Marker{}, &IndexError{Op: "update", Index: index, Len: n}
	}
	old := m.markers[index]
	next := patch.ApplyTo(old)
	var err error
	if cv, ok := m.validator.(ChangeValidator); ok {
		err = cv.ValidateChange(old, next)
	} else {
		err = m.validator.Validate(next)
	}
	if err != nil {
		m.mu.Unlock()
		return Marker{}, err
	}
	m.markers[index] = next
	m.mu.Unlock()

	m.emit(ChangeEvent{Kind: ChangeUpdated, Indices: []int{index}})
	return old, nil
}

// Restore puts back a marker captured earlier, at position at, keeping its ID.
// Only ValidateMarker applies: the marker held in this model before, so
// registry or video changes since then must not block an undo.
func (m *Model) Restore(mk Marker, at int) error {
	if err := ValidateMarker(mk); err != nil {
		return err
	}
	m.mu.Lock()
	if at < 0 || at > len(m.markers) {
		n := len(m.markers)
		m.mu.Unlock()
		return &IndexError{Op: "restore", Index: at, Len: n + 1}
	}
	if mk.ID == "" {
		mk.ID = uuid.NewString()
	}
	m.markers = slices.Insert(m.markers, at, mk)
	m.mu.Unlock()

	m.emit(ChangeEvent{Kind: ChangeAdded, Indices: []int{at}})
	return nil
}

// Set overwrites the marker at index with a previously held value and
// returns the marker it replaced. Like Restore it only applies ValidateMarker.
func (m *Model) Set(index int, mk Marker) (Marker, error) {
	if err := ValidateMarker(mk); err != nil {
		return Marker{}, err
	}
	m.mu.Lock()
	if index < 0 || index >= len(m.markers) {
		n := len(m.markers)
		m.mu.Unlock()
		return Marker{}, &IndexError{Op: "set", Index: index, Len: n}
	}
	old := m.markers[index]
	m.markers[index] = mk
	m.mu.Unlock()

	m.emit(ChangeEvent{Kind: ChangeUpdated, Indices: []int{index}})
	return old, nil
}

// Clear empties the model and returns the removed sequence.
func (m *Model) Clear() []Marker {
	m.mu.Lock()
	old := m.markers
	m.markers = nil
	m.mu.Unlock()

	m.emit(ChangeEvent{Kind: ChangeCleared})
	return old
}

// Replace installs a whole sequence at once, e.g. after loading a project or
// undoing a clear. Either every marker passes ValidateMarker and the model is
// replaced, or nothing changes. The model's own validator is not consulted.
func (m *Model) Replace(markers []Marker) error {
	next := slices.Clone(markers)
	for i := range next {
		if err := ValidateMarker(next[i]); err != nil {
			return err
		}
		if next[i].ID == "" {
			next[i].ID = uuid.NewString()
		}
	}
	m.mu.Lock()
	m.markers = next
	m.mu.Unlock()

	m.emit(ChangeEvent{Kind: ChangeCleared})
	return nil
}

// Subscription is a handle to a registered change listener.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	once sync.Once
	fn   func()
}

func (s *subscription) Unsubscribe() {
	s.once.Do(s.fn)
}

// NewSubscription wraps a cancel function so it runs at most once.
func NewSubscription(cancel func()) Subscription {
	return &subscription{fn: cancel}
}

// Subscribe registers fn for change events. Listeners run in registration order.
func (m *Model) Subscribe(fn func(ChangeEvent)) Subscription {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.order = append(m.order, id)
	m.subMu.Unlock()

	return NewSubscription(func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
		m.order = slices.DeleteFunc(m.order, func(x int) bool { return x == id })
	})
}

func (m *Model) emit(e ChangeEvent) {
	m.subMu.Lock()
	fns := make([]func(ChangeEvent), 0, len(m.order))
	for _, id := range m.order {
		fns = append(fns, m.subs[id])
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
