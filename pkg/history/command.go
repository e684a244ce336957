package history

import (
	"fmt"

	"github.com/aretw0/hockey/pkg/core"
)

// Command is one reversible mutation of a marker model.
// Revert must restore the model to exactly the state it had before Apply.
type Command interface {
	Apply(m *core.Model) error
	Revert(m *core.Model) error
	Name() string
}

// resolve finds the current position of a marker captured earlier. The ID is
// authoritative; the captured index is only a hint.
func resolve(m *core.Model, id string, hint int) (int, error) {
	if mk, err := m.At(hint); err == nil && mk.ID == id {
		return hint, nil
	}
	if i := m.IndexOf(id); i >= 0 {
		return i, nil
	}
	return 0, &core.IndexError{Op: "resolve", Index: hint, Len: m.Len()}
}

// AddMarker inserts a marker. At < 0 appends.
type AddMarker struct {
	Marker core.Marker
	At     int

	index int
}

// NewAddMarker creates a command appending mk.
func NewAddMarker(mk core.Marker) *AddMarker {
	return &AddMarker{Marker: mk, At: -1}
}

func (c *AddMarker) Name() string {
	return fmt.Sprintf("Add %s marker", c.Marker.EventName)
}

func (c *AddMarker) Apply(m *core.Model) error {
	at := c.At
	if at < 0 {
		at = m.Len()
	}
	idx, err := m.Add(c.Marker, at)
	if err != nil {
		return err
	}
	added, err := m.At(idx)
	if err != nil {
		return err
	}
	c.Marker = added
	c.index = idx
	c.At = idx
	return nil
}

func (c *AddMarker) Revert(m *core.Model) error {
	idx, err := resolve(m, c.Marker.ID, c.index)
	if err != nil {
		return err
	}
	_, err = m.Remove(idx)
	return err
}

// Index returns the position the marker was inserted at by the last Apply.
func (c *AddMarker) Index() int { return c.index }

// DeleteMarker removes the marker at Index.
type DeleteMarker struct {
	Index int

	removed core.Marker
}

func NewDeleteMarker(index int) *DeleteMarker {
	return &DeleteMarker{Index: index}
}

func (c *DeleteMarker) Name() string {
	if c.removed.EventName != "" {
		return fmt.Sprintf("Delete %s marker", c.removed.EventName)
	}
	return "Delete marker"
}

func (c *DeleteMarker) Apply(m *core.Model) error {
	removed, err := m.Remove(c.Index)
	if err != nil {
		return err
	}
	c.removed = removed
	return nil
}

func (c *DeleteMarker) Revert(m *core.Model) error {
	return m.Restore(c.removed, c.Index)
}

// Removed returns the marker captured by the last Apply.
func (c *DeleteMarker) Removed() core.Marker { return c.removed }

// ModifyMarker applies a partial update to the marker at Index.
type ModifyMarker struct {
	Index int
	Patch core.MarkerPatch

	old     core.Marker
	applied core.Marker
}

func NewModifyMarker(index int, patch core.MarkerPatch) *ModifyMarker {
	return &ModifyMarker{Index: index, Patch: patch}
}

func (c *ModifyMarker) Name() string {
	return "Modify marker"
}

func (c *ModifyMarker) Apply(m *core.Model) error {
	idx := c.Index
	if c.applied.ID != "" {
		// redo: the marker is identified by the ID captured on first apply
		var err error
		if idx, err = resolve(m, c.applied.ID, c.Index); err != nil {
			return err
		}
	}
	old, err := m.Update(idx, c.Patch)
	if err != nil {
		return err
	}
	c.old = old
	c.Index = idx
	c.applied = c.Patch.ApplyTo(old)
	return nil
}

func (c *ModifyMarker) Revert(m *core.Model) error {
	idx, err := resolve(m, c.old.ID, c.Index)
	if err != nil {
		return err
	}
	_, err = m.Set(idx, c.old)
	return err
}

// Old returns the marker as it was before the last Apply.
func (c *ModifyMarker) Old() core.Marker { return c.old }

// ClearMarkers removes every marker.
type ClearMarkers struct {
	removed []core.Marker
}

func NewClearMarkers() *ClearMarkers {
	return &ClearMarkers{}
}

func (c *ClearMarkers) Name() string {
	return "Clear markers"
}

func (c *ClearMarkers) Apply(m *core.Model) error {
	c.removed = m.Clear()
	return nil
}

func (c *ClearMarkers) Revert(m *core.Model) error {
	return m.Replace(c.removed)
}

// Batch groups commands into a single history entry.
// Commands apply in order and revert in reverse order.
type Batch struct {
	Label    string
	Commands []Command
}

func NewBatch(label string, cmds ...Command) *Batch {
	return &Batch{Label: label, Commands: cmds}
}

func (c *Batch) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return fmt.Sprintf("%d changes", len(c.Commands))
}

// Apply runs every command. If one fails, the ones already applied are
// reverted so the batch is all-or-nothing.
func (c *Batch) Apply(m *core.Model) error {
	for i, cmd := range c.Commands {
		if err := cmd.Apply(m); err != nil {
			for j := i - 1; j >= 0; j-- {
				if rerr := c.Commands[j].Revert(m); rerr != nil {
					return fmt.Errorf("%s: %w (rollback failed: %v)", cmd.Name(), err, rerr)
				}
			}
			return fmt.Errorf("%s: %w", cmd.Name(), err)
		}
	}
	return nil
}

func (c *Batch) Revert(m *core.Model) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Revert(m); err != nil {
			return fmt.Errorf("%s: %w", c.Commands[i].Name(), err)
		}
	}
	return nil
}
