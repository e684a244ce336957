package session

import (
	"fmt"
	"slices"

	"github.com/aretw0/hockey/pkg/core"
	"github.com/aretw0/hockey/pkg/events"
	"github.com/aretw0/hockey/pkg/history"
)

// adoptEventTypes registers event names used by markers but unknown to the
// registry, so those markers stay editable.
func (e *Editor) adoptEventTypes(markers []core.Marker) {
	for _, m := range markers {
		if _, ok := e.registry.Get(m.EventName); ok {
			continue
		}
		err := e.registry.Add(core.EventType{Name: m.EventName, Color: events.FallbackColor})
		if err == nil && e.logger != nil {
			e.logger.Info("registered event type from project", "event", m.EventName)
		}
	}
}

// onEventTypeChange keeps markers consistent with the registry. Markers of a
// deleted type are removed and markers of a renamed type follow the new name,
// each as one undoable step.
func (e *Editor) onEventTypeChange(c events.Change) {
	var err error
	switch c.Kind {
	case events.ChangeRenamed:
		err = e.renameEventType(c.OldName, c.Name)
	case events.ChangeDeleted, events.ChangeReset:
		err = e.dropEventTypes(c.Removed)
	default:
		return
	}
	if err != nil && e.logger != nil {
		e.logger.Error("failed to apply event type change", "kind", c.Kind, "error", err)
	}
}

func (e *Editor) renameEventType(oldName, newName string) error {
	h, err := e.current()
	if err != nil {
		return err
	}
	var cmds []history.Command
	for i, m := range e.Model().Markers() {
		if m.EventName == oldName {
			name := newName
			cmds = append(cmds, history.NewModifyMarker(i, core.MarkerPatch{EventName: &name}))
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return h.Execute(history.NewBatch(fmt.Sprintf("Rename %s to %s", oldName, newName), cmds...))
}

func (e *Editor) dropEventTypes(names []string) error {
	h, err := e.current()
	if err != nil {
		return err
	}
	var idx []int
	for i, m := range e.Model().Markers() {
		if slices.Contains(names, m.EventName) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return nil
	}
	label := fmt.Sprintf("Delete %d %s markers", len(idx), names[0])
	if len(names) > 1 {
		label = fmt.Sprintf("Delete %d markers of removed event types", len(idx))
	}
	return h.Execute(deleteBatch(label, idx))
}

// deleteBatch removes sorted, unique indices highest first so earlier
// deletions do not shift later ones.
func deleteBatch(label string, idx []int) *history.Batch {
	cmds := make([]history.Command, 0, len(idx))
	for i := len(idx) - 1; i >= 0; i-- {
		cmds = append(cmds, history.NewDeleteMarker(idx[i]))
	}
	return history.NewBatch(label, cmds...)
}
