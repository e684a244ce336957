package core

import (
	"github.com/aretw0/introspection"
)

// ModelState exposes internal state for observability.
type ModelState struct {
	Markers     int `json:"markers"`
	Subscribers int `json:"subscribers"`
}

// State implements introspection.Introspectable.
func (m *Model) State() any {
	m.subMu.Lock()
	subs := len(m.order)
	m.subMu.Unlock()

	return ModelState{
		Markers:     m.Len(),
		Subscribers: subs,
	}
}

// ComponentType implements introspection.Component.
func (m *Model) ComponentType() string {
	return "marker-model"
}

var _ introspection.Introspectable = (*Model)(nil)
var _ introspection.Component = (*Model)(nil)
