package archive

import "github.com/aretw0/introspection"

// StoreState exposes internal state for observability.
type StoreState struct {
	Saves    int    `json:"saves"`
	Loads    int    `json:"loads"`
	LastPath string `json:"last_path,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StoreState{Saves: s.saves, Loads: s.loads, LastPath: s.lastPath}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "project-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
