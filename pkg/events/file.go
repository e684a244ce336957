package events

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/hockey/internal/fsutil"
	"github.com/aretw0/hockey/pkg/core"
)

// document is the on-disk shape of the custom event file.
type document struct {
	Events []core.EventType `yaml:"events"`
}

// LoadFile builds a registry from the defaults plus the custom event types
// stored in a YAML file. A missing file yields the defaults.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read event types: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse event types %s: %w", path, err)
	}

	r := NewRegistry(doc.Events...)
	seen := make(map[string]string)
	for _, e := range r.All() {
		if !colorPattern.MatchString(e.Color) {
			return nil, fmt.Errorf("event type %q in %s: %w: %q", e.Name, path, ErrInvalidColor, e.Color)
		}
		if e.Shortcut == "" {
			continue
		}
		key := strings.ToUpper(e.Shortcut)
		if other, ok := seen[key]; ok {
			return nil, fmt.Errorf("event type %q in %s: %w: %s is used by %s", e.Name, path, ErrShortcutTaken, e.Shortcut, other)
		}
		seen[key] = e.Name
	}
	return r, nil
}

// SaveFile writes every event type, defaults included, so user edits of a
// default color or shortcut survive a restart.
func (r *Registry) SaveFile(path string) error {
	data, err := yaml.Marshal(document{Events: r.All()})
	if err != nil {
		return fmt.Errorf("failed to encode event types: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return fsutil.WriteFile(path, data, 0644)
}
