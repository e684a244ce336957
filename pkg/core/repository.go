package core

import "context"

// ProjectStore defines the contract for persisting projects.
// Adhering to this interface keeps the editor independent of the archive format.
type ProjectStore interface {
	// Save persists the project at path. It must not leave a partial file behind on failure.
	Save(ctx context.Context, p *Project, path string) error

	// Load reads the project stored at path.
	Load(ctx context.Context, path string) (*Project, error)
}

// EventType is a named, colored category markers are tagged with.
type EventType struct {
	Name        string `yaml:"name" json:"name"`
	Color       string `yaml:"color" json:"color"`
	Shortcut    string `yaml:"shortcut,omitempty" json:"shortcut,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// EventRegistry resolves event types by name.
// The core only checks existence; it never stores event types itself.
type EventRegistry interface {
	Get(name string) (EventType, bool)
	All() []EventType
}

// VideoSource exposes the frame geometry of the annotated video.
type VideoSource interface {
	TotalFrames() int
	FPS() float64
}

// StaticVideo is a VideoSource with fixed values, for callers that know the
// geometry up front (e.g. from a probe run elsewhere).
type StaticVideo struct {
	Frames int
	Rate   float64
}

func (v StaticVideo) TotalFrames() int { return v.Frames }
func (v StaticVideo) FPS() float64     { return v.Rate }
