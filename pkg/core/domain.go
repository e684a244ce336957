// Package core holds the annotation domain: markers, projects and the
// observable marker model every edit flows through.
package core

import (
	"time"
)

// Marker is a tagged interval of video frames.
// A marker with StartFrame == EndFrame is a point marker.
type Marker struct {
	// ID is a surrogate identifier assigned when the marker first enters a model.
	// Positional index remains the primary address; ID survives index shifts.
	ID         string
	StartFrame int
	EndFrame   int
	EventName  string
	Note       string
}

// Duration returns the length of the marker in frames.
func (m Marker) Duration() int {
	return m.EndFrame - m.StartFrame
}

// Equal compares every field except ID.
func (m Marker) Equal(o Marker) bool {
	return m.StartFrame == o.StartFrame &&
		m.EndFrame == o.EndFrame &&
		m.EventName == o.EventName &&
		m.Note == o.Note
}

// MarkerPatch is a partial update. Nil fields are left unchanged.
type MarkerPatch struct {
	StartFrame *int
	EndFrame   *int
	EventName  *string
	Note       *string
}

// Empty reports whether the patch changes nothing.
func (p MarkerPatch) Empty() bool {
	return p.StartFrame == nil && p.EndFrame == nil && p.EventName == nil && p.Note == nil
}

// ApplyTo returns a copy of m with the patch applied.
func (p MarkerPatch) ApplyTo(m Marker) Marker {
	if p.StartFrame != nil {
		m.StartFrame = *p.StartFrame
	}
	if p.EndFrame != nil {
		m.EndFrame = *p.EndFrame
	}
	if p.EventName != nil {
		m.EventName = *p.EventName
	}
	if p.Note != nil {
		m.Note = *p.Note
	}
	return m
}

// ManifestVersion is the archive format version written by this package.
const ManifestVersion = "1.0"

// DefaultFPS is used when a project does not declare its frame rate.
const DefaultFPS = 30.0

// Project is an annotation project for a single video.
type Project struct {
	Name       string
	VideoPath  string
	FPS        float64
	Version    string
	CreatedAt  time.Time
	ModifiedAt time.Time
	Markers    []Marker

	// FilePath is where the project was last loaded from or saved to.
	FilePath string
}

// NewProject creates an empty project.
func NewProject(name, videoPath string, fps float64) *Project {
	if fps <= 0 {
		fps = DefaultFPS
	}
	now := time.Now()
	return &Project{
		Name:       name,
		VideoPath:  videoPath,
		FPS:        fps,
		Version:    ManifestVersion,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// ChangeKind is the type of mutation applied to a model.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeUpdated ChangeKind = "updated"
	ChangeCleared ChangeKind = "cleared"
)

// ChangeEvent describes one committed model mutation.
type ChangeEvent struct {
	Kind    ChangeKind
	Indices []int
}

// Structural reports whether the change shifts marker positions.
func (e ChangeEvent) Structural() bool {
	return e.Kind != ChangeUpdated
}
