package archive

import (
	"fmt"
	"time"

	"github.com/aretw0/hockey/pkg/core"
	"github.com/google/uuid"
)

// ManifestFile is the name of the manifest entry inside a project archive.
const ManifestFile = "project.json"

// Ext is the project archive extension.
const Ext = ".hep"

type manifest struct {
	Version string      `json:"version"`
	Project *projectDoc `json:"project"`
}

type projectDoc struct {
	Name       *string     `json:"name"`
	VideoPath  string      `json:"video_path"`
	FPS        float64     `json:"fps"`
	Version    string      `json:"version,omitempty"`
	CreatedAt  string      `json:"created_at"`
	ModifiedAt string      `json:"modified_at"`
	Markers    []markerDoc `json:"markers"`
}

type markerDoc struct {
	ID         string `json:"id,omitempty"`
	EventName  string `json:"event_name,omitempty"`
	StartFrame *int   `json:"start_frame,omitempty"`
	EndFrame   *int   `json:"end_frame,omitempty"`
	Note       string `json:"note"`

	// Frame and Type are the point-marker shape of the first release.
	Frame *int   `json:"frame,omitempty"`
	Type  string `json:"type,omitempty"`
}

// legacyTypes maps the fixed event enum of the first release, by name and by
// stored value, to event names.
var legacyTypes = map[string]string{
	"ATTACK":  "Attack",
	"DEFENSE": "Defense",
	"SHIFT":   "Shift",
	"Атака":   "Attack",
	"Защита":  "Defense",
	"Смена":   "Shift",
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func encodeProject(p *core.Project, modifiedAt time.Time) manifest {
	name := p.Name
	version := p.Version
	if version == "" {
		version = core.ManifestVersion
	}
	doc := &projectDoc{
		Name:       &name,
		VideoPath:  p.VideoPath,
		FPS:        p.FPS,
		Version:    version,
		CreatedAt:  formatTime(p.CreatedAt),
		ModifiedAt: formatTime(modifiedAt),
		Markers:    make([]markerDoc, 0, len(p.Markers)),
	}
	for _, m := range p.Markers {
		start, end := m.StartFrame, m.EndFrame
		doc.Markers = append(doc.Markers, markerDoc{
			ID:         m.ID,
			EventName:  m.EventName,
			StartFrame: &start,
			EndFrame:   &end,
			Note:       m.Note,
		})
	}
	return manifest{Version: core.ManifestVersion, Project: doc}
}

// decodeProject converts a manifest project object into a project, recording
// compatibility notes in rep.
func decodeProject(doc *projectDoc, rep *Report) (*core.Project, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: missing project object", core.ErrFormat)
	}
	if doc.Name == nil {
		return nil, fmt.Errorf("%w: missing project name", core.ErrFormat)
	}

	p := core.NewProject(*doc.Name, doc.VideoPath, doc.FPS)
	if doc.FPS <= 0 {
		rep.warn("fps %v is not positive, using %v", doc.FPS, core.DefaultFPS)
	}
	if doc.Version != "" {
		p.Version = doc.Version
	}
	if doc.CreatedAt != "" {
		if t, ok := parseTime(doc.CreatedAt); ok {
			p.CreatedAt = t
		} else {
			rep.warn("unreadable created_at %q", doc.CreatedAt)
		}
	}
	if doc.ModifiedAt != "" {
		if t, ok := parseTime(doc.ModifiedAt); ok {
			p.ModifiedAt = t
		} else {
			rep.warn("unreadable modified_at %q", doc.ModifiedAt)
		}
	}

	p.Markers = make([]core.Marker, 0, len(doc.Markers))
	for i, md := range doc.Markers {
		m, legacy, err := decodeMarker(md)
		if err != nil {
			return nil, fmt.Errorf("%w: marker %d: %v", core.ErrFormat, i, err)
		}
		if legacy {
			rep.Legacy++
		}
		p.Markers = append(p.Markers, m)
	}
	return p, nil
}

func decodeMarker(md markerDoc) (core.Marker, bool, error) {
	m := core.Marker{ID: md.ID, EventName: md.EventName, Note: md.Note}
	legacy := false

	if md.Type != "" {
		name, ok := legacyTypes[md.Type]
		if !ok {
			return core.Marker{}, false, fmt.Errorf("unknown legacy type %q", md.Type)
		}
		if m.EventName == "" {
			m.EventName = name
		}
		legacy = true
	}

	switch {
	case md.StartFrame != nil && md.EndFrame != nil:
		m.StartFrame, m.EndFrame = *md.StartFrame, *md.EndFrame
	case md.Frame != nil:
		m.StartFrame, m.EndFrame = *md.Frame, *md.Frame
		legacy = true
	default:
		return core.Marker{}, false, fmt.Errorf("missing start_frame/end_frame")
	}

	if m.EventName == "" {
		return core.Marker{}, false, fmt.Errorf("missing event_name")
	}
	if err := core.ValidateMarker(m); err != nil {
		return core.Marker{}, false, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return m, legacy, nil
}
