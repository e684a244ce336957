package core

import (
	"fmt"
	"strings"
)

// Validator checks a marker before it enters a model.
type Validator interface {
	Validate(m Marker) error
}

// ChangeValidator is implemented by validators whose checks depend on which
// fields an update touches. Model.Update prefers it over Validate.
type ChangeValidator interface {
	ValidateChange(old, next Marker) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(m Marker) error

func (f ValidatorFunc) Validate(m Marker) error { return f(m) }

// ValidateMarker enforces the invariants every marker must hold.
func ValidateMarker(m Marker) error {
	if m.StartFrame < 0 {
		return &ValidationError{Field: "start_frame", Reason: fmt.Sprintf("%d is negative", m.StartFrame)}
	}
	if m.EndFrame < m.StartFrame {
		return &ValidationError{Field: "end_frame", Reason: fmt.Sprintf("%d is before start %d", m.EndFrame, m.StartFrame)}
	}
	if strings.TrimSpace(m.EventName) == "" {
		return &ValidationError{Field: "event_name", Reason: "empty"}
	}
	return nil
}

// FrameValidator extends ValidateMarker with optional checks against the
// video geometry and the event registry. Nil collaborators are skipped.
type FrameValidator struct {
	Video    VideoSource
	Registry EventRegistry
}

func (v FrameValidator) Validate(m Marker) error {
	if err := ValidateMarker(m); err != nil {
		return err
	}
	if err := v.checkFrames(m); err != nil {
		return err
	}
	return v.checkEvent(m)
}

// ValidateChange only runs the video and registry checks on the fields the
// update changes, so a marker whose event type was since removed can still
// have its note or frames edited.
func (v FrameValidator) ValidateChange(old, next Marker) error {
	if err := ValidateMarker(next); err != nil {
		return err
	}
	if next.StartFrame != old.StartFrame || next.EndFrame != old.EndFrame {
		if err := v.checkFrames(next); err != nil {
			return err
		}
	}
	if next.EventName != old.EventName {
		return v.checkEvent(next)
	}
	return nil
}

func (v FrameValidator) checkFrames(m Marker) error {
	if v.Video == nil {
		return nil
	}
	if total := v.Video.TotalFrames(); total > 0 && m.EndFrame >= total {
		return &ValidationError{Field: "end_frame", Reason: fmt.Sprintf("%d is past the last frame %d", m.EndFrame, total-1)}
	}
	return nil
}

func (v FrameValidator) checkEvent(m Marker) error {
	if v.Registry == nil {
		return nil
	}
	if _, ok := v.Registry.Get(m.EventName); !ok {
		return &ValidationError{Field: "event_name", Reason: fmt.Sprintf("unknown event type %q", m.EventName)}
	}
	return nil
}

var _ ChangeValidator = FrameValidator{}
