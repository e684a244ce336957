package session

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/hockey/pkg/core"
)

// Script is a sequence of edits applied through the history, e.g.
//
//	ops:
//	  - op: add
//	    event: Goal
//	    start: "00:01:02.500"
//	    end: 1900
//	  - op: edit
//	    index: 0
//	    note: wrister
//	  - op: undo
type Script struct {
	Ops []ScriptOp `yaml:"ops"`
}

// ScriptOp is one step of a Script. Frames may be given as frame numbers or
// HH:MM:SS.mmm timecodes.
type ScriptOp struct {
	Op      string  `yaml:"op"`
	Index   *int    `yaml:"index,omitempty"`
	Indices []int   `yaml:"indices,omitempty"`
	Event   *string `yaml:"event,omitempty"`
	Start   *string `yaml:"start,omitempty"`
	End     *string `yaml:"end,omitempty"`
	Note    *string `yaml:"note,omitempty"`
}

// ParseScript decodes a YAML script.
func ParseScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return &s, nil
		}
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &s, nil
}

// ScriptError reports the step a script stopped at.
type ScriptError struct {
	Step int
	Op   string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step+1, e.Op, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// RunScript executes s step by step. It stops at the first failing step;
// steps already applied stay in the history.
func (e *Editor) RunScript(s *Script) (applied int, err error) {
	fps := e.Project().FPS
	for i, op := range s.Ops {
		if err := e.runOp(op, fps); err != nil {
			return i, &ScriptError{Step: i, Op: op.Op, Err: err}
		}
	}
	return len(s.Ops), nil
}

func (e *Editor) runOp(op ScriptOp, fps float64) error {
	switch op.Op {
	case "add":
		if op.Event == nil || op.Start == nil {
			return fmt.Errorf("add needs event and start")
		}
		start, err := core.ParseFrameOrTimecode(*op.Start, fps)
		if err != nil {
			return err
		}
		end := start
		if op.End != nil {
			if end, err = core.ParseFrameOrTimecode(*op.End, fps); err != nil {
				return err
			}
		}
		m := core.Marker{StartFrame: start, EndFrame: end, EventName: *op.Event}
		if op.Note != nil {
			m.Note = *op.Note
		}
		_, err = e.AddMarker(m)
		return err

	case "edit":
		if op.Index == nil {
			return fmt.Errorf("edit needs index")
		}
		patch, err := op.patch(fps)
		if err != nil {
			return err
		}
		if patch.Empty() {
			return fmt.Errorf("edit changes nothing")
		}
		return e.ModifyMarker(*op.Index, patch)

	case "delete":
		switch {
		case op.Index != nil:
			return e.DeleteMarker(*op.Index)
		case len(op.Indices) > 0:
			return e.DeleteMarkers(op.Indices)
		}
		return fmt.Errorf("delete needs index or indices")

	case "clear":
		return e.ClearMarkers()

	case "undo":
		ok, err := e.Undo()
		if err == nil && !ok {
			err = fmt.Errorf("nothing to undo")
		}
		return err

	case "redo":
		ok, err := e.Redo()
		if err == nil && !ok {
			err = fmt.Errorf("nothing to redo")
		}
		return err
	}
	return fmt.Errorf("unknown op %q", op.Op)
}

func (op ScriptOp) patch(fps float64) (core.MarkerPatch, error) {
	var p core.MarkerPatch
	if op.Start != nil {
		v, err := core.ParseFrameOrTimecode(*op.Start, fps)
		if err != nil {
			return p, err
		}
		p.StartFrame = &v
	}
	if op.End != nil {
		v, err := core.ParseFrameOrTimecode(*op.End, fps)
		if err != nil {
			return p, err
		}
		p.EndFrame = &v
	}
	p.EventName = op.Event
	p.Note = op.Note
	return p, nil
}
