package session_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hockey/pkg/core"
	"github.com/aretw0/hockey/pkg/session"
)

const script = `
ops:
  - op: add
    event: Goal
    start: "00:00:02.000"
    end: 90
    note: breakaway
  - op: add
    event: Penalty
    start: 120
  - op: add
    event: Turnover
    start: 200
    end: 230
  - op: edit
    index: 1
    end: 150
    note: slash
  - op: delete
    indices: [2, 0]
  - op: undo
  - op: redo
`

func TestRunScript(t *testing.T) {
	e := newEditor(t)
	require.NoError(t, e.NewProject("s", "", 30))

	s, err := session.ParseScript(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, s.Ops, 7)

	n, err := e.RunScript(s)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	markers := e.Model().Markers()
	require.Len(t, markers, 1)
	assert.True(t, markers[0].Equal(core.Marker{StartFrame: 120, EndFrame: 150, EventName: "Penalty", Note: "slash"}))

	ok, err := e.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, e.Model().Len(), "multi delete undoes as one step")
}

func TestRunScriptStops(t *testing.T) {
	e := newEditor(t)
	s, err := session.ParseScript(strings.NewReader(`
ops:
  - op: add
    event: Goal
    start: 10
  - op: edit
    index: 4
    note: nobody home
  - op: add
    event: Goal
    start: 20
`))
	require.NoError(t, err)

	n, err := e.RunScript(s)
	assert.Equal(t, 1, n)
	var se *session.ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Step)
	assert.ErrorIs(t, err, core.ErrIndex)
	assert.Equal(t, 1, e.Model().Len())
}

func TestParseScriptRejectsUnknownFields(t *testing.T) {
	_, err := session.ParseScript(strings.NewReader("ops:\n  - op: add\n    colour: red\n"))
	assert.Error(t, err)

	s, err := session.ParseScript(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, s.Ops)
}

func TestRunScriptBadOps(t *testing.T) {
	e := newEditor(t)
	for _, body := range []string{
		"ops: [{op: jump}]",
		"ops: [{op: add, start: 1}]",
		"ops: [{op: add, event: Goal, start: 'soon'}]",
		"ops: [{op: edit, index: 0}]",
		"ops: [{op: delete}]",
		"ops: [{op: undo}]",
		"ops: [{op: redo}]",
	} {
		s, err := session.ParseScript(strings.NewReader(body))
		require.NoError(t, err, body)
		_, err = e.RunScript(s)
		assert.Error(t, err, body)
	}
}
