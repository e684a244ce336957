// Package session ties the marker model, its history and the update scheduler
// to a project on disk. An Editor is the controller a presentation layer talks to.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/aretw0/hockey/pkg/core"
	"github.com/aretw0/hockey/pkg/events"
	"github.com/aretw0/hockey/pkg/history"
	"github.com/aretw0/hockey/pkg/query"
	"github.com/aretw0/hockey/pkg/reactive"
)

// Common errors.
var (
	ErrClosed   = errors.New("editor is closed")
	ErrNoStore  = errors.New("no project store configured")
	ErrNoTarget = errors.New("project has no file path")
)

// DefaultProjectName names the project an editor starts with.
const DefaultProjectName = "Untitled"

// Editor owns the open project and every component that edits it.
type Editor struct {
	logger   *slog.Logger
	store    core.ProjectStore
	registry *events.Registry
	video    core.VideoSource
	clock    reactive.Clock
	onRecent func([]string)

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	settings  Settings
	project   *core.Project
	model     *core.Model
	history   *history.History
	sched     *reactive.Scheduler
	regSub    core.Subscription
	observers []*observerLink
	external  []*externalListener
	savedPos  uint64
	recent    []string
	recording *recording
	stamp     fileStamp
	stopWatch context.CancelFunc
	watchPath string
	autosaves int
	lastAuto  string
	closed    bool
}

type observerLink struct {
	obs reactive.Observer
	sub core.Subscription
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithStore sets the persistence backend.
func WithStore(s core.ProjectStore) Option {
	return func(e *Editor) { e.store = s }
}

// WithRegistry sets the event-type registry. Defaults to the stock events.
func WithRegistry(r *events.Registry) Option {
	return func(e *Editor) { e.registry = r }
}

// WithVideo bounds marker frames by the video length.
func WithVideo(v core.VideoSource) Option {
	return func(e *Editor) { e.video = v }
}

// WithClock sets the clock driving update coalescing.
func WithClock(c reactive.Clock) Option {
	return func(e *Editor) { e.clock = c }
}

// WithSettings replaces DefaultSettings.
func WithSettings(s Settings) Option {
	return func(e *Editor) { e.settings = s }
}

// WithRecent seeds the recent projects list.
func WithRecent(paths []string) Option {
	return func(e *Editor) { e.recent = slices.Clone(paths) }
}

// WithRecentHook is called with the new list whenever it changes.
func WithRecentHook(fn func([]string)) Option {
	return func(e *Editor) { e.onRecent = fn }
}

// WithContext bounds background workers. They also stop on Close.
func WithContext(ctx context.Context) Option {
	return func(e *Editor) { e.ctx = ctx }
}

// New creates an editor holding an empty project.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{
		settings: DefaultSettings(),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if e.registry == nil {
		e.registry = events.NewRegistry()
	}
	if e.clock == nil {
		e.clock = reactive.RealClock()
	}
	e.ctx, e.cancel = context.WithCancel(e.ctx)

	if err := e.install(core.NewProject(DefaultProjectName, "", core.DefaultFPS)); err != nil {
		e.cancel()
		return nil, err
	}
	e.regSub = e.registry.OnChange(e.onEventTypeChange)
	if e.settings.Autosave {
		e.startAutosave()
	}
	return e, nil
}

func (e *Editor) validator() core.Validator {
	return core.FrameValidator{Video: e.video, Registry: e.registry}
}

// install makes p the open project. Markers are checked before anything is
// torn down so a bad project leaves the current one in place.
func (e *Editor) install(p *core.Project) error {
	for i, m := range p.Markers {
		if err := core.ValidateMarker(m); err != nil {
			return fmt.Errorf("%w: marker %d: %v", core.ErrFormat, i, err)
		}
	}
	markers := p.Markers
	p.Markers = nil

	e.mu.Lock()
	st := e.settings
	e.mu.Unlock()

	model := core.NewModel(nil)
	sched := reactive.NewScheduler(
		reactive.WithDelay(st.CoalesceDelay),
		reactive.WithMaxIncremental(st.MaxIncremental),
		reactive.WithClock(e.clock),
		reactive.WithLogger(e.logger),
	)
	hist := history.New(model,
		history.WithMaxDepth(st.HistoryDepth),
		history.WithLogger(e.logger),
	)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	oldSched := e.sched
	e.mu.Unlock()

	// The old scheduler must not fire against the replaced model.
	if oldSched != nil {
		oldSched.Close()
	}
	if err := sched.Attach(model); err != nil {
		return err
	}

	e.mu.Lock()
	for _, l := range e.observers {
		l.sub = sched.Subscribe(l.obs)
	}
	e.project = p
	e.model = model
	e.history = hist
	e.sched = sched
	e.recording = nil
	e.stamp = fileStamp{}
	e.mu.Unlock()

	// Replace cannot fail: markers were validated above with the same rules.
	_ = model.Replace(markers)
	model.SetValidator(e.validator())
	sched.Flush()

	e.mu.Lock()
	e.savedPos = hist.Position()
	e.mu.Unlock()
	return nil
}

// current returns the live history, or ErrClosed.
func (e *Editor) current() (*history.History, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	return e.history, nil
}

// Model returns the live marker model. It changes when a project is opened.
func (e *Editor) Model() *core.Model {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model
}

// History returns the live history.
func (e *Editor) History() *history.History {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history
}

// Registry returns the event-type registry.
func (e *Editor) Registry() *events.Registry { return e.registry }

// Settings returns the current preferences.
func (e *Editor) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// SetSettings replaces the preferences. Recording options apply immediately;
// history and scheduler options apply from the next opened project.
func (e *Editor) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.settings = s
	e.mu.Unlock()
	return nil
}

// Dirty reports whether the project differs from the state it was opened or
// last saved in. Undoing back to that state makes it clean again.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirtyLocked()
}

func (e *Editor) dirtyLocked() bool {
	return e.history.Position() != e.savedPos
}

// Recent returns the recent projects, most recent first.
func (e *Editor) Recent() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.recent)
}

// Project returns a snapshot of the open project including its markers.
func (e *Editor) Project() *core.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() *core.Project {
	p := *e.project
	p.Markers = e.model.Markers()
	return &p
}

// Observe registers a presentation observer. It follows the editor across
// project switches.
func (e *Editor) Observe(obs reactive.Observer) core.Subscription {
	l := &observerLink{obs: obs}
	e.mu.Lock()
	if e.sched != nil && !e.closed {
		l.sub = e.sched.Subscribe(obs)
	}
	e.observers = append(e.observers, l)
	e.mu.Unlock()

	return core.NewSubscription(func() {
		e.mu.Lock()
		e.observers = slices.DeleteFunc(e.observers, func(x *observerLink) bool { return x == l })
		sub := l.sub
		e.mu.Unlock()
		if sub != nil {
			sub.Unsubscribe()
		}
	})
}

// Flush delivers pending observer updates now.
func (e *Editor) Flush() {
	e.mu.Lock()
	sched := e.sched
	e.mu.Unlock()
	if sched != nil {
		sched.Flush()
	}
}

// AddMarker appends m through the history and returns its index.
func (e *Editor) AddMarker(m core.Marker) (int, error) {
	h, err := e.current()
	if err != nil {
		return -1, err
	}
	cmd := history.NewAddMarker(m)
	if err := h.Execute(cmd); err != nil {
		return -1, err
	}
	return cmd.Index(), nil
}

// DeleteMarker removes the marker at index.
func (e *Editor) DeleteMarker(index int) error {
	h, err := e.current()
	if err != nil {
		return err
	}
	return h.Execute(history.NewDeleteMarker(index))
}

// DeleteMarkers removes several markers as one undoable step.
// Duplicates are ignored.
func (e *Editor) DeleteMarkers(indices []int) error {
	h, err := e.current()
	if err != nil {
		return err
	}
	idx := slices.Clone(indices)
	slices.Sort(idx)
	idx = slices.Compact(idx)
	switch len(idx) {
	case 0:
		return nil
	case 1:
		return h.Execute(history.NewDeleteMarker(idx[0]))
	}

	return h.Execute(deleteBatch(fmt.Sprintf("Delete %d markers", len(idx)), idx))
}

// ModifyMarker applies patch to the marker at index.
func (e *Editor) ModifyMarker(index int, patch core.MarkerPatch) error {
	h, err := e.current()
	if err != nil {
		return err
	}
	return h.Execute(history.NewModifyMarker(index, patch))
}

// ClearMarkers removes every marker. Clearing an empty project records nothing.
func (e *Editor) ClearMarkers() error {
	h, err := e.current()
	if err != nil {
		return err
	}
	if e.Model().Len() == 0 {
		return nil
	}
	return h.Execute(history.NewClearMarkers())
}

// Undo reverts the last command. It reports false when there is nothing to undo.
func (e *Editor) Undo() (bool, error) {
	h, err := e.current()
	if err != nil {
		return false, err
	}
	return h.Undo()
}

// Redo reapplies the last undone command.
func (e *Editor) Redo() (bool, error) {
	h, err := e.current()
	if err != nil {
		return false, err
	}
	return h.Redo()
}

// Filtered returns the markers matching f with their model indices.
func (e *Editor) Filtered(f query.Filter) []query.Entry {
	return f.Apply(e.Model().Markers())
}

// Stats summarizes the open project.
func (e *Editor) Stats() query.Summary {
	return query.Summarize(e.Model().Markers())
}

// NewProject replaces the open project with an empty one.
func (e *Editor) NewProject(name, videoPath string, fps float64) error {
	if err := e.install(core.NewProject(name, videoPath, fps)); err != nil {
		return err
	}
	e.stopWatcher()
	return nil
}

// Open loads the project at path. On failure the open project is kept.
func (e *Editor) Open(ctx context.Context, path string) error {
	if e.store == nil {
		return ErrNoStore
	}
	p, err := e.store.Load(ctx, path)
	if err != nil {
		if e.logger != nil {
			e.logger.Error("open failed", "path", path, "error", err)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	if p.FilePath == "" {
		p.FilePath = path
	}
	markers := p.Markers
	if err := e.install(p); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	e.adoptEventTypes(markers)

	e.afterPersist(p.FilePath)
	if e.logger != nil {
		e.logger.Info("project opened", "path", p.FilePath, "markers", e.Model().Len())
	}
	return nil
}

// Save writes the project. An empty path saves to the path it was loaded
// from or last saved to.
func (e *Editor) Save(ctx context.Context, path string) error {
	if e.store == nil {
		return ErrNoStore
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	snap := e.snapshotLocked()
	target := e.project
	pos := e.history.Position()
	sched := e.sched
	e.mu.Unlock()

	if path == "" {
		path = snap.FilePath
	}
	if path == "" {
		return ErrNoTarget
	}
	sched.Flush()

	snap.FilePath = path
	if err := e.store.Save(ctx, snap, path); err != nil {
		if e.logger != nil {
			e.logger.Error("save failed", "path", path, "error", err)
		}
		return err
	}

	e.mu.Lock()
	if e.project == target {
		e.project.ModifiedAt = snap.ModifiedAt
		e.project.FilePath = snap.FilePath
		e.savedPos = pos
	}
	e.mu.Unlock()

	e.afterPersist(snap.FilePath)
	if e.logger != nil {
		e.logger.Info("project saved", "path", snap.FilePath, "markers", len(snap.Markers))
	}
	return nil
}

// afterPersist updates bookkeeping shared by Open and Save.
func (e *Editor) afterPersist(path string) {
	stamp := statFile(path)

	e.mu.Lock()
	e.recent = PushRecent(e.recent, path)
	recent := slices.Clone(e.recent)
	e.stamp = stamp
	watch := e.settings.WatchExternal
	e.mu.Unlock()

	if e.onRecent != nil {
		e.onRecent(recent)
	}
	if watch {
		e.startWatcher(path)
	}
}

// Close stops background work and detaches the scheduler. Pending observer
// updates are discarded.
func (e *Editor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	sched, sub := e.sched, e.regSub
	e.regSub = nil
	e.mu.Unlock()

	e.stopWatcher()
	e.cancel()
	if sub != nil {
		sub.Unsubscribe()
	}
	if sched != nil {
		sched.Close()
	}
	return nil
}

type fileStamp struct {
	size int64
	mod  int64
}

func statFile(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{size: info.Size(), mod: info.ModTime().UnixNano()}
}
