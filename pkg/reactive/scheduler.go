// Package reactive coalesces marker model changes into batched redraw
// notifications for presentation observers.
package reactive

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/hockey/pkg/core"
)

const (
	// DefaultDelay is the coalescing window, roughly one frame at 60Hz.
	DefaultDelay = 16 * time.Millisecond

	// DefaultMaxIncremental is the largest batch delivered index by index.
	DefaultMaxIncremental = 32
)

// Scheduler collects change events from a model and delivers them to
// observers once per coalescing window.
//
// Updates of a single marker are delivered incrementally. Insertions,
// removals and clears shift positions, so any batch containing one is
// escalated to a full rebuild. Events arriving while observers are being
// updated are queued for the next window and never delivered recursively.
type Scheduler struct {
	mu             sync.Mutex
	clock          Clock
	delay          time.Duration
	maxIncremental int
	logger         *slog.Logger

	model    *core.Model
	modelSub core.Subscription

	pending  map[int]struct{}
	full     bool
	timer    Timer
	armed    bool
	gen      uint64
	updating bool
	closed   bool

	observers []*observerEntry

	// deliverMu serializes delivery passes between the timer and Flush.
	deliverMu sync.Mutex

	stats Stats
}

type observerEntry struct {
	obs Observer
}

// Stats counts scheduler activity.
type Stats struct {
	Events       int `json:"events"`
	Batches      int `json:"batches"`
	FullRebuilds int `json:"full_rebuilds"`
	Incremental  int `json:"incremental"`
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDelay sets the coalescing window.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithMaxIncremental sets how many distinct indices may be delivered
// incrementally before the batch becomes a full rebuild.
func WithMaxIncremental(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxIncremental = n
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger for the scheduler.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a scheduler. Call Attach to start receiving events.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:          realClock{},
		delay:          DefaultDelay,
		maxIncremental: DefaultMaxIncremental,
		pending:        make(map[int]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach subscribes the scheduler to model. A scheduler serves one model;
// attaching again replaces the previous subscription.
func (s *Scheduler) Attach(model *core.Model) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is closed")
	}
	prev := s.modelSub
	s.model = model
	s.mu.Unlock()

	if prev != nil {
		prev.Unsubscribe()
	}
	sub := model.Subscribe(s.handle)

	s.mu.Lock()
	s.modelSub = sub
	s.mu.Unlock()
	return nil
}

// Subscribe registers an observer.
func (s *Scheduler) Subscribe(obs Observer) core.Subscription {
	e := &observerEntry{obs: obs}
	s.mu.Lock()
	s.observers = append(s.observers, e)
	s.mu.Unlock()

	return core.NewSubscription(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.observers = slices.DeleteFunc(s.observers, func(x *observerEntry) bool { return x == e })
	})
}

// handle records a change and arms the coalescing timer.
func (s *Scheduler) handle(e core.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stats.Events++
	if e.Structural() {
		s.full = true
	} else {
		for _, i := range e.Indices {
			s.pending[i] = struct{}{}
		}
	}
	// During delivery the event is only queued; deliver re-arms afterwards.
	if !s.updating {
		s.armLocked()
	}
}

func (s *Scheduler) armLocked() {
	if s.armed {
		return
	}
	s.gen++
	gen := s.gen
	s.armed = true
	s.timer = s.clock.AfterFunc(s.delay, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	stale := s.closed || gen != s.gen
	s.mu.Unlock()
	if stale {
		return
	}
	s.deliver()
}

// Flush delivers pending changes immediately instead of waiting for the
// timer. It is a no-op when called from inside an observer callback.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if s.updating || s.closed {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	s.mu.Unlock()
	s.deliver()
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.armed = false
	s.gen++
}

// Pending reports whether changes are waiting for delivery.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.full || len(s.pending) > 0
}

func (s *Scheduler) deliver() {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	s.armed = false
	s.timer = nil
	if s.closed || (!s.full && len(s.pending) == 0) {
		s.mu.Unlock()
		return
	}
	full := s.full
	indices := make([]int, 0, len(s.pending))
	for i := range s.pending {
		indices = append(indices, i)
	}
	s.full = false
	s.pending = make(map[int]struct{})
	s.updating = true

	length := -1
	if s.model != nil {
		length = s.model.Len()
	}
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	slices.Sort(indices)
	if !full && len(indices) > s.maxIncremental {
		full = true
	}
	// An index past the end can only come from a change that was later
	// shifted away; a full rebuild is the safe answer.
	if !full && length >= 0 && len(indices) > 0 && indices[len(indices)-1] >= length {
		full = true
	}

	for _, e := range observers {
		s.call(e.obs, full, indices)
	}

	s.mu.Lock()
	s.updating = false
	s.stats.Batches++
	if full {
		s.stats.FullRebuilds++
	} else {
		s.stats.Incremental++
	}
	if !s.closed && (s.full || len(s.pending) > 0) {
		s.armLocked()
	}
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("timeline batch delivered", "full", full, "indices", len(indices), "observers", len(observers))
	}
}

// call isolates observer panics so one broken view cannot stall the others.
func (s *Scheduler) call(obs Observer, full bool, indices []int) {
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Error("observer panic", "error", fmt.Errorf("%v", r), "stack", string(debug.Stack()))
		}
	}()
	if full {
		obs.OnFullRebuild()
		return
	}
	obs.OnIncrementalUpdate(slices.Clone(indices))
}

// Close stops the timer and discards pending changes without delivering them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.pending = make(map[int]struct{})
	s.full = false
	s.observers = nil
	sub := s.modelSub
	s.modelSub = nil
	s.model = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}
