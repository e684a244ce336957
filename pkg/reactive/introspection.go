package reactive

import (
	"github.com/aretw0/introspection"
)

// SchedulerState exposes internal state for observability.
type SchedulerState struct {
	DelayMillis    int64 `json:"delay_ms"`
	MaxIncremental int   `json:"max_incremental"`
	Observers      int   `json:"observers"`
	PendingIndices int   `json:"pending_indices"`
	PendingFull    bool  `json:"pending_full"`
	Armed          bool  `json:"armed"`
	Closed         bool  `json:"closed"`
	Stats          Stats `json:"stats"`
}

// State implements introspection.Introspectable.
func (s *Scheduler) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerState{
		DelayMillis:    s.delay.Milliseconds(),
		MaxIncremental: s.maxIncremental,
		Observers:      len(s.observers),
		PendingIndices: len(s.pending),
		PendingFull:    s.full,
		Armed:          s.armed,
		Closed:         s.closed,
		Stats:          s.stats,
	}
}

// ComponentType implements introspection.Component.
func (s *Scheduler) ComponentType() string {
	return "timeline-scheduler"
}

var _ introspection.Introspectable = (*Scheduler)(nil)
var _ introspection.Component = (*Scheduler)(nil)
