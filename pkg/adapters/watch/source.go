package watch

import (
	"context"

	"github.com/aretw0/lifecycle"
)

// Source runs a Watcher as a lifecycle.Source. Start starts the watcher;
// Events closes when it stops.
type Source struct {
	w   *Watcher
	out chan lifecycle.Event
}

// NewSource wraps w. The watcher must not have been started.
func NewSource(w *Watcher) *Source {
	return &Source{w: w, out: make(chan lifecycle.Event)}
}

// Events delivers the watcher's Event values as lifecycle events.
func (s *Source) Events() <-chan lifecycle.Event {
	return s.out
}

// Start starts the underlying watcher and forwards its events until ctx ends.
func (s *Source) Start(ctx context.Context) error {
	events, err := s.w.Start(ctx)
	if err != nil {
		return err
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for e := range events {
			select {
			case s.out <- e:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	}, lifecycle.WithErrorHandler(s.w.handleError))
	return nil
}

var _ lifecycle.Source = (*Source)(nil)
