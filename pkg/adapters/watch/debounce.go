package watch

import (
	"sync"
	"time"
)

// debouncer collapses a burst of events into the last one, delivered once the
// burst has been quiet for delay.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending Event
	gen     uint64
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

func (d *debouncer) add(e Event, fire func(Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = e
	if d.timer != nil && d.timer.Stop() {
		// The stopped timer will never run; release its slot.
		d.wg.Done()
	}
	d.gen++
	gen := d.gen
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		ev := d.pending
		d.timer = nil
		d.mu.Unlock()
		fire(ev)
	})
}

// stopAndWait rejects further events, cancels the pending one and waits up to
// timeout for a delivery already in progress.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
