package playback

import (
	"sync"
	"time"
)

// progressDebouncer coalesces progress writes: a write fires only after the
// quiet period elapses with no further ticks, and only the last tick's value
// is persisted (trailing edge). Stop cancels any pending write for good.
type progressDebouncer struct {
	mu      sync.Mutex
	quiet   time.Duration
	fn      func(episodeID string, seconds float64)
	timer   *time.Timer
	stopped bool
}

func newProgressDebouncer(quiet time.Duration, fn func(string, float64)) *progressDebouncer {
	return &progressDebouncer{quiet: quiet, fn: fn}
}

// tick reschedules the pending write with the latest value.
func (d *progressDebouncer) tick(episodeID string, seconds float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || d.fn == nil {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.fn(episodeID, seconds)
		}
	})
}

// stop cancels the pending write. The debouncer cannot be restarted.
func (d *progressDebouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
