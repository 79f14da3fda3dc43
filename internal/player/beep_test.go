package player

import (
	"testing"
	"time"
)

// funcHandler adapts closures to the Handler interface for element tests.
type funcHandler struct {
	onEnded func(src string)
}

func (h *funcHandler) LoadedMetadata(string, float64) {}
func (h *funcHandler) Played(string)                  {}
func (h *funcHandler) Paused(string)                  {}
func (h *funcHandler) TimeUpdate(string, float64)     {}
func (h *funcHandler) Failed(string, error)           {}

func (h *funcHandler) Ended(src string) {
	if h.onEnded != nil {
		h.onEnded(src)
	}
}

func TestEndOfTrackSignalDoesNotBlockCaller(t *testing.T) {
	e := NewBeepElement(nil, "", t.TempDir())
	t.Cleanup(func() { e.Close() })

	gate := make(chan struct{})
	delivered := make(chan string, 1)
	e.SetHandler(&funcHandler{onEnded: func(src string) {
		<-gate
		delivered <- src
	}})
	e.SetSource("http://example.com/a.mp3")

	// The streaming callback must return immediately even while the handler
	// is busy; it only queues the signal.
	done := make(chan struct{})
	go func() {
		e.signalEnded(0, "http://example.com/a.mp3")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("end-of-track signal blocked on the handler")
	}

	close(gate)
	select {
	case src := <-delivered:
		if src != "http://example.com/a.mp3" {
			t.Errorf("handler received src %q", src)
		}
	case <-time.After(time.Second):
		t.Fatal("end-of-track handler never ran")
	}
}

func TestEndOfTrackHandlerMayClearTheSource(t *testing.T) {
	e := NewBeepElement(nil, "", t.TempDir())
	t.Cleanup(func() { e.Close() })

	// An ended handler that rebinds (next episode) reaches ClearSource on the
	// same element. That must complete rather than wedge.
	cleared := make(chan struct{})
	e.SetHandler(&funcHandler{onEnded: func(string) {
		e.ClearSource()
		close(cleared)
	}})
	e.SetSource("http://example.com/a.mp3")

	e.signalEnded(0, "http://example.com/a.mp3")

	select {
	case <-cleared:
	case <-time.After(time.Second):
		t.Fatal("teardown from the ended handler did not complete")
	}
	if e.Source() != "" {
		t.Errorf("source = %q, want cleared", e.Source())
	}
}

func TestSupersededEndSignalIsDiscarded(t *testing.T) {
	e := NewBeepElement(nil, "", t.TempDir())
	t.Cleanup(func() { e.Close() })

	ended := make(chan string, 1)
	e.SetHandler(&funcHandler{onEnded: func(src string) { ended <- src }})
	e.SetSource("http://example.com/a.mp3")
	e.ClearSource() // bumps the load sequence past 0

	e.signalEnded(0, "http://example.com/a.mp3")

	select {
	case src := <-ended:
		t.Errorf("stale end signal reached the handler (src %q)", src)
	case <-time.After(100 * time.Millisecond):
	}
}
