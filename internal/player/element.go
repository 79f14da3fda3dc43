package player

// ReadyState reports how much of the bound source the element has available.
type ReadyState int

const (
	// ReadyNothing means no source is loaded.
	ReadyNothing ReadyState = iota
	// ReadyMetadata means duration is known but playback cannot start yet.
	ReadyMetadata
	// ReadyEnough means the element has buffered enough to play.
	ReadyEnough
)

// Handler receives element lifecycle events. Every event carries the source
// the element was bound to when the event was produced; a consumer that has
// since rebound can use it to discard events from the superseded bind.
type Handler interface {
	LoadedMetadata(src string, duration float64)
	Played(src string)
	Paused(src string)
	Ended(src string)
	TimeUpdate(src string, position float64)
	Failed(src string, err error)
}

// Element is the single playable media handle: an assignable source, an
// explicit load trigger, play/pause (play may be refused by the platform),
// an assignable position, volume and rate, and a readiness indicator.
// Exactly one handler is registered, once, before the first Load.
type Element interface {
	SetSource(src string)
	ClearSource()
	Source() string
	Load()

	Play() error
	Pause()

	Position() float64
	SetPosition(seconds float64)
	Duration() float64
	SetVolume(v float64)
	SetRate(r float64)

	ReadyState() ReadyState
	SetHandler(h Handler)
	Close() error
}
