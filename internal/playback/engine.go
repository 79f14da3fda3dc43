package playback

import (
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"podplay/internal/domain"
	"podplay/internal/player"
)

// ErrAudioUnavailable is carried by the ErrorEvent raised when binding an
// episode's audio fails.
var ErrAudioUnavailable = errors.New("episode audio unavailable")

const defaultProgressQuiet = 2 * time.Second

// ProgressStore supplies resume positions at bind time and accepts the
// debounced progress writes. Save is called at most once per quiet window.
type ProgressStore interface {
	Position(episodeID string) float64
	Save(episodeID string, seconds float64)
}

// Options tune a new engine. Zero values select the defaults. Volume is a
// pointer so that a muted start (0.0) stays distinguishable from unset.
type Options struct {
	Volume        *float64      // initial volume in [0,1], default 1.0
	Speed         float64       // initial playback speed, default 1.0
	ProgressQuiet time.Duration // progress write quiet period, default 2s
}

// Engine owns the playback queue, the active-episode pointer and the binding
// to the single media element. The isPlaying flag records application intent;
// the element's own asynchronous state is reconciled against it in both
// directions: the flag drives play/pause commands, and element play/pause
// events fold back into the flag. A play request the platform refuses always
// reverts the flag to false.
type Engine struct {
	mu sync.Mutex

	el    player.Element
	queue *Queue

	current   *domain.Episode
	isPlaying bool
	position  float64
	duration  float64
	volume    float64
	speed     float64

	// bindURL is the token of the in-flight bind: element events carrying
	// any other source belong to a superseded bind and are discarded. The
	// element's own load sequencing covers rebinds of an identical source.
	bindURL string

	progress ProgressStore
	deb      *progressDebouncer

	subs   []*Subscription
	subsMu sync.RWMutex

	closed bool
}

// New creates an engine bound to the given element. The engine registers
// itself as the element's single persistent event handler.
func New(el player.Element, progress ProgressStore, opts Options) *Engine {
	volume := 1.0
	if opts.Volume != nil {
		volume = *opts.Volume
		if volume < 0 {
			volume = 0
		}
		if volume > 1 {
			volume = 1
		}
	}
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	if opts.ProgressQuiet <= 0 {
		opts.ProgressQuiet = defaultProgressQuiet
	}

	e := &Engine{
		el:       el,
		queue:    NewQueue(),
		volume:   volume,
		speed:    opts.Speed,
		progress: progress,
	}
	if progress != nil {
		e.deb = newProgressDebouncer(opts.ProgressQuiet, progress.Save)
	} else {
		e.deb = newProgressDebouncer(opts.ProgressQuiet, nil)
	}
	el.SetHandler((*elementEvents)(e))
	el.SetVolume(volume)
	el.SetRate(opts.Speed)
	return e
}

// PlayEpisode makes the episode current and rebinds the element to its audio.
// An episode already in the queue is reused at its existing slot; otherwise it
// is appended. The caller guarantees a non-empty AudioURL.
func (e *Engine) PlayEpisode(ep domain.Episode) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if idx := e.queue.IndexOf(ep.ID); idx >= 0 {
		e.queue.SetCurrent(idx)
	} else {
		e.queue.Append(ep)
		e.queue.SetCurrent(e.queue.Len() - 1)
	}
	e.current = e.queue.Current()
	e.isPlaying = true
	e.position = 0
	e.duration = 0
	e.bindURL = e.current.AudioURL
	url := e.bindURL
	e.mu.Unlock()

	e.notifyQueue()
	e.notifyEpisode()
	e.notifyState()

	// Rebind: reset the element, assign the new source, trigger the load.
	// The metadata/error events complete the bind asynchronously.
	e.el.ClearSource()
	e.el.SetSource(url)
	e.el.Load()
}

// AddToQueue appends unconditionally without touching playback.
func (e *Engine) AddToQueue(ep domain.Episode) {
	e.mu.Lock()
	e.queue.Append(ep)
	e.mu.Unlock()
	e.notifyQueue()
}

// RemoveFromQueue removes the entry at index. Removing the active entry stops
// playback entirely rather than auto-advancing. Out-of-range indices are a
// no-op.
func (e *Engine) RemoveFromQueue(index int) {
	e.mu.Lock()
	removed, removedCurrent := e.queue.RemoveAt(index)
	if !removed {
		e.mu.Unlock()
		return
	}
	if removedCurrent {
		e.current = nil
		e.isPlaying = false
		e.bindURL = ""
	}
	e.mu.Unlock()

	e.notifyQueue()
	if removedCurrent {
		e.notifyEpisode()
		e.notifyState()
		e.reconcile()
	}
}

// PlayNext plays the following queue entry, re-running the full bind
// sequence. No-op at the last position.
func (e *Engine) PlayNext() {
	e.mu.Lock()
	if !e.queue.HasNext() {
		e.mu.Unlock()
		return
	}
	target := e.queue.At(e.queue.CurrentIndex() + 1)
	e.mu.Unlock()
	e.PlayEpisode(*target)
}

// PlayPrevious plays the preceding queue entry. No-op at position 0.
func (e *Engine) PlayPrevious() {
	e.mu.Lock()
	if !e.queue.HasPrevious() {
		e.mu.Unlock()
		return
	}
	target := e.queue.At(e.queue.CurrentIndex() - 1)
	e.mu.Unlock()
	e.PlayEpisode(*target)
}

// TogglePlayPause flips the intent flag; the reconciliation effect commands
// the element.
func (e *Engine) TogglePlayPause() {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return
	}
	e.isPlaying = !e.isPlaying
	e.mu.Unlock()
	e.notifyState()
	e.reconcile()
}

// Seek commands the element position directly. Values outside [0, duration]
// are left to the platform to clamp.
func (e *Engine) Seek(seconds float64) {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return
	}
	e.position = seconds
	e.mu.Unlock()
	e.el.SetPosition(seconds)
	e.notifyPosition()
}

// SkipTime seeks relative to the current position, clamped to [0, duration].
// With an unknown duration only the lower bound applies.
func (e *Engine) SkipTime(delta float64) {
	e.mu.Lock()
	target := e.position + delta
	if target < 0 {
		target = 0
	}
	if e.duration > 0 && !math.IsNaN(e.duration) && target > e.duration {
		target = e.duration
	}
	e.mu.Unlock()
	e.Seek(target)
}

// SetVolume updates state and applies it to the element immediately.
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	e.volume = v
	e.mu.Unlock()
	e.el.SetVolume(v)
}

// SetPlaybackSpeed updates state and applies it to the element immediately.
func (e *Engine) SetPlaybackSpeed(s float64) {
	if s <= 0 {
		return
	}
	e.mu.Lock()
	e.speed = s
	e.mu.Unlock()
	e.el.SetRate(s)
}

// CycleSpeed advances the speed by 0.5 steps, wrapping from 2.0 back to 0.5,
// and returns the new value.
func (e *Engine) CycleSpeed() float64 {
	e.mu.Lock()
	s := e.speed + 0.5
	if s > 2.0 {
		s = 0.5
	}
	e.speed = s
	e.mu.Unlock()
	e.el.SetRate(s)
	return s
}

// ClearQueue empties the queue and resets playback state. The reconciliation
// effect then pauses the element.
func (e *Engine) ClearQueue() {
	e.mu.Lock()
	e.queue.Clear()
	e.current = nil
	e.isPlaying = false
	e.bindURL = ""
	e.mu.Unlock()

	e.notifyQueue()
	e.notifyEpisode()
	e.notifyState()
	e.reconcile()
}

// reconcile drives the element toward the intent flag: pause unconditionally
// when intent is paused; play only when the element is bound to the current
// episode's source and ready. An unready bind is left to the pending metadata
// event, which starts playback once buffering completes.
func (e *Engine) reconcile() {
	e.mu.Lock()
	playing := e.isPlaying
	cur := e.current
	e.mu.Unlock()

	if !playing {
		e.el.Pause()
		return
	}
	if cur == nil {
		return
	}
	if e.el.Source() == cur.AudioURL && e.el.ReadyState() >= player.ReadyEnough {
		if err := e.el.Play(); err != nil {
			log.Printf("play request rejected: %v", err)
			e.mu.Lock()
			e.isPlaying = false
			e.mu.Unlock()
			e.notifyState()
		}
	}
}

// State queries

func (e *Engine) CurrentEpisode() *domain.Episode {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	ep := *e.current
	return &ep
}

func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.CurrentIndex()
}

func (e *Engine) Queue() []domain.Episode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Episodes()
}

func (e *Engine) QueueLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Len()
}

func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isPlaying
}

func (e *Engine) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *Engine) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *Engine) PlaybackSpeed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Subscribe creates a new event subscription.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// Close cancels the pending progress write, closes subscriptions and releases
// the element.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.deb.stop()

	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.subsMu.Unlock()

	return e.el.Close()
}

// Element event handling. The elementEvents view keeps the player.Handler
// methods off the Engine's public API.

type elementEvents Engine

func (h *elementEvents) engine() *Engine { return (*Engine)(h) }

// LoadedMetadata completes a bind: record the duration, seek to the stored
// progress for the episode and issue the play request. A rejected play
// request reverts the intent flag instead of leaving it stale.
func (h *elementEvents) LoadedMetadata(src string, duration float64) {
	e := h.engine()
	e.mu.Lock()
	if e.closed || src != e.bindURL {
		e.mu.Unlock()
		return
	}
	e.duration = duration
	resume := 0.0
	if e.progress != nil && e.current != nil {
		resume = e.progress.Position(e.current.ID)
	}
	if resume > 0 {
		e.position = resume
	}
	start := e.isPlaying
	e.mu.Unlock()

	if resume > 0 {
		e.el.SetPosition(resume)
	}
	e.notifyPosition()

	if start {
		if err := e.el.Play(); err != nil {
			log.Printf("play request rejected: %v", err)
			e.mu.Lock()
			e.isPlaying = false
			e.mu.Unlock()
			e.notifyState()
		}
	}
}

// Played folds the element's own play transition back into the intent flag.
func (h *elementEvents) Played(src string) {
	e := h.engine()
	e.mu.Lock()
	if e.closed || src != e.bindURL || e.isPlaying {
		e.mu.Unlock()
		return
	}
	e.isPlaying = true
	e.mu.Unlock()
	e.notifyState()
}

// Paused folds the element's own pause transition back into the intent flag.
func (h *elementEvents) Paused(src string) {
	e := h.engine()
	e.mu.Lock()
	if e.closed || src != e.bindURL || !e.isPlaying {
		e.mu.Unlock()
		return
	}
	e.isPlaying = false
	e.mu.Unlock()
	e.notifyState()
}

// Ended stops playback and auto-advances unless at the last queue position.
func (h *elementEvents) Ended(src string) {
	e := h.engine()
	e.mu.Lock()
	if e.closed || src != e.bindURL {
		e.mu.Unlock()
		return
	}
	e.isPlaying = false
	advance := e.queue.HasNext()
	e.mu.Unlock()

	e.notifyState()
	if advance {
		e.PlayNext()
	}
}

// TimeUpdate mirrors the element position into state and feeds the debounced
// progress writer.
func (h *elementEvents) TimeUpdate(src string, position float64) {
	e := h.engine()
	e.mu.Lock()
	if e.closed || src != e.bindURL || e.current == nil {
		e.mu.Unlock()
		return
	}
	e.position = position
	episodeID := e.current.ID
	e.mu.Unlock()

	e.deb.tick(episodeID, position)
	e.notifyPosition()
}

// Failed absorbs a bind failure: stop the intent flag, leave the queue and
// pointer untouched, surface an advisory error. No retry, no skip-to-next.
func (h *elementEvents) Failed(src string, err error) {
	e := h.engine()
	e.mu.Lock()
	if e.closed || src != e.bindURL {
		e.mu.Unlock()
		return
	}
	e.isPlaying = false
	var ep *domain.Episode
	if e.current != nil {
		cp := *e.current
		ep = &cp
	}
	e.mu.Unlock()

	log.Printf("audio bind failed: %v", err)
	e.notifyState()
	e.notifyError(ErrorEvent{Episode: ep, Err: ErrAudioUnavailable})
}

var _ player.Handler = (*elementEvents)(nil)

// Event fan-out

func (e *Engine) notifyState() {
	e.mu.Lock()
	ev := StateChange{Playing: e.isPlaying}
	e.mu.Unlock()
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendState(ev)
	}
}

func (e *Engine) notifyEpisode() {
	e.mu.Lock()
	var ep *domain.Episode
	if e.current != nil {
		cp := *e.current
		ep = &cp
	}
	ev := EpisodeChange{Episode: ep, Index: e.queue.CurrentIndex()}
	e.mu.Unlock()
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendEpisode(ev)
	}
}

func (e *Engine) notifyQueue() {
	e.mu.Lock()
	ev := QueueChange{Episodes: e.queue.Episodes(), Index: e.queue.CurrentIndex()}
	e.mu.Unlock()
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendQueue(ev)
	}
}

func (e *Engine) notifyPosition() {
	e.mu.Lock()
	ev := PositionChange{Position: e.position, Duration: e.duration}
	e.mu.Unlock()
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendPosition(ev)
	}
}

func (e *Engine) notifyError(ev ErrorEvent) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendError(ev)
	}
}
