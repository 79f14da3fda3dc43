package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// ErrNotReady is returned by Play when the bound source has not buffered
// enough to start.
var ErrNotReady = errors.New("media not ready")

const (
	speakerRate  = beep.SampleRate(44100)
	tickInterval = 250 * time.Millisecond
)

var speakerOnce sync.Once

// BeepElement is the concrete media handle: it buffers the source URL to a
// temporary file, decodes it and plays it through the system speaker. Loading
// is asynchronous; completion and failure are reported through the Handler.
type BeepElement struct {
	mu      sync.Mutex
	handler Handler

	httpClient *http.Client
	userAgent  string
	tmpDir     string

	src     string
	ready   ReadyState
	loadSeq uint64
	cancel  context.CancelFunc

	streamer  beep.StreamSeekCloser
	format    beep.Format
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	volume    *effects.Volume

	file     *os.File
	filePath string

	level float64
	rate  float64

	endedCh chan endSignal
	done    chan struct{}
}

// endSignal marks a track reaching its natural end. It carries the load
// sequence so a signal from a superseded chain is discarded.
type endSignal struct {
	seq uint64
	src string
}

// NewBeepElement creates an unbound element. Buffered audio files live under
// tmpDir and are removed when the source is cleared.
func NewBeepElement(httpClient *http.Client, userAgent, tmpDir string) *BeepElement {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	e := &BeepElement{
		httpClient: httpClient,
		userAgent:  userAgent,
		tmpDir:     tmpDir,
		level:      1,
		rate:       1,
		endedCh:    make(chan endSignal, 1),
		done:       make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *BeepElement) SetHandler(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = h
}

func (e *BeepElement) SetSource(src string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.src = src
}

func (e *BeepElement) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

// ClearSource tears down the current playback chain and discards any buffered
// audio. A load still in flight is cancelled and its completion ignored.
func (e *BeepElement) ClearSource() {
	e.mu.Lock()
	e.loadSeq++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.teardownLocked()
	e.src = ""
	e.mu.Unlock()
}

// teardownLocked releases the decode chain. Caller holds e.mu.
func (e *BeepElement) teardownLocked() {
	if e.ctrl != nil {
		speaker.Clear()
	}
	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
	}
	if e.file != nil {
		e.file.Close()
		e.file = nil
	}
	if e.filePath != "" {
		os.Remove(e.filePath)
		e.filePath = ""
	}
	e.ctrl = nil
	e.resampler = nil
	e.volume = nil
	e.ready = ReadyNothing
}

// Load starts buffering the assigned source. When enough audio is available
// the handler receives LoadedMetadata; on failure it receives Failed. A
// subsequent SetSource+Load supersedes an unfinished load.
func (e *BeepElement) Load() {
	e.mu.Lock()
	src := e.src
	e.loadSeq++
	seq := e.loadSeq
	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.mu.Unlock()

	if src == "" {
		return
	}
	go e.load(ctx, seq, src)
}

func (e *BeepElement) load(ctx context.Context, seq uint64, src string) {
	path, err := e.fetch(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		e.fail(seq, src, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		os.Remove(path)
		e.fail(seq, src, err)
		return
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		os.Remove(path)
		e.fail(seq, src, fmt.Errorf("decode audio: %w", err))
		return
	}

	var speakerErr error
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
	})
	if speakerErr != nil {
		streamer.Close()
		f.Close()
		os.Remove(path)
		e.fail(seq, src, speakerErr)
		return
	}

	e.mu.Lock()
	if seq != e.loadSeq {
		// Superseded by a newer bind while buffering.
		e.mu.Unlock()
		streamer.Close()
		f.Close()
		os.Remove(path)
		return
	}

	e.teardownLocked()
	e.streamer = streamer
	e.format = format
	e.file = f
	e.filePath = path
	e.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	e.resampler = beep.ResampleRatio(4, e.ratioLocked(), e.ctrl)
	e.volume = &effects.Volume{
		Streamer: e.resampler,
		Base:     2,
		Volume:   levelToGain(e.level),
		Silent:   e.level <= 0,
	}
	e.ready = ReadyEnough
	duration := format.SampleRate.D(streamer.Len()).Seconds()
	vol := e.volume
	h := e.handler
	e.mu.Unlock()

	// beep invokes the callback on the speaker goroutine with the speaker
	// mutex held. The handler must never run there: ending a track can tear
	// down the chain, and teardown re-enters speaker.Clear. Hand the signal
	// to the run goroutine instead.
	speaker.Play(beep.Seq(vol, beep.Callback(func() {
		e.signalEnded(seq, src)
	})))

	if h != nil {
		h.LoadedMetadata(src, duration)
	}
}

// fetch buffers the source URL into a temporary file and returns its path.
func (e *BeepElement) fetch(ctx context.Context, src string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", err
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch audio failed: %s", resp.Status)
	}

	tmp, err := os.CreateTemp(e.tmpDir, "podplay-*.mp3")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("buffer audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (e *BeepElement) fail(seq uint64, src string, err error) {
	e.mu.Lock()
	if seq != e.loadSeq {
		e.mu.Unlock()
		return
	}
	h := e.handler
	e.mu.Unlock()
	if h != nil {
		h.Failed(src, err)
	}
}

// signalEnded queues the end-of-track notification without blocking the
// caller. The buffer holds one signal; at most one track can end per chain.
func (e *BeepElement) signalEnded(seq uint64, src string) {
	select {
	case e.endedCh <- endSignal{seq: seq, src: src}:
	default:
	}
}

func (e *BeepElement) ended(seq uint64, src string) {
	e.mu.Lock()
	if seq != e.loadSeq {
		e.mu.Unlock()
		return
	}
	h := e.handler
	e.mu.Unlock()
	if h != nil {
		h.Ended(src)
	}
}

func (e *BeepElement) Play() error {
	e.mu.Lock()
	if e.ctrl == nil || e.ready < ReadyEnough {
		e.mu.Unlock()
		return ErrNotReady
	}
	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
	src := e.src
	h := e.handler
	e.mu.Unlock()
	if h != nil {
		h.Played(src)
	}
	return nil
}

func (e *BeepElement) Pause() {
	e.mu.Lock()
	if e.ctrl == nil {
		e.mu.Unlock()
		return
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
	src := e.src
	h := e.handler
	e.mu.Unlock()
	if h != nil {
		h.Paused(src)
	}
}

func (e *BeepElement) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

func (e *BeepElement) positionLocked() float64 {
	if e.streamer == nil {
		return 0
	}
	return e.format.SampleRate.D(e.streamer.Position()).Seconds()
}

func (e *BeepElement) SetPosition(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return
	}
	n := e.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if n < 0 {
		n = 0
	}
	if max := e.streamer.Len(); n > max {
		n = max
	}
	speaker.Lock()
	e.streamer.Seek(n)
	speaker.Unlock()
}

func (e *BeepElement) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0
	}
	return e.format.SampleRate.D(e.streamer.Len()).Seconds()
}

func (e *BeepElement) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.level = v
	if e.volume != nil {
		speaker.Lock()
		e.volume.Volume = levelToGain(v)
		e.volume.Silent = v <= 0
		speaker.Unlock()
	}
}

func (e *BeepElement) SetRate(r float64) {
	if r <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rate = r
	if e.resampler != nil {
		speaker.Lock()
		e.resampler.SetRatio(e.ratioLocked())
		speaker.Unlock()
	}
}

// ratioLocked combines the decode-to-speaker sample rate conversion with the
// requested playback rate. Caller holds e.mu.
func (e *BeepElement) ratioLocked() float64 {
	ratio := e.rate
	if e.format.SampleRate > 0 {
		ratio *= float64(e.format.SampleRate) / float64(speakerRate)
	}
	return ratio
}

func (e *BeepElement) ReadyState() ReadyState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// run emits time updates while audio is progressing and delivers end-of-track
// signals outside the speaker goroutine.
func (e *BeepElement) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.done:
			return
		case sig := <-e.endedCh:
			e.ended(sig.seq, sig.src)
		case <-ticker.C:
			e.mu.Lock()
			playing := e.ctrl != nil && !e.ctrl.Paused
			src := e.src
			pos := e.positionLocked()
			h := e.handler
			e.mu.Unlock()
			if playing && h != nil {
				h.TimeUpdate(src, pos)
			}
		}
	}
}

func (e *BeepElement) Close() error {
	e.ClearSource()
	close(e.done)
	return nil
}

// levelToGain converts a 0..1 level to the logarithmic gain effects.Volume
// expects: 1.0 keeps the signal unchanged, 0.5 halves it.
func levelToGain(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}

// Verify BeepElement implements Element at compile time.
var _ Element = (*BeepElement)(nil)
