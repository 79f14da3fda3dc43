package player

import "sync"

// Mock is a test double for Element. Event emission is driven explicitly by
// the test through the Emit helpers; command methods record their calls.
type Mock struct {
	mu      sync.Mutex
	handler Handler

	src      string
	ready    ReadyState
	position float64
	duration float64
	volume   float64
	rate     float64

	playErr error

	playCalls  int
	pauseCalls int
	loadCalls  int
	clearCalls int
	seekCalls  []float64
}

// NewMock creates a mock element in the unbound state.
func NewMock() *Mock {
	return &Mock{volume: 1, rate: 1}
}

func (m *Mock) SetSource(src string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.src = src
}

func (m *Mock) ClearSource() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	m.src = ""
	m.ready = ReadyNothing
	m.position = 0
	m.duration = 0
}

func (m *Mock) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.src
}

func (m *Mock) Load() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls++
}

// Play records the request and emits a synchronous play event on success,
// mirroring a platform that accepts the request. A configured play error is
// returned instead, like an autoplay rejection.
func (m *Mock) Play() error {
	m.mu.Lock()
	m.playCalls++
	err := m.playErr
	src := m.src
	h := m.handler
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if h != nil {
		h.Played(src)
	}
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	m.pauseCalls++
	src := m.src
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h.Paused(src)
	}
}

func (m *Mock) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) SetPosition(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, seconds)
	m.position = seconds
}

func (m *Mock) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = v
}

func (m *Mock) SetRate(r float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = r
}

func (m *Mock) ReadyState() ReadyState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *Mock) SetHandler(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

func (m *Mock) Close() error { return nil }

// Test helpers

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) SetReadyState(s ReadyState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = s
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

func (m *Mock) ClearCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearCalls
}

func (m *Mock) SeekCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.seekCalls...)
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

// EmitLoadedMetadata marks the given source ready and delivers the metadata
// event, as if buffering just completed.
func (m *Mock) EmitLoadedMetadata(src string, duration float64) {
	m.mu.Lock()
	m.duration = duration
	if m.src == src {
		m.ready = ReadyEnough
	}
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h.LoadedMetadata(src, duration)
	}
}

func (m *Mock) EmitEnded(src string) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h.Ended(src)
	}
}

func (m *Mock) EmitTimeUpdate(src string, position float64) {
	m.mu.Lock()
	m.position = position
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h.TimeUpdate(src, position)
	}
}

func (m *Mock) EmitFailed(src string, err error) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h.Failed(src, err)
	}
}

func (m *Mock) EmitPlayed(src string) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h.Played(src)
	}
}

func (m *Mock) EmitPaused(src string) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h.Paused(src)
	}
}

// Verify Mock implements Element at compile time.
var _ Element = (*Mock)(nil)
