package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber. Sends never block;
// events are dropped when a subscriber's buffer is full.
type Subscription struct {
	StateChanged    <-chan StateChange
	EpisodeChanged  <-chan EpisodeChange
	QueueChanged    <-chan QueueChange
	PositionChanged <-chan PositionChange
	Error           <-chan ErrorEvent
	Done            <-chan struct{}

	stateCh    chan StateChange
	episodeCh  chan EpisodeChange
	queueCh    chan QueueChange
	positionCh chan PositionChange
	errorCh    chan ErrorEvent
	doneCh     chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:    make(chan StateChange, eventBufferSize),
		episodeCh:  make(chan EpisodeChange, eventBufferSize),
		queueCh:    make(chan QueueChange, eventBufferSize),
		positionCh: make(chan PositionChange, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.EpisodeChanged = s.episodeCh
	s.QueueChanged = s.queueCh
	s.PositionChanged = s.positionCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
	}
}

func (s *Subscription) sendEpisode(e EpisodeChange) {
	select {
	case s.episodeCh <- e:
	default:
	}
}

func (s *Subscription) sendQueue(e QueueChange) {
	select {
	case s.queueCh <- e:
	default:
	}
}

func (s *Subscription) sendPosition(e PositionChange) {
	select {
	case s.positionCh <- e:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
