package playback

import "podplay/internal/domain"

// StateChange is emitted when the isPlaying intent flag changes, whether from
// a user action or from the element reporting its own play/pause transition.
type StateChange struct {
	Playing bool
}

// EpisodeChange is emitted when the active episode changes. Episode is nil
// when playback was fully reset (current entry removed, queue cleared).
type EpisodeChange struct {
	Episode *domain.Episode
	Index   int
}

// QueueChange is emitted when the queue contents change.
type QueueChange struct {
	Episodes []domain.Episode
	Index    int
}

// PositionChange is emitted on element time updates and after seeks.
type PositionChange struct {
	Position float64
	Duration float64
}

// ErrorEvent is emitted when a bind fails; playback has already been stopped
// and the queue left untouched when the subscriber sees it.
type ErrorEvent struct {
	Episode *domain.Episode
	Err     error
}
